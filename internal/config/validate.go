package config

import (
	"fmt"
	"path"

	"github.com/thoreinstein/fmstage/internal/errors"
	"github.com/thoreinstein/fmstage/internal/pipeline"
	"github.com/thoreinstein/fmstage/pkg/fileutil"
	"github.com/thoreinstein/fmstage/pkg/frontmatter"
)

// Validation errors for configuration fields.
var (
	// ErrVersionTooLow indicates the version field is below the minimum.
	ErrVersionTooLow = errors.New("version must be >= 1")

	// ErrInvalidValue indicates a field holds an unrecognized value.
	ErrInvalidValue = errors.New("invalid value")

	// ErrOutOfRange indicates a numeric field is outside its allowed range.
	ErrOutOfRange = errors.New("value out of range")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version < 1 {
		errs = append(errs, ErrVersionTooLow)
	}

	if _, err := frontmatter.ByName(cfg.Parser); err != nil {
		errs = append(errs, fieldErr(KeyParser, cfg.Parser, ErrInvalidValue))
	}

	if _, ok := frontmatter.DefaultEngines()[cfg.DefaultLanguage]; !ok {
		errs = append(errs, fieldErr(KeyDefaultLanguage, cfg.DefaultLanguage, ErrInvalidValue))
	}

	if cfg.Concurrency < 1 {
		errs = append(errs, fieldErr(KeyConcurrency, cfg.Concurrency, ErrOutOfRange))
	}

	if _, err := pipeline.ParseErrorMode(cfg.OnError); err != nil {
		errs = append(errs, fieldErr(KeyOnError, cfg.OnError, ErrInvalidValue))
	}

	if cfg.MaxFileSize < 0 {
		errs = append(errs, fieldErr(KeyMaxFileSize, cfg.MaxFileSize, ErrOutOfRange))
	}

	if _, err := fileutil.ParseFormat(cfg.MetaFormat); err != nil {
		errs = append(errs, fieldErr(KeyMetaFormat, cfg.MetaFormat, ErrInvalidValue))
	}

	for _, pattern := range cfg.Include {
		if _, err := path.Match(pattern, ""); err != nil {
			errs = append(errs, fieldErr(KeyInclude, pattern, ErrInvalidValue))
		}
	}

	return errs
}

// FieldError represents an error for a specific config field.
type FieldError struct {
	Field string
	Value any
	Err   error
}

func fieldErr(field string, value any, err error) *FieldError {
	return &FieldError{Field: field, Value: value, Err: err}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Field, e.Err, e.Value)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
