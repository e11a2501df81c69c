package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/thoreinstein/fmstage/internal/errors"
	"github.com/thoreinstein/fmstage/internal/paths"
	"github.com/thoreinstein/fmstage/internal/pipeline"
	"github.com/thoreinstein/fmstage/pkg/fileutil"
	"github.com/thoreinstein/fmstage/pkg/frontmatter"
)

// AppName is the application name used for config file naming.
const AppName = paths.AppName

// FileName is the config file name searched for in each config path.
const FileName = "config.yaml"

// Config key names, shared by viper defaults and CLI flag binding.
const (
	KeyVersion         = "version"
	KeyStrip           = "strip"
	KeyParser          = "parser"
	KeyDefaultLanguage = "default_language"
	KeyConcurrency     = "concurrency"
	KeyOnError         = "on_error"
	KeyMaxFileSize     = "max_file_size"
	KeyMetaFormat      = "meta_format"
	KeyInclude         = "include"
)

// Config represents the top-level configuration structure.
type Config struct {
	Version         int      `mapstructure:"version" yaml:"version"`
	Strip           bool     `mapstructure:"strip" yaml:"strip"`
	Parser          string   `mapstructure:"parser" yaml:"parser"`
	DefaultLanguage string   `mapstructure:"default_language" yaml:"default_language"`
	Concurrency     int      `mapstructure:"concurrency" yaml:"concurrency"`
	OnError         string   `mapstructure:"on_error" yaml:"on_error"`
	MaxFileSize     int64    `mapstructure:"max_file_size" yaml:"max_file_size"`
	MetaFormat      string   `mapstructure:"meta_format" yaml:"meta_format"`
	Include         []string `mapstructure:"include" yaml:"include"`
}

// Default returns a configuration populated with default values.
func Default() *Config {
	return &Config{
		Version:         1,
		Strip:           true,
		Parser:          frontmatter.ParserBuiltin,
		DefaultLanguage: frontmatter.LangYAML,
		Concurrency:     4,
		OnError:         string(pipeline.ErrorModeHalt),
		MaxFileSize:     0,
		MetaFormat:      string(fileutil.FormatYAML),
		Include:         append([]string(nil), pipeline.DefaultInclude...),
	}
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix("FMSTAGE")
	viper.AutomaticEnv()

	d := Default()
	viper.SetDefault(KeyVersion, d.Version)
	viper.SetDefault(KeyStrip, d.Strip)
	viper.SetDefault(KeyParser, d.Parser)
	viper.SetDefault(KeyDefaultLanguage, d.DefaultLanguage)
	viper.SetDefault(KeyConcurrency, d.Concurrency)
	viper.SetDefault(KeyOnError, d.OnError)
	viper.SetDefault(KeyMaxFileSize, d.MaxFileSize)
	viper.SetDefault(KeyMetaFormat, d.MetaFormat)
	viper.SetDefault(KeyInclude, d.Include)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back to
// defaults when no file is found.
// The result is validated; the first validation failure is returned as an
// error wrapping errors.ErrInvalidConfig.
func Load(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrapf(errors.ErrNotFound, "config file %s", path)
			}
			return nil, errors.Wrap(err, "checking config file")
		}
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "%v", errs[0])
	}

	return &cfg, nil
}

// Used returns the path of the config file viper read, or "" when running
// on defaults.
func Used() string {
	return viper.ConfigFileUsed()
}

// DefaultPath returns the user-level config file path.
func DefaultPath() string {
	return filepath.Join(paths.ConfigDir(), FileName)
}
