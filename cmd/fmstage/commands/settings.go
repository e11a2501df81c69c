package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/fmstage/internal/config"
	"github.com/thoreinstein/fmstage/internal/errors"
	"github.com/thoreinstein/fmstage/internal/pipeline"
	"github.com/thoreinstein/fmstage/pkg/fileutil"
	"github.com/thoreinstein/fmstage/pkg/frontmatter"
	"github.com/thoreinstein/fmstage/pkg/record"
)

// stageFlags are the flags shared by commands that run the stage. Each one
// overrides the matching config key only when set on the command line.
type stageFlags struct {
	parser      string
	language    string
	concurrency int
	maxSize     int64
	include     []string
}

func (f *stageFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.parser, "parser", "", "frontmatter parser: builtin, adrg")
	c.Flags().StringVar(&f.language, "default-language", "",
		"language of unlabeled --- blocks: yaml, json, toml")
	c.Flags().IntVarP(&f.concurrency, "concurrency", "j", 0, "files processed at once")
	c.Flags().Int64Var(&f.maxSize, "max-size", 0, "largest file to read in bytes (0: unlimited)")
	c.Flags().StringSliceVar(&f.include, "include", nil,
		"file name patterns matched while walking directories")
}

// apply copies the flags that were set onto a copy of base.
func (f *stageFlags) apply(c *cobra.Command, base *config.Config) (*config.Config, error) {
	out := *base
	flags := c.Flags()
	if flags.Changed("parser") {
		out.Parser = f.parser
	}
	if flags.Changed("default-language") {
		out.DefaultLanguage = f.language
	}
	if flags.Changed("concurrency") {
		out.Concurrency = f.concurrency
	}
	if flags.Changed("max-size") {
		out.MaxFileSize = f.maxSize
	}
	if flags.Changed("include") {
		out.Include = f.include
	}
	if errs := config.Validate(&out); len(errs) > 0 {
		return nil, errors.NewUserError(
			errors.Wrapf(errors.ErrInvalidFlag, "%v", errs[0]),
			"Run 'fmstage "+c.Name()+" --help' for valid values")
	}
	return &out, nil
}

// builtinOptions returns the builtin parser options for c.
func builtinOptions(c *config.Config) []frontmatter.Option {
	return []frontmatter.Option{frontmatter.WithDefaultLanguage(c.DefaultLanguage)}
}

// materializer returns the record materializer honoring c.MaxFileSize.
func materializer(c *config.Config) record.Materializer {
	if c.MaxFileSize > 0 {
		return record.LimitedMaterializer(c.MaxFileSize)
	}
	return record.DefaultMaterializer
}

// pipelineConfig maps c onto pipeline.Config. c must be validated.
func pipelineConfig(c *config.Config) pipeline.Config {
	mode, _ := pipeline.ParseErrorMode(c.OnError)
	return pipeline.Config{Concurrency: c.Concurrency, OnError: mode}
}

// metaFormat returns the validated sidecar format of c.
func metaFormat(c *config.Config) fileutil.Format {
	f, _ := fileutil.ParseFormat(c.MetaFormat)
	return f
}

// requirePaths rejects a call without path arguments.
func requirePaths(c *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.NewUserError(
			errors.Wrap(errors.ErrInvalidFlag, "no input paths"),
			"Usage: "+c.UseLine())
	}
	return nil
}
