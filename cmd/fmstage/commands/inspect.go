package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/fmstage/internal/errors"
	"github.com/thoreinstein/fmstage/internal/logging"
	"github.com/thoreinstein/fmstage/internal/pipeline"
	"github.com/thoreinstein/fmstage/internal/stage"
	"github.com/thoreinstein/fmstage/pkg/fileutil"
	"github.com/thoreinstein/fmstage/pkg/frontmatter"
)

var (
	inspectFlags      stageFlags
	inspectFormat     string
	inspectHeaderOnly bool
)

func init() {
	inspectFlags.register(inspectCmd)
	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "yaml", "output format: yaml, json, toml")
	inspectCmd.Flags().BoolVar(&inspectHeaderOnly, "header-only", false,
		"read only up to the closing delimiter (builtin parser only)")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>...",
	Short: "Print the frontmatter of files",
	Long: `Inspect parses the frontmatter of each file and prints it to stdout,
one entry per file, in input order. Nothing is written to disk.

YAML output is a stream of documents, JSON output is one object per line,
and TOML output is an array of [[records]] tables.`,
	Example: `  # Print metadata as YAML documents
  fmstage inspect content/

  # Only read file headers, print JSON lines
  fmstage inspect content/ --header-only -f json

See Also: fmstage run`,
	Args: requirePaths,
	RunE: runInspect,
}

func runInspect(c *cobra.Command, args []string) error {
	base, err := loadedConfig()
	if err != nil {
		return err
	}
	conf, err := inspectFlags.apply(c, base)
	if err != nil {
		return err
	}

	format, err := fileutil.ParseFormat(inspectFormat)
	if err != nil || format == fileutil.FormatNone {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrInvalidFlag, "--format %q", inspectFormat),
			"Use --format yaml, json, or toml")
	}

	ctx := c.Context()
	logger := logging.FromContext(ctx)

	var proc pipeline.Processor
	if inspectHeaderOnly {
		if p := strings.ToLower(conf.Parser); p != "" && p != frontmatter.ParserBuiltin {
			return errors.NewUserError(
				errors.Wrapf(errors.ErrInvalidFlag, "--header-only with parser %q", conf.Parser),
				"Use --parser builtin with --header-only")
		}
		proc = stage.NewHeader(frontmatter.New(builtinOptions(conf)...), logger)
	} else {
		parser, err := frontmatter.ByName(conf.Parser, builtinOptions(conf)...)
		if err != nil {
			return errors.NewUserError(err, "")
		}
		proc = stage.New(
			stage.WithParser(parser),
			stage.WithMaterializer(materializer(conf)),
			stage.WithLogger(logger),
		)
	}

	src := pipeline.NewFileSource(args, pipeline.FileSourceOptions{Include: conf.Include})
	sink := &pipeline.WriterSink{W: c.OutOrStdout(), Format: format}

	stats, err := pipeline.Run(ctx, src, proc, sink, pipelineConfig(conf))
	if err != nil {
		var recErr *pipeline.RecordError
		if errors.As(err, &recErr) {
			return errors.NewUserError(err, "Set on_error: skip to list the remaining files")
		}
		return err
	}
	if stats.Failed > 0 {
		return errors.NewUserError(errors.Newf("%d file(s) failed", stats.Failed), "See the warnings above")
	}
	return nil
}
