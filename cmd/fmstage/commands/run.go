package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/fmstage/internal/errors"
	"github.com/thoreinstein/fmstage/internal/logging"
	"github.com/thoreinstein/fmstage/internal/pipeline"
	"github.com/thoreinstein/fmstage/internal/stage"
	"github.com/thoreinstein/fmstage/pkg/frontmatter"
)

var (
	runFlags      stageFlags
	runOut        string
	runStrip      bool
	runKeepGoing  bool
	runMetaFormat string
)

func init() {
	runFlags.register(runCmd)
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "output directory (required)")
	runCmd.Flags().BoolVar(&runStrip, "strip", true, "remove the frontmatter block from written files")
	runCmd.Flags().BoolVarP(&runKeepGoing, "keep-going", "k", false,
		"skip files that fail instead of stopping")
	runCmd.Flags().StringVar(&runMetaFormat, "meta-format", "",
		"sidecar metadata format: yaml, json, toml, none")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run <path>... --out <dir>",
	Short: "Extract frontmatter and write the files to a directory",
	Long: `Run walks the given files and directories, extracts each file's
frontmatter, and writes the result under --out keeping the layout relative
to each walked directory.

Parsed fields are written next to each file as <name>.meta.<format>
unless --meta-format none is given. With --strip=false the written file is
byte-identical to its input.`,
	Example: `  # Strip frontmatter, write YAML sidecars
  fmstage run docs/ --out build/

  # Keep content untouched, JSON sidecars, skip broken files
  fmstage run docs/ -o build/ --strip=false --meta-format json -k

See Also: fmstage inspect`,
	Args: requirePaths,
	RunE: runRun,
}

func runRun(c *cobra.Command, args []string) error {
	if runOut == "" {
		return errors.NewUserError(
			errors.Wrap(errors.ErrInvalidFlag, "--out is required"),
			"Usage: "+c.UseLine())
	}

	base, err := loadedConfig()
	if err != nil {
		return err
	}
	if c.Flags().Changed("strip") {
		cp := *base
		cp.Strip = runStrip
		base = &cp
	}
	if runKeepGoing {
		cp := *base
		cp.OnError = string(pipeline.ErrorModeSkip)
		base = &cp
	}
	if c.Flags().Changed("meta-format") {
		cp := *base
		cp.MetaFormat = runMetaFormat
		base = &cp
	}
	conf, err := runFlags.apply(c, base)
	if err != nil {
		return err
	}

	ctx := c.Context()
	logger := logging.FromContext(ctx)

	parser, err := frontmatter.ByName(conf.Parser, builtinOptions(conf)...)
	if err != nil {
		return errors.NewUserError(err, "")
	}
	st := stage.New(
		stage.WithStrip(conf.Strip),
		stage.WithParser(parser),
		stage.WithMaterializer(materializer(conf)),
		stage.WithLogger(logger),
	)

	src := pipeline.NewFileSource(args, pipeline.FileSourceOptions{
		Include: conf.Include,
		Dirs:    true,
	})
	sink := &pipeline.DirSink{Dir: runOut, MetaFormat: metaFormat(conf)}

	logger.Info("running", "inputs", len(args), "out", runOut,
		"strip", conf.Strip, "parser", conf.Parser, "concurrency", conf.Concurrency)

	stats, err := pipeline.Run(ctx, src, st, sink, pipelineConfig(conf))
	if err != nil {
		var recErr *pipeline.RecordError
		if errors.As(err, &recErr) {
			return errors.NewUserError(err, "Re-run with --keep-going to skip files that fail")
		}
		return err
	}

	if !quiet {
		fmt.Fprintf(c.OutOrStdout(), "%d written, %d passed through, %d failed\n",
			stats.Emitted-stats.Passthrough, stats.Passthrough, stats.Failed)
	}
	if stats.Failed > 0 {
		return errors.NewUserError(errors.Newf("%d file(s) failed", stats.Failed), "See the warnings above")
	}
	return nil
}
