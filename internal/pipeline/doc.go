// Package pipeline drives a record Processor from a Source to a Sink.
//
// [Run] reads records in order, processes up to Config.Concurrency of them
// at once, and writes results to the sink in input order no matter which
// record finishes first. A record that fails emits nothing; [ErrorMode]
// decides whether the run stops at the first failure or keeps going.
//
//	stats, err := pipeline.Run(ctx,
//		pipeline.NewFileSource([]string{"docs"}, pipeline.FileSourceOptions{}),
//		stage.New(),
//		&pipeline.DirSink{Dir: "out", MetaFormat: fileutil.FormatYAML},
//		pipeline.Config{Concurrency: 4},
//	)
package pipeline
