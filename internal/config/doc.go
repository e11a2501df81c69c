// Package config loads fmstage's configuration using Viper.
//
// # Configuration File
//
// config.yaml is searched for in the current directory and then in
// $XDG_CONFIG_HOME/fmstage (or $FMSTAGE_CONFIG_DIR):
//
//	version: 1
//	strip: true
//	parser: builtin         # builtin | adrg
//	default_language: yaml  # yaml | json | toml
//	concurrency: 4
//	on_error: halt          # halt | skip
//	max_file_size: 0        # bytes, 0 = unlimited
//	meta_format: yaml       # yaml | json | toml | none
//	include: ["*.md", "*.markdown"]
//
// Every key can also be set through an FMSTAGE_ prefixed environment
// variable, e.g. FMSTAGE_ON_ERROR=skip.
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//
// [Load] validates the result; [Validate] returns every problem as a
// [FieldError] when callers need the full list.
package config
