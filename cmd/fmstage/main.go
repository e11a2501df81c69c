// Package main is the entry point for the fmstage CLI.
package main

import (
	"os"

	"github.com/thoreinstein/fmstage/cmd/fmstage/commands"
)

func main() {
	os.Exit(commands.Main(os.Stderr))
}
