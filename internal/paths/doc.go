// Package paths resolves fmstage's per-user directories using the XDG base
// directory conventions provided by github.com/adrg/xdg.
package paths
