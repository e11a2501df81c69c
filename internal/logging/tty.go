package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// ForceColorEnv turns on colored log output even when stderr is not a
// terminal, e.g. under a CI runner that renders ANSI codes.
const ForceColorEnv = "FMSTAGE_FORCE_COLOR"

// ColorMode is the color policy derived from the environment.
type ColorMode int

const (
	// ColorAuto colors output only for terminals.
	ColorAuto ColorMode = iota
	// ColorAlways colors output regardless of the writer.
	ColorAlways
	// ColorNever disables color.
	ColorNever
)

// ColorModeFromEnv reads the color policy. NO_COLOR (https://no-color.org)
// and TERM=dumb win over ForceColorEnv.
func ColorModeFromEnv() ColorMode {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return ColorNever
	}
	if os.Getenv("TERM") == "dumb" {
		return ColorNever
	}
	if _, ok := os.LookupEnv(ForceColorEnv); ok {
		return ColorAlways
	}
	return ColorAuto
}

// IsTTY reports whether w is a terminal. Any writer with an Fd method,
// such as *os.File, is checked.
func IsTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// SupportsColor reports whether log output to w should carry ANSI colors.
func SupportsColor(w io.Writer) bool {
	return ColorModeFromEnv().enabled(IsTTY(w))
}

func (m ColorMode) enabled(isTTY bool) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return isTTY
	}
}
