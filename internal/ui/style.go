package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// Color modes accepted by Configure.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Configure switches colored output on or off. In auto mode color is used
// only when f is a terminal and NO_COLOR is unset.
func Configure(mode string, f *os.File) error {
	switch mode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	case ColorAuto, "":
		_, noColor := os.LookupEnv("NO_COLOR")
		color.NoColor = noColor || f == nil || !IsTerminal(f)
	default:
		return fmt.Errorf("unknown color mode %q (want auto, always or never)", mode)
	}
	return nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// PrintLogo renders the colored banner to w.
func PrintLogo(w io.Writer) {
	frame := color.New(color.FgCyan)
	curve := color.New(color.FgYellow)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +--------------------------+")
	curve.Fprintln(w, "   |                      .-' |")
	curve.Fprintln(w, "   |            ____..--'     |")
	brand.Fprintln(w, "   |   T A K E O F F          |")
	frame.Fprintln(w, "   +--------------------------+")
	tag.Fprintf(w, "   %s Milestone timeline simulation\n", Dim("~"))
	fmt.Fprintln(w)
}

// StatusIcon returns a colored status icon for compact table display.
func StatusIcon(status string) string {
	switch status {
	case "ok":
		return Green("✓")
	case "no_samples":
		return Red("✗")
	case "critical":
		return BoldYellow("⚡")
	default:
		return Dim("◌")
	}
}

// Fraction colors a probability: green when likely, yellow when uncertain,
// red when unlikely.
func Fraction(p float64) string {
	s := fmt.Sprintf("%5.1f%%", p*100)
	switch {
	case p >= 0.9:
		return Green(s)
	case p >= 0.5:
		return Yellow(s)
	default:
		return Red(s)
	}
}
