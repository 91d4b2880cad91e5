// Package output formats CLI messages and tables.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// Printer writes status lines to out and warnings and errors to err.
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "auto", "":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q: must be auto, always, or never", s)
	}
}

// ResolveColors honours NO_COLOR and TERM=dumb unless the mode forces a choice.
func ResolveColors(mode ColorMode, configColors bool) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		if os.Getenv("TERM") == "dumb" {
			return false
		}
		return configColors
	}
}

func NewPrinter(out, errOut io.Writer, useColors bool) *Printer {
	return &Printer{out: out, err: errOut, useColors: useColors}
}

func (p *Printer) Out() io.Writer {
	return p.out
}

func (p *Printer) Info(format string, args ...any) {
	if p.useColors {
		color.New(color.FgCyan).Fprintf(p.out, format+"\n", args...)
	} else {
		fmt.Fprintf(p.out, format+"\n", args...)
	}
}

func (p *Printer) Success(format string, args ...any) {
	if p.useColors {
		color.New(color.FgGreen).Fprintf(p.out, "✓ "+format+"\n", args...)
	} else {
		fmt.Fprintf(p.out, "[OK] "+format+"\n", args...)
	}
}

func (p *Printer) Warning(format string, args ...any) {
	if p.useColors {
		color.New(color.FgYellow).Fprintf(p.err, "⚠ "+format+"\n", args...)
	} else {
		fmt.Fprintf(p.err, "[WARN] "+format+"\n", args...)
	}
}

func (p *Printer) Error(format string, args ...any) {
	if p.useColors {
		color.New(color.FgRed).Fprintf(p.err, "✗ "+format+"\n", args...)
	} else {
		fmt.Fprintf(p.err, "[ERROR] "+format+"\n", args...)
	}
}

func (p *Printer) Print(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) Header(title string) {
	if p.useColors {
		color.New(color.FgWhite, color.Bold).Fprintf(p.out, "\n%s\n", title)
		color.New(color.FgWhite).Fprintf(p.out, "%s\n", repeatChar('─', len(title)))
	} else {
		fmt.Fprintf(p.out, "\n%s\n%s\n", title, repeatChar('-', len(title)))
	}
}

// Badge marks stock and order states.
func (p *Printer) Badge(ok bool, label string) string {
	if !p.useColors {
		return label
	}
	if ok {
		return color.GreenString(label)
	}
	return color.RedString(label)
}

func (p *Printer) Bold(text string) string {
	if p.useColors {
		return color.New(color.Bold).Sprint(text)
	}
	return text
}

func (p *Printer) Dim(text string) string {
	if p.useColors {
		return color.New(color.Faint).Sprint(text)
	}
	return text
}

func repeatChar(char rune, count int) string {
	result := make([]rune, count)
	for i := range result {
		result[i] = char
	}
	return string(result)
}
