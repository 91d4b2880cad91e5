package output

import (
	"fmt"

	"github.com/fatih/color"
)

const (
	ExitSuccess     = 0
	ExitGeneral     = 1
	ExitUsageError  = 2
	ExitAuthError   = 3
	ExitConfigError = 4
	ExitUpstream    = 5
)

// CLIError is an error with a user-facing cause and next step.
type CLIError struct {
	Summary    string
	Detail     string
	Suggestion string
	ExitCode   int
	Err        error
}

func (e *CLIError) Error() string {
	return e.Summary
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

func (p *Printer) FormatError(e *CLIError) {
	if p.useColors {
		color.New(color.FgRed, color.Bold).Fprintf(p.err, "Error: %s\n", e.Summary)
		if e.Detail != "" {
			fmt.Fprintf(p.err, "  Cause: %s\n", e.Detail)
		}
		if e.Suggestion != "" {
			color.New(color.FgCyan).Fprintf(p.err, "  Suggestion: %s\n", e.Suggestion)
		}
		return
	}
	fmt.Fprintf(p.err, "[ERROR] %s\n", e.Summary)
	if e.Detail != "" {
		fmt.Fprintf(p.err, "  Cause: %s\n", e.Detail)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(p.err, "  Suggestion: %s\n", e.Suggestion)
	}
}
