// Package output renders command results as tables, JSON or YAML, and
// prints colored status lines for the shell and the CLI.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Format is an output format accepted by -o/--output.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a format name. An empty name means table.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
	}
}

// ANSI colors used by Printer.
const (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Bold    = "\033[1m"
)

// Printer writes formatted results and status lines to one writer.
type Printer struct {
	out    io.Writer
	format Format
	color  bool
}

// NewPrinter creates a Printer. color enables ANSI escapes in status lines
// and Paint.
func NewPrinter(out io.Writer, format Format, color bool) *Printer {
	return &Printer{out: out, format: format, color: color}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Format returns the configured format.
func (p *Printer) Format() Format {
	return p.format
}

// Print renders data in the configured format. Table output needs a
// TableRenderer; other data falls back to JSON.
func (p *Printer) Print(data any) error {
	switch p.format {
	case FormatTable:
		if r, ok := data.(TableRenderer); ok {
			return PrintTable(p.out, r)
		}
		return PrintJSON(p.out, data)
	case FormatJSON:
		return PrintJSON(p.out, data)
	case FormatYAML:
		return PrintYAML(p.out, data)
	default:
		return fmt.Errorf("unknown format: %s", p.format)
	}
}

// Paint wraps s in the given color when color is enabled.
func (p *Printer) Paint(color, s string) string {
	if !p.color || color == "" {
		return s
	}
	return color + s + Reset
}

// Printf writes a formatted string without a trailing newline.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Println writes args followed by a newline.
func (p *Printer) Println(args ...any) {
	_, _ = fmt.Fprintln(p.out, args...)
}

func (p *Printer) line(color, msg string) {
	_, _ = fmt.Fprintln(p.out, p.Paint(color, msg))
}

// Success prints msg in green.
func (p *Printer) Success(msg string) { p.line(Green, msg) }

// Info prints msg in blue.
func (p *Printer) Info(msg string) { p.line(Blue, msg) }

// Warning prints msg in yellow.
func (p *Printer) Warning(msg string) { p.line(Yellow, msg) }

// Error prints msg in red.
func (p *Printer) Error(msg string) { p.line(Red, msg) }
