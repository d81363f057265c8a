package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Table is tabular output.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Add appends a row.
func (t *Table) Add(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render draws the table with the kantoor styles.
func (t Table) Render() string {
	if len(t.Rows) == 0 {
		return SubtleStyle.Render("Geen resultaten")
	}
	return table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		}).
		String()
}

// Printer writes command results as a table, JSON or YAML.
type Printer struct {
	w      io.Writer
	format string
}

// NewPrinter creates a printer for format; anything unknown prints tables.
func NewPrinter(w io.Writer, format string) *Printer {
	format = strings.ToLower(format)
	if format != FormatJSON && format != FormatYAML {
		format = FormatTable
	}
	return &Printer{w: w, format: format}
}

// Format returns the output format in use.
func (p *Printer) Format() string {
	return p.format
}

// Structured reports whether output is machine-readable.
func (p *Printer) Structured() bool {
	return p.format != FormatTable
}

// Print writes v. In table mode the table built by render is written instead.
func (p *Printer) Print(v any, render func() Table) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case FormatYAML:
		// Round trip through JSON so the yaml keys follow the json tags.
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(p.w, render().Render())
		return err
	}
}

// Message writes a human-readable line. It is suppressed for structured output so
// that stdout stays parseable.
func (p *Printer) Message(msg string) {
	if p.Structured() {
		return
	}
	p.println(msg)
}

// Success writes a success line, suppressed for structured output.
func (p *Printer) Success(msg string) {
	p.Message(FormatSuccess(msg))
}

// Raw writes text regardless of format.
func (p *Printer) Raw(text string) {
	p.println(text)
}

func (p *Printer) println(text string) {
	_, _ = fmt.Fprintln(p.w, text)
}
