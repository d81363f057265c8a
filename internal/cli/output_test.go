package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name   string `json:"naam"`
	Amount string `json:"bedrag"`
	ID     int    `json:"id"`
}

func sampleTable(rows []row) func() Table {
	return func() Table {
		tbl := Table{Headers: []string{"ID", "NAAM", "BEDRAG"}}
		for _, r := range rows {
			tbl.Add("1", r.Name, r.Amount)
		}
		return tbl
	}
}

func TestPrinter_Formats(t *testing.T) {
	rows := []row{{ID: 1, Name: "Diesel", Amount: "84.20"}}

	tests := []struct {
		name     string
		format   string
		contains []string
	}{
		{name: "json", format: "json", contains: []string{`"naam": "Diesel"`, `"id": 1`}},
		{name: "yaml follows json tags", format: "YAML", contains: []string{"naam: Diesel", "bedrag: \"84.20\""}},
		{name: "table", format: "table", contains: []string{"NAAM", "Diesel", "84.20"}},
		{name: "unknown falls back to table", format: "csv", contains: []string{"BEDRAG"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrinter(&out, tt.format)
			require.NoError(t, p.Print(rows, sampleTable(rows)))
			for _, s := range tt.contains {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func TestPrinter_EmptyTable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewPrinter(&out, "table").Print([]row{}, sampleTable(nil)))
	assert.Contains(t, out.String(), "Geen resultaten")
}

func TestPrinter_MessagesSuppressedForStructuredOutput(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, "json")
	assert.True(t, p.Structured())

	p.Success("Opgeslagen")
	assert.Empty(t, out.String())

	p.Raw("/tmp/pagina-1.png")
	assert.Equal(t, "/tmp/pagina-1.png\n", out.String())

	out.Reset()
	NewPrinter(&out, "table").Success("Opgeslagen")
	assert.Contains(t, out.String(), "Opgeslagen")
}
