package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/kantoor/internal/tui/tuitest"
)

func TestMessages(t *testing.T) {
	tests := []struct {
		format func(string) string
		name   string
		want   string
	}{
		{name: "success", format: FormatSuccess, want: "✓ Opgeslagen"},
		{name: "error", format: FormatError, want: "✗ Opgeslagen"},
		{name: "warning", format: FormatWarning, want: "⚠️ Opgeslagen"},
		{name: "info", format: FormatInfo, want: "ℹ️ Opgeslagen"},
		{name: "prompt", format: FormatPrompt, want: "Opgeslagen → "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tuitest.StripANSI(tt.format("Opgeslagen")))
		})
	}
}

func TestRenderBox(t *testing.T) {
	out := tuitest.StripANSI(RenderBox("Week 35", "38:30 uur"))
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "Week 35")
	assert.Contains(t, out, "38:30 uur")
}
