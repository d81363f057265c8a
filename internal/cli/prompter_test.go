package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		def    bool
		want   bool
		errors int
	}{
		{name: "ja", input: "ja\n", want: true},
		{name: "short yes", input: "J\n", want: true},
		{name: "english yes", input: "yes\n", want: true},
		{name: "nee", input: "nee\n", def: true, want: false},
		{name: "empty takes default true", input: "\n", def: true, want: true},
		{name: "empty takes default false", input: "\n", want: false},
		{name: "asks again", input: "misschien\nj\n", want: true, errors: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)

			got, err := p.Confirm(context.Background(), "Doorgaan?", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.errors, strings.Count(out.String(), "Antwoord met j of n."))
		})
	}
}

func TestPrompter_ConfirmHint(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("\n\n"), &out)

	_, err := p.Confirm(context.Background(), "Verwijderen?", false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Verwijderen? [j/N]")

	_, err = p.Confirm(context.Background(), "Opslaan?", true)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Opslaan? [J/n]")
}

func TestPrompter_AssumeYes(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader(""), &out)
	p.AssumeYes = true

	ok, err := p.Confirm(context.Background(), "Doorgaan?", false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, out.String())
}

func TestPrompter_Terminated(t *testing.T) {
	p := NewPrompter(strings.NewReader(""), &bytes.Buffer{})

	_, err := p.Confirm(context.Background(), "Doorgaan?", false)
	assert.ErrorIs(t, err, ErrInputTerminated)
}

func TestPrompter_Cancelled(t *testing.T) {
	p := NewPrompter(strings.NewReader("j\n"), &bytes.Buffer{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Choose(ctx, "Actie", []string{"a", "r"})
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func TestPrompter_Choose(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("x\nA\n"), &out)

	choice, err := p.Choose(context.Background(), "Goedkeuren (a) of afwijzen (r)", []string{"a", "r"})
	require.NoError(t, err)
	assert.Equal(t, "a", choice)
	assert.Contains(t, out.String(), "Ongeldige keuze")
}

func TestPrompter_Ask(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("\n  Factuur juli  \n\n"), &out)

	answer, err := p.Ask(context.Background(), "Titel", true)
	require.NoError(t, err)
	assert.Equal(t, "Factuur juli", answer)
	assert.Contains(t, out.String(), "Dit veld is verplicht.")

	answer, err = p.Ask(context.Background(), "Notitie", false)
	require.NoError(t, err)
	assert.Empty(t, answer)
}

func TestProgress(t *testing.T) {
	var out bytes.Buffer
	progress := NewProgress(&out, 3, "Uploaden...")
	for range 3 {
		progress.Step()
	}
	progress.Finish()

	assert.Contains(t, out.String(), "Uploaden...")
	assert.Contains(t, out.String(), "3/3")
}
