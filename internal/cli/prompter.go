package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/schollz/progressbar/v3"
)

// ErrInputTerminated is returned when input ends before an answer was given.
var ErrInputTerminated = errors.New("input terminated")

// Prompter asks the user questions on a terminal.
type Prompter struct {
	writer io.Writer
	reader *NonBlockingReader
	// AssumeYes answers every confirmation with yes without reading input.
	AssumeYes bool
}

// NewPrompter creates a prompter with the given reader and writer.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: NewNonBlockingReader(reader),
		writer: writer,
	}
}

// Confirm asks a yes/no question. An empty answer takes def.
func (p *Prompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	if p.AssumeYes {
		return true, nil
	}

	hint := "[j/N]"
	if def {
		hint = "[J/n]"
	}

	for {
		answer, err := p.ask(ctx, question+" "+hint)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "j", "ja", "y", "yes":
			return true, nil
		case "n", "nee", "no":
			return false, nil
		}
		p.println(FormatError("Antwoord met j of n."))
	}
}

// Choose asks for one of choices, case-insensitively, and returns it lowercased.
func (p *Prompter) Choose(ctx context.Context, prompt string, choices []string) (string, error) {
	for {
		answer, err := p.ask(ctx, prompt)
		if err != nil {
			return "", err
		}
		answer = strings.ToLower(answer)
		if slices.Contains(choices, answer) {
			return answer, nil
		}
		p.println(FormatError("Ongeldige keuze, probeer opnieuw."))
	}
}

// Ask reads a free-form answer. With required set, empty answers are asked again.
func (p *Prompter) Ask(ctx context.Context, prompt string, required bool) (string, error) {
	for {
		answer, err := p.ask(ctx, prompt)
		if err != nil {
			return "", err
		}
		if answer != "" || !required {
			return answer, nil
		}
		p.println(FormatError("Dit veld is verplicht."))
	}
}

func (p *Prompter) ask(ctx context.Context, prompt string) (string, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	answer, err := p.reader.ReadLine(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrInputTerminated
		}
		return "", err
	}
	return answer, nil
}

func (p *Prompter) println(msg string) {
	if _, err := fmt.Fprintln(p.writer, msg); err != nil {
		slog.Warn("Failed to write message", "error", err)
	}
}

// Progress tracks a batch operation with a progress bar.
type Progress struct {
	bar *progressbar.ProgressBar
}

// NewProgress starts a progress bar of total steps on w.
func NewProgress(w io.Writer, total int, description string) *Progress {
	if w == nil {
		w = os.Stderr
	}
	return &Progress{bar: progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)}
}

// Step advances the bar by one.
func (p *Progress) Step() {
	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Finish completes the bar.
func (p *Progress) Finish() {
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
}
