package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/ocr"
	"github.com/Veraticus/kantoor/internal/review"
)

// RunCorrection opens the OCR correction screen for one import and blocks until the
// user quits. Corrections still pending at that point are reported as an error.
func RunCorrection(ctx context.Context, session *ocr.Session, importID int, opts ...Option) error {
	if session == nil {
		return errors.New("ocr session is required")
	}
	cfg := newConfig(opts)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	final, err := run(ctx, cancel, NewCorrectionModel(ctx, session, importID, opts...), cfg)
	if err != nil {
		return err
	}
	if m, ok := final.(CorrectionModel); ok {
		if pending := len(m.Editor().PendingCorrections()); pending > 0 {
			return fmt.Errorf("%d correctie(s) niet opgeslagen", pending)
		}
	}
	return nil
}

// RunReview opens the email import review queue and blocks until the user quits.
func RunReview(ctx context.Context, poller *review.Poller, opts ...Option) error {
	if poller == nil {
		return errors.New("review poller is required")
	}
	cfg := newConfig(opts)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	_, err := run(ctx, cancel, NewReviewModel(ctx, poller, opts...), cfg)
	return err
}

func run(ctx context.Context, cancel context.CancelFunc, m tea.Model, cfg Config) (tea.Model, error) {
	logger := common.Component("tui")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Best-effort restore in case the program dies without tearing down.
	cleanupTerminal := func() {
		_, _ = os.Stdout.Write([]byte("\033[?1049l")) // Exit alternate screen
		_, _ = os.Stdout.Write([]byte("\033[?25h"))   // Show cursor
		_, _ = os.Stdout.Write([]byte("\033[m"))      // Reset colors
		_, _ = os.Stdout.Write([]byte("\033[?1000l")) // Disable mouse
	}
	defer cleanupTerminal()

	go func() {
		select {
		case <-sigChan:
			cleanupTerminal()
			cancel()
		case <-ctx.Done():
		}
	}()

	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.MouseSupport {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}

	final, err := tea.NewProgram(m, programOpts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			logger.Debug("TUI stopped", "reason", ctx.Err())
			return final, ctx.Err()
		}
		return final, fmt.Errorf("TUI error: %w", err)
	}
	return final, nil
}
