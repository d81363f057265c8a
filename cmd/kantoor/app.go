package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/kantoor/internal/api"
	"github.com/Veraticus/kantoor/internal/cache"
	"github.com/Veraticus/kantoor/internal/cli"
	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/config"
	"github.com/Veraticus/kantoor/internal/service"
	"github.com/Veraticus/kantoor/internal/tui"
	"github.com/Veraticus/kantoor/internal/tui/themes"
)

// app bundles what a command needs to talk to the backend and to the user.
type app struct {
	client   *api.Client
	cache    service.QueryCache
	out      *cli.Printer
	prompter *cli.Prompter
}

func newApp(cmd *cobra.Command) (*app, error) {
	clientCfg, err := config.LoadClientConfig()
	if err != nil {
		return nil, err
	}
	format, err := config.OutputFormat()
	if err != nil {
		return nil, err
	}

	store, err := cache.New(config.LoadCacheConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open query cache: %w", err)
	}

	var opts []api.Option
	if store != nil {
		opts = append(opts, api.WithCache(store))
	}
	client, err := api.New(clientCfg, opts...)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}

	prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	prompter.AssumeYes = viper.GetBool("yes")

	return &app{
		client:   client,
		cache:    store,
		out:      cli.NewPrinter(cmd.OutOrStdout(), format),
		prompter: prompter,
	}, nil
}

func (a *app) Close() {
	if a.cache != nil {
		_ = a.cache.Close()
	}
}

// withApp adapts a handler that needs an app into a cobra RunE.
func withApp(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, args, a)
	}
}

// confirm asks before a destructive action; a refusal is not an error.
func (a *app) confirm(cmd *cobra.Command, question string) (bool, error) {
	ok, err := a.prompter.Confirm(cmd.Context(), question, false)
	if err != nil {
		return false, err
	}
	if !ok {
		a.out.Message(cli.FormatInfo("Geannuleerd"))
	}
	return ok, nil
}

// tuiOptions reads the screen settings: tui.theme and tui.mouse.
func tuiOptions() ([]tui.Option, error) {
	var opts []tui.Option
	if name := viper.GetString("tui.theme"); name != "" {
		theme, ok := themes.ByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown theme %q (available: %s)",
				common.ErrInvalidConfig, name, strings.Join(themes.Names(), ", "))
		}
		opts = append(opts, tui.WithTheme(theme))
	}
	if viper.IsSet("tui.mouse") {
		opts = append(opts, tui.WithMouse(viper.GetBool("tui.mouse")))
	}
	return opts, nil
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil || id <= 0 {
		return 0, common.NewValidationError("id", fmt.Sprintf("ongeldig id %q", arg))
	}
	return id, nil
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			id, err := parseID(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(config.ExpandPath(path)) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(config.ExpandPath(path), data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "ja"
	}
	return "nee"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
