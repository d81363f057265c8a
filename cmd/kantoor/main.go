package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/kantoor/internal/api"
	"github.com/Veraticus/kantoor/internal/cli"
	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/config"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "kantoor",
		Short: cli.OfficeIcon + "  Back office for transport and invoicing",
		Long: `kantoor talks to the office backend: documents and signatures, OCR invoice imports,
the email import review queue, time registration, push notifications, expenses and
the leave calendar.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(cfgFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/kantoor/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.StringP("output", "o", "table", "output format (table, json, yaml)")
	flags.BoolP("yes", "y", false, "answer yes to every confirmation")

	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("output.format", flags.Lookup("output"))
	_ = viper.BindPFlag("yes", flags.Lookup("yes"))

	root.AddCommand(
		documentsCmd(),
		signaturesCmd(),
		importsCmd(),
		patternsCmd(),
		emailCmd(),
		timeCmd(),
		pushCmd(),
		expensesCmd(),
		leaveCmd(),
		cacheCmd(),
		authCmd(),
		versionCmd(),
	)
	return root
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(errorText(err)))
		os.Exit(1)
	}
}

func initConfig(cfgFile string) error {
	if err := config.Init(cfgFile); err != nil {
		return err
	}

	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return err
	}
	if err := common.SetupLogger(level, viper.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

// errorText prefers the backend's message and falls back to the error chain.
func errorText(err error) string {
	var apiErr *api.Error
	var userErr *common.UserError
	var validationErr *common.ValidationError
	if errors.As(err, &apiErr) || errors.As(err, &userErr) || errors.As(err, &validationErr) {
		return api.Message(err)
	}
	return err.Error()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "kantoor %s\n", version)
		},
	}
}
