package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/kantoor/internal/cli"
	"github.com/Veraticus/kantoor/internal/cache"
	"github.com/Veraticus/kantoor/internal/config"
	"github.com/Veraticus/kantoor/internal/service"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local query cache",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show what the query cache holds",
			Args:  cobra.NoArgs,
			RunE: withCache(func(cmd *cobra.Command, store service.QueryCache, out *cli.Printer) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				return out.Print(stats, func() cli.Table {
					t := cli.Table{Headers: []string{"Backend", "Items", "Verlopen"}}
					t.Add(stats.Backend, strconv.Itoa(stats.Entries), strconv.Itoa(stats.Expired))
					return t
				})
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Drop every cached response",
			Args:  cobra.NoArgs,
			RunE: withCache(func(cmd *cobra.Command, store service.QueryCache, out *cli.Printer) error {
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				out.Success("Cache geleegd")
				return nil
			}),
		},
	)
	return cmd
}

// withCache opens the configured cache store without needing backend credentials.
func withCache(run func(cmd *cobra.Command, store service.QueryCache, out *cli.Printer) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		format, err := config.OutputFormat()
		if err != nil {
			return err
		}
		out := cli.NewPrinter(cmd.OutOrStdout(), format)

		cfg := config.LoadCacheConfig()
		store, err := cache.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to open query cache: %w", err)
		}
		if store == nil {
			out.Message(cli.FormatInfo("Cache staat uit (cache.backend: " + cache.BackendNone + ")"))
			return nil
		}
		defer func() { _ = store.Close() }()
		return run(cmd, store, out)
	}
}
