package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/kantoor/internal/cli"
	"github.com/Veraticus/kantoor/internal/config"
	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/review"
	"github.com/Veraticus/kantoor/internal/tui"
)

func emailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email",
		Short: "Review invoices imported from shared mailboxes",
	}

	cmd.AddCommand(
		mailboxesCmd(),
		emailReviewCmd(),
		emailListCmd(),
		emailGetCmd(),
		emailDecideCmd(model.ActionApprove),
		emailDecideCmd(model.ActionReject),
		emailDeleteCmd(),
		emailStatsCmd(),
	)
	return cmd
}

func emailImportTable(imports ...model.EmailImport) func() cli.Table {
	return func() cli.Table {
		t := cli.Table{Headers: []string{"ID", "Ontvangen", "Van", "Onderwerp", "Bijlage", "Status", "Type", "Notities"}}
		for _, imp := range imports {
			t.Add(
				strconv.Itoa(imp.ID),
				imp.ReceivedAt.Format("2006-01-02 15:04"),
				imp.FromAddress,
				imp.Subject,
				imp.AttachmentName,
				string(imp.Status),
				dash(string(imp.InvoiceType)),
				dash(firstNonEmpty(imp.ReviewNotes, imp.ErrorMessage)),
			)
		}
		return t
	}
}

func emailReviewCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Open the review queue",
		Long: `Open the email import review queue.

The list refreshes every review.list_interval and the statistics every
review.stats_interval. Select imports with space, approve with a, reject with r,
delete the selection with d.`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			opts, err := tuiOptions()
			if err != nil {
				return err
			}
			poller := review.NewPoller(a.client)
			poller.ListInterval, poller.StatsInterval = config.ReviewIntervals()
			poller.SetFilter(model.EmailImportFilter{Status: model.EmailImportStatus(status)})
			return tui.RunReview(cmd.Context(), poller, opts...)
		}),
	}

	cmd.Flags().StringVar(&status, "status", string(model.EmailAwaitingReview), "initial status filter, empty for all")
	return cmd
}

func emailListCmd() *cobra.Command {
	var filter model.EmailImportFilter
	var status string
	var pending bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List email imports",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if pending {
				imports, err := a.client.PendingReview(cmd.Context())
				if err != nil {
					return err
				}
				return a.out.Print(imports, emailImportTable(imports...))
			}

			filter.Status = model.EmailImportStatus(status)
			page, err := a.client.ListEmailImports(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if err := a.out.Print(page, emailImportTable(page.Results...)); err != nil {
				return err
			}
			a.out.Message(cli.SubtleStyle.Render(fmt.Sprintf("%d van %d imports", len(page.Results), page.Count)))
			return nil
		}),
	}

	cmd.Flags().StringVar(&status, "status", "", "filter on status")
	cmd.Flags().IntVar(&filter.Mailbox, "mailbox", 0, "filter on mailbox id")
	cmd.Flags().IntVar(&filter.Page, "page", 1, "page number")
	cmd.Flags().BoolVar(&pending, "pending", false, "only imports awaiting review (all pages)")
	return cmd
}

func emailGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one email import",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			imp, err := a.client.GetEmailImport(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.out.Print(imp, emailImportTable(*imp))
		}),
	}
}

func emailDecideCmd(action model.ReviewAction) *cobra.Command {
	var notes, invoiceType string

	use, short, done := "approve", "Approve imports awaiting review", "goedgekeurd"
	if action == model.ActionReject {
		use, short, done = "reject", "Reject imports awaiting review", "afgekeurd"
	}

	cmd := &cobra.Command{
		Use:   use + " <id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			req := model.ReviewRequest{
				Action:      action,
				Notes:       strings.TrimSpace(notes),
				InvoiceType: model.InvoiceType(invoiceType),
			}
			if req.InvoiceType != "" && !req.InvoiceType.Valid() {
				return fmt.Errorf("onbekend factuurtype %q", invoiceType)
			}

			for _, id := range ids {
				imp, err := a.client.ReviewEmailImport(cmd.Context(), id, req)
				if err != nil {
					return fmt.Errorf("import %d: %w", id, err)
				}
				a.out.Success(fmt.Sprintf("Import #%d %s (%s)", imp.ID, done, imp.AttachmentName))
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&notes, "notes", "", "review notes")
	if action == model.ActionApprove {
		cmd.Flags().StringVar(&invoiceType, "type", "", "invoice type (purchase, credit, sales)")
	}
	return cmd
}

func emailDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>[,<id>...]...",
		Short: "Delete email imports",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			ok, err := a.confirm(cmd, fmt.Sprintf("%d import(s) verwijderen?", len(ids)))
			if err != nil || !ok {
				return err
			}
			count, err := a.client.BulkDeleteEmailImports(cmd.Context(), ids)
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("%d imports verwijderd", count))
			return nil
		}),
	}
}

func emailStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show import pipeline statistics",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			stats, err := a.client.EmailImportStats(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.Print(stats, func() cli.Table {
				t := cli.Table{Headers: []string{"Status", "Aantal"}}
				statuses := make([]string, 0, len(stats.ByStatus))
				for s := range stats.ByStatus {
					statuses = append(statuses, string(s))
				}
				sort.Strings(statuses)
				for _, s := range statuses {
					t.Add(s, strconv.Itoa(stats.ByStatus[model.EmailImportStatus(s)]))
				}
				t.Add("te beoordelen", strconv.Itoa(stats.AwaitingReview))
				t.Add("vandaag", strconv.Itoa(stats.Today))
				t.Add("mislukt", strconv.Itoa(stats.Failed))
				t.Add("totaal", strconv.Itoa(stats.Total))
				return t
			})
		}),
	}
}

func mailboxesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mailboxes",
		Aliases: []string{"mailbox"},
		Short:   "Manage the mailboxes invoices are fetched from",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List mailboxes",
			Args:  cobra.NoArgs,
			RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
				boxes, err := a.client.ListMailboxes(cmd.Context())
				if err != nil {
					return err
				}
				return a.out.Print(boxes, mailboxTable(boxes...))
			}),
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show one mailbox",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				mb, err := a.client.GetMailbox(cmd.Context(), id)
				if err != nil {
					return err
				}
				return a.out.Print(mb, mailboxTable(*mb))
			}),
		},
		mailboxSaveCmd(false),
		mailboxSaveCmd(true),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a mailbox",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				ok, err := a.confirm(cmd, fmt.Sprintf("Mailbox #%d verwijderen?", id))
				if err != nil || !ok {
					return err
				}
				if err := a.client.DeleteMailbox(cmd.Context(), id); err != nil {
					return err
				}
				a.out.Success(fmt.Sprintf("Mailbox #%d verwijderd", id))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "test <id>",
			Short: "Test the connection to a mailbox",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				result, err := a.client.TestConnection(cmd.Context(), id)
				if err != nil {
					return err
				}
				if a.out.Structured() {
					return a.out.Print(result, nil)
				}
				if !result.Success {
					return fmt.Errorf("verbinding mislukt: %s", result.Message)
				}
				a.out.Success(dash(result.Message))
				return nil
			}),
		},
		mailboxFetchCmd(),
		&cobra.Command{
			Use:   "folders <id>",
			Short: "List the folders of a mailbox",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				folders, err := a.client.ListFolders(cmd.Context(), id)
				if err != nil {
					return err
				}
				return a.out.Print(folders, func() cli.Table {
					t := cli.Table{Headers: []string{"Map"}}
					for _, f := range folders {
						t.Add(f)
					}
					return t
				})
			}),
		},
	)
	return cmd
}

func mailboxTable(boxes ...model.MailboxConfig) func() cli.Table {
	return func() cli.Table {
		t := cli.Table{Headers: []string{"ID", "Naam", "Adres", "Provider", "Map", "Interval", "Actief", "Laatst opgehaald"}}
		for _, mb := range boxes {
			last := "-"
			if mb.LastFetchAt != nil {
				last = mb.LastFetchAt.Format("2006-01-02 15:04")
			}
			t.Add(
				strconv.Itoa(mb.ID),
				mb.Name,
				mb.EmailAddress,
				string(mb.Provider),
				mb.Folder,
				fmt.Sprintf("%d min", mb.FetchInterval),
				yesNo(mb.IsActive),
				last,
			)
		}
		return t
	}
}

// mailboxSaveCmd builds "create" or, when update is set, "update <id>". An update only
// sends the flags that were given on top of the stored mailbox.
func mailboxSaveCmd(update bool) *cobra.Command {
	var mb model.MailboxConfig
	var provider string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a mailbox",
		Args:  cobra.NoArgs,
	}
	if update {
		cmd.Use, cmd.Short, cmd.Args = "update <id>", "Change a mailbox", cobra.ExactArgs(1)
	}

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		target := mb
		if update {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			stored, err := a.client.GetMailbox(ctx, id)
			if err != nil {
				return err
			}
			target = mergeMailbox(cmd, *stored, mb)
		}
		if cmd.Flags().Changed("provider") || !update {
			target.Provider = model.MailboxProvider(provider)
		}

		var saved *model.MailboxConfig
		var err error
		if update {
			saved, err = a.client.UpdateMailbox(ctx, target)
		} else {
			saved, err = a.client.CreateMailbox(ctx, target)
		}
		if err != nil {
			return err
		}
		a.out.Success(fmt.Sprintf("Mailbox #%d opgeslagen", saved.ID))
		return a.out.Print(saved, mailboxTable(*saved))
	})

	flags := cmd.Flags()
	flags.StringVar(&mb.Name, "name", "", "display name")
	flags.StringVar(&mb.EmailAddress, "address", "", "email address")
	flags.StringVar(&provider, "provider", string(model.ProviderIMAP), "imap or ms365")
	flags.StringVar(&mb.IMAPServer, "server", "", "IMAP server")
	flags.IntVar(&mb.IMAPPort, "port", 993, "IMAP port")
	flags.StringVar(&mb.Username, "username", "", "login name")
	flags.StringVar(&mb.Password, "password", "", "password or app password")
	flags.StringVar(&mb.Folder, "folder", "INBOX", "folder to fetch from")
	flags.IntVar(&mb.FetchInterval, "interval", 15, "fetch interval in minutes")
	flags.BoolVar(&mb.IsActive, "active", true, "fetch automatically")
	flags.BoolVar(&mb.MarkAsRead, "mark-read", true, "mark fetched mail as read")
	flags.BoolVar(&mb.OnlyUnread, "only-unread", true, "only fetch unread mail")
	return cmd
}

func mergeMailbox(cmd *cobra.Command, stored, changes model.MailboxConfig) model.MailboxConfig {
	f := cmd.Flags()
	if f.Changed("name") {
		stored.Name = changes.Name
	}
	if f.Changed("address") {
		stored.EmailAddress = changes.EmailAddress
	}
	if f.Changed("server") {
		stored.IMAPServer = changes.IMAPServer
	}
	if f.Changed("port") {
		stored.IMAPPort = changes.IMAPPort
	}
	if f.Changed("username") {
		stored.Username = changes.Username
	}
	if f.Changed("password") {
		stored.Password = changes.Password
	}
	if f.Changed("folder") {
		stored.Folder = changes.Folder
	}
	if f.Changed("interval") {
		stored.FetchInterval = changes.FetchInterval
	}
	if f.Changed("active") {
		stored.IsActive = changes.IsActive
	}
	if f.Changed("mark-read") {
		stored.MarkAsRead = changes.MarkAsRead
	}
	if f.Changed("only-unread") {
		stored.OnlyUnread = changes.OnlyUnread
	}
	return stored
}

func mailboxFetchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "fetch <id>",
		Short: "Fetch new mail from a mailbox now",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			result, err := a.client.FetchEmails(cmd.Context(), id, limit)
			if err != nil {
				return err
			}
			if a.out.Structured() {
				return a.out.Print(result, nil)
			}
			a.out.Success(fmt.Sprintf("%d opgehaald, %d geïmporteerd, %d overgeslagen",
				result.Fetched, result.Imported, result.Skipped))
			if result.Message != "" {
				a.out.Message(cli.SubtleStyle.Render(result.Message))
			}
			return nil
		}),
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of messages (default: backend default)")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
