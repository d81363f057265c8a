package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/kantoor/internal/cli"
	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/schedule"
)

func pushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Manage push notifications, groups and schedules",
	}

	cmd.AddCommand(
		pushSettingsCmd(),
		pushVAPIDCmd(),
		pushGroupsCmd(),
		pushSchedulesCmd(),
		pushSentCmd(),
	)
	return cmd
}

func pushSettingsCmd() *cobra.Command {
	var changes model.PushSettings

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the push settings",
		Long: `Show the push settings. With flags, the given settings are changed and the
result is shown.`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			ctx := cmd.Context()
			settings, err := a.client.GetPushSettings(ctx)
			if err != nil {
				return err
			}

			f := cmd.Flags()
			if anyChanged(cmd, "enabled", "subject", "provider", "public-key", "private-key") {
				if f.Changed("enabled") {
					settings.Enabled = changes.Enabled
				}
				if f.Changed("subject") {
					settings.VAPIDSubject = changes.VAPIDSubject
				}
				if f.Changed("provider") {
					settings.Provider = changes.Provider
				}
				if f.Changed("public-key") {
					settings.VAPIDPublicKey = changes.VAPIDPublicKey
				}
				if f.Changed("private-key") {
					settings.VAPIDPrivateKey = changes.VAPIDPrivateKey
				}
				if settings, err = a.client.UpdatePushSettings(ctx, *settings); err != nil {
					return err
				}
				a.out.Success("Pushinstellingen opgeslagen")
			}

			return a.out.Print(settings, func() cli.Table {
				t := cli.Table{Headers: []string{"Instelling", "Waarde"}}
				t.Add("Actief", yesNo(settings.Enabled))
				t.Add("Provider", dash(settings.Provider))
				t.Add("VAPID subject", dash(settings.VAPIDSubject))
				t.Add("VAPID public key", dash(settings.VAPIDPublicKey))
				return t
			})
		}),
	}

	flags := cmd.Flags()
	flags.BoolVar(&changes.Enabled, "enabled", false, "enable push notifications")
	flags.StringVar(&changes.VAPIDSubject, "subject", "", "VAPID subject (mailto: or https: URL)")
	flags.StringVar(&changes.Provider, "provider", "", "delivery provider")
	flags.StringVar(&changes.VAPIDPublicKey, "public-key", "", "VAPID public key")
	flags.StringVar(&changes.VAPIDPrivateKey, "private-key", "", "VAPID private key")
	return cmd
}

func pushVAPIDCmd() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "vapid",
		Short: "Generate a VAPID key pair",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			ctx := cmd.Context()
			keys, err := a.client.GenerateVAPIDKeys(ctx)
			if err != nil {
				return err
			}
			if apply {
				ok, err := a.confirm(cmd, "Bestaande VAPID-sleutels vervangen? Alle abonnementen moeten opnieuw worden aangemaakt.")
				if err != nil || !ok {
					return err
				}
				settings, err := a.client.GetPushSettings(ctx)
				if err != nil {
					return err
				}
				settings.VAPIDPublicKey, settings.VAPIDPrivateKey = keys.PublicKey, keys.PrivateKey
				if _, err := a.client.UpdatePushSettings(ctx, *settings); err != nil {
					return err
				}
				a.out.Success("Nieuwe VAPID-sleutels opgeslagen")
			}
			return a.out.Print(keys, func() cli.Table {
				t := cli.Table{Headers: []string{"Sleutel", "Waarde"}}
				t.Add("public", keys.PublicKey)
				t.Add("private", keys.PrivateKey)
				return t
			})
		}),
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "store the new keys in the push settings")
	return cmd
}

func groupTable(groups ...model.NotificationGroup) func() cli.Table {
	return func() cli.Table {
		t := cli.Table{Headers: []string{"ID", "Naam", "Omschrijving", "Leden"}}
		for _, g := range groups {
			t.Add(strconv.Itoa(g.ID), g.Name, dash(g.Description), joinInts(g.MemberIDs))
		}
		return t
	}
}

func pushGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "groups",
		Aliases: []string{"group"},
		Short:   "Manage notification groups",
	}

	var name, description string
	var members []int

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a group",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			g, err := a.client.CreateGroup(cmd.Context(), model.NotificationGroup{
				Name: name, Description: description, MemberIDs: members,
			})
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Groep #%d aangemaakt", g.ID))
			return a.out.Print(g, groupTable(*g))
		}),
	}
	create.Flags().StringVar(&name, "name", "", "group name")
	create.Flags().StringVar(&description, "description", "", "description")
	create.Flags().IntSliceVar(&members, "member", nil, "user id (repeatable)")
	_ = create.MarkFlagRequired("name")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a group or change its description",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			g, err := a.client.GetGroup(cmd.Context(), id)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				g.Name = name
			}
			if cmd.Flags().Changed("description") {
				g.Description = description
			}
			if g, err = a.client.UpdateGroup(cmd.Context(), *g); err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Groep #%d bijgewerkt", g.ID))
			return a.out.Print(g, groupTable(*g))
		}),
	}
	update.Flags().StringVar(&name, "name", "", "group name")
	update.Flags().StringVar(&description, "description", "", "description")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List groups",
			Args:  cobra.NoArgs,
			RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
				groups, err := a.client.ListGroups(cmd.Context())
				if err != nil {
					return err
				}
				return a.out.Print(groups, groupTable(groups...))
			}),
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show one group",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				g, err := a.client.GetGroup(cmd.Context(), id)
				if err != nil {
					return err
				}
				return a.out.Print(g, groupTable(*g))
			}),
		},
		create,
		update,
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a group and its schedules",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				ok, err := a.confirm(cmd, fmt.Sprintf("Groep #%d verwijderen?", id))
				if err != nil || !ok {
					return err
				}
				if err := a.client.DeleteGroup(cmd.Context(), id); err != nil {
					return err
				}
				a.out.Success(fmt.Sprintf("Groep #%d verwijderd", id))
				return nil
			}),
		},
		groupMembersCmd(true),
		groupMembersCmd(false),
	)
	return cmd
}

func groupMembersCmd(add bool) *cobra.Command {
	use, short := "remove-members", "Remove users from a group"
	if add {
		use, short = "add-members", "Add users to a group"
	}

	return &cobra.Command{
		Use:   use + " <group> <user>[,<user>...]...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			users, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			var g *model.NotificationGroup
			if add {
				g, err = a.client.AddMembers(cmd.Context(), id, users)
			} else {
				g, err = a.client.RemoveMembers(cmd.Context(), id, users)
			}
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Groep %q heeft %d leden", g.Name, len(g.MemberIDs)))
			return a.out.Print(g, groupTable(*g))
		}),
	}
}

func scheduleTable(schedules ...model.NotificationSchedule) func() cli.Table {
	return func() cli.Table {
		t := cli.Table{Headers: []string{"ID", "Groep", "Titel", "Wanneer", "Actief", "Volgende", "Laatst verstuurd"}}
		for _, s := range schedules {
			next := "-"
			if at, ok := schedule.NextRun(s, now()); ok {
				next = at.Format("Mon 2006-01-02 15:04")
			}
			last := "-"
			if s.LastSentAt != nil {
				last = s.LastSentAt.Format("2006-01-02 15:04")
			}
			t.Add(strconv.Itoa(s.ID), strconv.Itoa(s.GroupID), s.Title, schedule.Describe(s), yesNo(s.IsActive), next, last)
		}
		return t
	}
}

func pushSchedulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedules",
		Aliases: []string{"schedule"},
		Short:   "Manage recurring notifications",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List schedules",
			Args:  cobra.NoArgs,
			RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
				schedules, err := a.client.ListSchedules(cmd.Context())
				if err != nil {
					return err
				}
				return a.out.Print(schedules, scheduleTable(schedules...))
			}),
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show one schedule",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				s, err := a.client.GetSchedule(cmd.Context(), id)
				if err != nil {
					return err
				}
				if err := a.out.Print(s, scheduleTable(*s)); err != nil {
					return err
				}
				a.out.Message(cli.RenderBox(s.Title, s.Body))
				return nil
			}),
		},
		scheduleSaveCmd(false),
		scheduleSaveCmd(true),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a schedule",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				ok, err := a.confirm(cmd, fmt.Sprintf("Schema #%d verwijderen?", id))
				if err != nil || !ok {
					return err
				}
				if err := a.client.DeleteSchedule(cmd.Context(), id); err != nil {
					return err
				}
				a.out.Success(fmt.Sprintf("Schema #%d verwijderd", id))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "send-now <id>",
			Short: "Send a schedule's notification immediately, even when inactive",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				sent, err := a.client.SendNow(cmd.Context(), id)
				if err != nil {
					return err
				}
				a.out.Success(fmt.Sprintf("%q verstuurd naar %d ontvanger(s)", sent.Title, len(sent.Recipients)))
				return a.out.Print(sent, sentTable(*sent))
			}),
		},
	)
	return cmd
}

// scheduleSaveCmd builds "create" or "update <id>". Both go through the schedule form so
// switching frequency clears the day fields the new frequency does not use.
func scheduleSaveCmd(update bool) *cobra.Command {
	var (
		groupID   int
		title     string
		body      string
		url       string
		frequency string
		sendTime  string
		weeklyDay string
		days      []string
		active    bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a schedule",
		Example: `  kantoor push schedules create --group 3 --title "Uren invullen" --weekly vrijdag --time 15:00
  kantoor push schedules create --group 3 --title "Planning" --days ma,wo,vr --time 07:30`,
		Args: cobra.NoArgs,
	}
	if update {
		cmd.Use, cmd.Short, cmd.Args, cmd.Example = "update <id>", "Change a schedule", cobra.ExactArgs(1), ""
	}

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		f := cmd.Flags()

		form := schedule.NewForm(groupID)
		if update {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			stored, err := a.client.GetSchedule(ctx, id)
			if err != nil {
				return err
			}
			form = schedule.FromSchedule(*stored)
			if f.Changed("group") {
				form.GroupID = groupID
			}
		}

		if f.Changed("title") || !update {
			form.Title = title
		}
		if f.Changed("body") || !update {
			form.Body = body
		}
		if f.Changed("url") || !update {
			form.URL = url
		}
		if f.Changed("time") || !update {
			form.SendTime = sendTime
		}
		if f.Changed("active") || !update {
			form.IsActive = active
		}

		switch {
		case f.Changed("weekly"):
			day, err := schedule.ParseDay(weeklyDay)
			if err != nil {
				return err
			}
			form = form.SetFrequency(model.FrequencyWeekly).SetWeeklyDay(day)
		case f.Changed("days"):
			form = form.SetFrequency(model.FrequencyCustom)
			form.CustomDays = nil
			for _, d := range days {
				day, err := schedule.ParseDay(d)
				if err != nil {
					return err
				}
				form = form.ToggleCustomDay(day)
			}
		case f.Changed("frequency"):
			form = form.SetFrequency(model.Frequency(frequency))
		}

		saved, err := schedule.Save(ctx, a.client, form)
		if err != nil {
			return err
		}
		a.out.Success(fmt.Sprintf("Schema #%d opgeslagen: %s", saved.ID, schedule.Describe(*saved)))
		return a.out.Print(saved, scheduleTable(*saved))
	})

	flags := cmd.Flags()
	flags.IntVar(&groupID, "group", 0, "notification group id")
	flags.StringVar(&title, "title", "", "notification title")
	flags.StringVar(&body, "body", "", "notification body")
	flags.StringVar(&url, "url", "", "link opened from the notification")
	flags.StringVar(&frequency, "frequency", string(model.FrequencyDaily), "daily, weekly or custom")
	flags.StringVar(&weeklyDay, "weekly", "", "send weekly on this day")
	flags.StringSliceVar(&days, "days", nil, "send on these days, e.g. ma,wo,vr")
	flags.StringVar(&sendTime, "time", "08:00", "send time HH:MM")
	flags.BoolVar(&active, "active", true, "schedule is active")
	cmd.MarkFlagsMutuallyExclusive("weekly", "days")
	if !update {
		_ = cmd.MarkFlagRequired("group")
		_ = cmd.MarkFlagRequired("title")
	}
	return cmd
}

func sentTable(sent ...model.SentNotification) func() cli.Table {
	return func() cli.Table {
		t := cli.Table{Headers: []string{"ID", "Verstuurd", "Titel", "Ontvangers", "Gelezen"}}
		for _, n := range sent {
			t.Add(
				strconv.Itoa(n.ID),
				n.SentAt.Format("2006-01-02 15:04"),
				n.Title,
				strconv.Itoa(len(n.Recipients)),
				fmt.Sprintf("%d/%d", n.ReadCount(), len(n.Recipients)),
			)
		}
		return t
	}
}

func pushSentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sent",
		Short: "Inspect and prune the send history",
	}

	var page int
	list := &cobra.Command{
		Use:   "list",
		Short: "List sent notifications",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			result, err := a.client.ListSent(cmd.Context(), page)
			if err != nil {
				return err
			}
			if err := a.out.Print(result, sentTable(result.Results...)); err != nil {
				return err
			}
			a.out.Message(cli.SubtleStyle.Render(fmt.Sprintf("%d van %d meldingen", len(result.Results), result.Count)))
			return nil
		}),
	}
	list.Flags().IntVar(&page, "page", 1, "page number")

	var days int
	clearOld := &cobra.Command{
		Use:   "clear-old",
		Short: "Delete history older than --days",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			ok, err := a.confirm(cmd, fmt.Sprintf("Meldingen ouder dan %d dagen verwijderen?", days))
			if err != nil || !ok {
				return err
			}
			count, err := a.client.ClearOldSent(cmd.Context(), days)
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("%d melding(en) verwijderd", count))
			return nil
		}),
	}
	clearOld.Flags().IntVar(&days, "days", 30, "age in days")

	cmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "delete <id>[,<id>...]...",
			Short: "Delete history entries",
			Args:  cobra.MinimumNArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				ids, err := parseIDs(args)
				if err != nil {
					return err
				}
				ok, err := a.confirm(cmd, fmt.Sprintf("%d melding(en) verwijderen?", len(ids)))
				if err != nil || !ok {
					return err
				}
				count, err := a.client.BulkDeleteSent(cmd.Context(), ids)
				if err != nil {
					return err
				}
				a.out.Success(fmt.Sprintf("%d melding(en) verwijderd", count))
				return nil
			}),
		},
		clearOld,
	)
	return cmd
}

func joinInts(values []int) string {
	if len(values) == 0 {
		return "-"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}
