package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/kantoor/internal/cli"
	"github.com/Veraticus/kantoor/internal/leave"
	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/timesheet"
)

// now is replaced in tests.
var now = time.Now

func timeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "time",
		Aliases: []string{"uren"},
		Short:   "Register worked hours and submit weeks",
	}

	cmd.AddCommand(
		timeListCmd(),
		timeAddCmd(),
		timeDeleteCmd(),
		timeSubmitCmd(),
		timeSummaryCmd(),
		timeHistoryCmd(),
		timeReportCmd(),
	)
	return cmd
}

// weekFlags selects an ISO week, defaulting to the current one.
type weekFlags struct {
	number int
	year   int
}

func (f *weekFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.number, "week", 0, "ISO week number (default: current week)")
	cmd.Flags().IntVar(&f.year, "year", 0, "ISO year (default: current year)")
}

func (f weekFlags) week() timesheet.Week {
	w := timesheet.CurrentWeek(now())
	if f.number > 0 {
		w.Number = f.number
	}
	if f.year > 0 {
		w.Year = f.year
	}
	return w
}

func entryTable(entries ...model.TimeEntry) func() cli.Table {
	return func() cli.Table {
		t := cli.Table{Headers: []string{"ID", "Datum", "Week", "Aanvang", "Eind", "Pauze", "Uren", "Km", "Status", "Opmerkingen"}}
		for _, e := range entries {
			hours := e.TotalHours
			if hours == "" {
				if minutes, err := timesheet.WorkedMinutes(e); err == nil {
					hours = timesheet.FormatDuration(minutes)
				}
			}
			t.Add(
				strconv.Itoa(e.ID),
				e.Date,
				strconv.Itoa(e.WeekNumber),
				e.StartTime,
				e.EndTime,
				timesheet.FormatDuration(e.BreakMinutes),
				dash(hours),
				strconv.Itoa(e.Kilometers()),
				string(e.Status),
				dash(e.Notes),
			)
		}
		return t
	}
}

func timeListCmd() *cobra.Command {
	var wf weekFlags
	var status string
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List time entries of a week",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			filter := model.TimeEntryFilter{Status: model.EntryStatus(status)}
			if !all {
				w := wf.week()
				filter.WeekNumber, filter.Year = w.Number, w.Year
			}
			page, err := a.client.ListTimeEntries(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if err := a.out.Print(page, entryTable(page.Results...)); err != nil {
				return err
			}

			weeks, err := timesheet.GroupByWeek(page.Results)
			if err != nil {
				return err
			}
			for _, w := range weeks {
				line := fmt.Sprintf("%s: %s uur, %d km", w.Week, timesheet.FormatDuration(w.Minutes), w.KM)
				if w.Submittable() {
					line += fmt.Sprintf(", %d concept", w.Concepts)
				}
				a.out.Message(cli.SubtleStyle.Render(line))
			}
			return nil
		}),
	}

	wf.register(cmd)
	cmd.Flags().StringVar(&status, "status", "", "filter on status (concept, ingediend, goedgekeurd, afgekeurd)")
	cmd.Flags().BoolVar(&all, "all", false, "all weeks")
	return cmd
}

func timeAddCmd() *cobra.Command {
	var entry model.TimeEntry
	var breakDuration string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a shift",
		Long: `Register a shift as a concept entry.

The week number is derived from the date (ISO weeks). A shift whose end lies before its
start runs past midnight. --break accepts 0:30, 0,5 or 30m style values.`,
		Example: `  kantoor time add --date 2025-08-25 --start 06:00 --end 15:30 --break 0:30 --km-start 120400 --km-end 120712`,
		Args:    cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if entry.Date == "" {
				entry.Date = now().Format("2006-01-02")
			}
			minutes, err := parseBreak(breakDuration)
			if err != nil {
				return err
			}
			entry.BreakMinutes = minutes

			created, err := timesheet.Record(cmd.Context(), a.client, entry)
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Dienst van %s geregistreerd in week %d", created.Date, created.WeekNumber))
			return a.out.Print(created, entryTable(*created))
		}),
	}

	flags := cmd.Flags()
	flags.StringVar(&entry.Date, "date", "", "date as YYYY-MM-DD (default: today)")
	flags.StringVar(&entry.StartTime, "start", "", "start time HH:MM")
	flags.StringVar(&entry.EndTime, "end", "", "end time HH:MM")
	flags.StringVar(&breakDuration, "break", "0", "break length")
	flags.IntVar(&entry.KMStart, "km-start", 0, "odometer at start")
	flags.IntVar(&entry.KMEnd, "km-end", 0, "odometer at end")
	flags.StringVar(&entry.Notes, "notes", "", "remarks")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

// parseBreak accepts a duration in hours ("0:30", "0,5") or minutes ("30m").
func parseBreak(s string) (int, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return int(d.Minutes()), nil
	}
	if s == "0" {
		return 0, nil
	}
	return timesheet.ParseDuration(s)
}

func timeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a concept entry",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := a.confirm(cmd, fmt.Sprintf("Registratie #%d verwijderen?", id))
			if err != nil || !ok {
				return err
			}
			if err := a.client.DeleteTimeEntry(cmd.Context(), id); err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Registratie #%d verwijderd", id))
			return nil
		}),
	}
}

func timeSubmitCmd() *cobra.Command {
	var wf weekFlags

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit the concept entries of a week",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			w := wf.week()
			ok, err := a.confirm(cmd, fmt.Sprintf("Alle concepten van %s indienen?", w))
			if err != nil || !ok {
				return err
			}
			count, err := timesheet.Submit(cmd.Context(), a.client, w)
			if err != nil {
				return err
			}
			if a.out.Structured() {
				return a.out.Print(model.CountResponse{Count: count}, nil)
			}
			if count == 0 {
				a.out.Message(cli.FormatInfo(fmt.Sprintf("Geen concepten in %s", w)))
				return nil
			}
			a.out.Success(fmt.Sprintf("%d registratie(s) ingediend voor %s", count, w))
			return nil
		}),
	}

	wf.register(cmd)
	return cmd
}

func timeSummaryCmd() *cobra.Command {
	var wf weekFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the totals of a week",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			w := wf.week()
			if err := w.Validate(); err != nil {
				return err
			}
			summary, err := a.client.WeekSummary(cmd.Context(), w.Number, w.Year)
			if err != nil {
				return err
			}
			if err := a.out.Print(summary, entryTable(summary.Entries...)); err != nil {
				return err
			}
			a.out.Message(cli.RenderBox(
				fmt.Sprintf("Week %d, %d", summary.WeekNumber, summary.Year),
				fmt.Sprintf("%s uur\n%d km\n%d concept(en)", summary.TotalHours, summary.TotalKM, summary.ConceptCount),
			))
			return nil
		}),
	}

	wf.register(cmd)
	return cmd
}

func timeHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List submitted weeks",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			history, err := a.client.History(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.Print(history, func() cli.Table {
				t := cli.Table{Headers: []string{"Jaar", "Week", "Registraties", "Uren", "Status", "Ingediend op"}}
				for _, h := range history {
					submitted := "-"
					if h.SubmittedAt != nil {
						submitted = h.SubmittedAt.Format("2006-01-02")
					}
					t.Add(strconv.Itoa(h.Year), strconv.Itoa(h.WeekNumber), strconv.Itoa(h.EntryCount),
						h.TotalHours, string(h.Status), submitted)
				}
				return t
			})
		}),
	}
}

func timeReportCmd() *cobra.Command {
	var year int
	var pdf, years bool
	var out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show or download the yearly driver report",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			ctx := cmd.Context()
			if years {
				available, err := a.client.DriverReportYears(ctx)
				if err != nil {
					return err
				}
				return a.out.Print(available, func() cli.Table {
					t := cli.Table{Headers: []string{"Jaar"}}
					for _, y := range available {
						t.Add(strconv.Itoa(y))
					}
					return t
				})
			}

			if year == 0 {
				year = now().Year()
			}
			if pdf {
				blob, err := a.client.DriverReportPDF(ctx, year)
				if err != nil {
					return err
				}
				return saveBlob(cmd, a, blob, out, fmt.Sprintf("rittenrapport-%d.pdf", year))
			}

			report, err := a.client.DriverReport(ctx, year)
			if err != nil {
				return err
			}
			if err := a.out.Print(report, func() cli.Table {
				t := cli.Table{Headers: []string{"Maand", "Dagen", "Uren", "Km"}}
				for _, r := range report.Rows {
					t.Add(leave.MonthName(time.Month(r.Month)), strconv.Itoa(r.Days), r.TotalHours, strconv.Itoa(r.TotalKM))
				}
				t.Add(cli.BoldStyle.Render("Totaal"), "", report.TotalHours, strconv.Itoa(report.TotalKM))
				return t
			}); err != nil {
				return err
			}
			a.out.Message(cli.SubtleStyle.Render(fmt.Sprintf("%s, %d", report.DriverName, report.Year)))
			return nil
		}),
	}

	cmd.Flags().IntVar(&year, "year", 0, "report year (default: this year)")
	cmd.Flags().BoolVar(&pdf, "pdf", false, "download the report as PDF")
	cmd.Flags().BoolVar(&years, "years", false, "list the years with a report")
	cmd.Flags().StringVarP(&out, "out", "O", "", "PDF output file, - for stdout")
	return cmd
}
