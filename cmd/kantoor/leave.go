package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Veraticus/kantoor/internal/cli"
	"github.com/Veraticus/kantoor/internal/leave"
)

// Names shown per calendar cell before collapsing into "+n".
const namesPerDay = 2

var weekdayHeaders = []string{"ma", "di", "wo", "do", "vr", "za", "zo"}

func leaveCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:     "leave",
		Aliases: []string{"verlof"},
		Short:   "Show the leave calendar of a month",
		Example: `  kantoor leave
  kantoor leave --month 2025-08`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			today := now()
			year, m := today.Year(), today.Month()
			if month != "" {
				t, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("--month %q: expected YYYY-MM", month)
				}
				year, m = t.Year(), t.Month()
			}

			cal, err := leave.Load(cmd.Context(), a.client, year, m, today)
			if err != nil {
				return err
			}
			if a.out.Structured() {
				return a.out.Print(cal, nil)
			}

			a.out.Raw(cli.FormatTitle("Verlof " + cal.Title()))
			a.out.Raw(renderCalendar(cal))
			return a.out.Print(nil, func() cli.Table {
				t := cli.Table{Headers: []string{"Medewerker", "Werkdagen vrij"}}
				off := cal.WorkdaysOff()
				names := make([]string, 0, len(off))
				for name := range off {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					t.Add(name, strconv.Itoa(off[name]))
				}
				return t
			})
		}),
	}

	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default: this month)")
	return cmd
}

func renderCalendar(cal leave.Month) string {
	cellWidth := cli.CalendarDayStyle.GetWidth()

	headers := make([]string, len(weekdayHeaders))
	for i, h := range weekdayHeaders {
		headers[i] = cli.TableHeaderStyle.Width(cellWidth + 2).Align(lipgloss.Center).Render(h)
	}
	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, headers...)}

	for _, week := range cal.Weeks {
		cells := make([]string, len(week))
		for i, day := range week {
			cells[i] = renderDay(day, cellWidth)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderDay(day leave.Day, width int) string {
	style := cli.CalendarDayStyle
	number := strconv.Itoa(day.Date.Day())
	switch {
	case day.Today:
		number = cli.BoldStyle.Foreground(cli.PrimaryColor).Render(number + " vandaag")
		style = style.BorderForeground(cli.PrimaryColor)
	case !day.InMonth, day.Weekend:
		number = cli.SubtleStyle.Render(number)
	}

	lines := []string{number}
	if day.InMonth {
		for i, r := range day.Requests {
			if i == namesPerDay {
				lines = append(lines, cli.SubtleStyle.Render(fmt.Sprintf("+%d", len(day.Requests)-namesPerDay)))
				break
			}
			lines = append(lines, cli.WarningStyle.Render(shorten(r.UserName, width)))
		}
	}
	return style.Render(strings.Join(lines, "\n"))
}

func shorten(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
