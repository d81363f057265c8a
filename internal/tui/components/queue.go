package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/review"
	"github.com/Veraticus/kantoor/internal/tui/themes"
)

var statusLabels = map[model.EmailImportStatus]string{
	model.EmailPending:        "wachtend",
	model.EmailProcessing:     "verwerken",
	model.EmailAwaitingReview: "te beoordelen",
	model.EmailApproved:       "goedgekeurd",
	model.EmailRejected:       "afgewezen",
	model.EmailCompleted:      "voltooid",
	model.EmailFailed:         "mislukt",
}

// StatusLabel returns the Dutch label of an email import status.
func StatusLabel(s model.EmailImportStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// RenderQueue draws the review list with checkboxes. At most height rows are shown,
// scrolled so the cursor stays visible.
func RenderQueue(q review.Queue, width, height int, theme themes.Theme) string {
	if len(q.Imports) == 0 {
		return theme.StatusPending.Render("Geen e-mailimports voor dit filter")
	}
	if height <= 0 {
		height = len(q.Imports)
	}

	first := 0
	if q.Cursor >= height {
		first = q.Cursor - height + 1
	}
	last := min(len(q.Imports), first+height)

	rows := make([]string, 0, last-first)
	for i := first; i < last; i++ {
		imp := q.Imports[i]
		box := "[ ]"
		if q.Selected[imp.ID] {
			box = "[x]"
		}
		state := StatusLabel(imp.Status)
		if q.Pending[imp.ID] {
			state = "bezig..."
		}
		typ := ""
		if t, ok := q.Types[imp.ID]; ok {
			typ = string(t)
		}
		row := fmt.Sprintf("%s %-5d %-10s %-24s %-28s %-14s %s",
			box,
			imp.ID,
			imp.ReceivedAt.Format("02-01 15:04"),
			truncate(imp.FromAddress, 24),
			truncate(imp.AttachmentName, 28),
			state,
			typ)
		if note := q.Notes[imp.ID]; note != "" {
			row += " ✎"
		}
		if width > 0 {
			row = truncate(row, width)
		}

		switch {
		case i == q.Cursor:
			row = theme.Selected.Render(row)
		case imp.Status == model.EmailFailed:
			row = theme.StatusError.Render(row)
		default:
			row = theme.Normal.Render(row)
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

// RenderDetail shows the import under the cursor.
func RenderDetail(q review.Queue, theme themes.Theme) string {
	imp, ok := q.Current()
	if !ok {
		return ""
	}
	lines := []string{
		theme.Bold.Render(imp.Subject),
		"Van:      " + imp.FromAddress,
		"Bijlage:  " + imp.AttachmentName,
		"Status:   " + StatusLabel(imp.Status),
	}
	if t, ok := q.Types[imp.ID]; ok {
		lines = append(lines, "Type:     "+string(t))
	}
	if note := q.Notes[imp.ID]; note != "" {
		lines = append(lines, "Notitie:  "+note)
	}
	if imp.ErrorMessage != "" {
		lines = append(lines, theme.StatusError.Render("Fout:     "+imp.ErrorMessage))
	}
	return theme.RoundedBox.Render(strings.Join(lines, "\n"))
}
