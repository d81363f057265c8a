package components

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/review"
	"github.com/Veraticus/kantoor/internal/tui/themes"
	"github.com/Veraticus/kantoor/internal/tui/tuitest"
)

func loadedQueue(n int) review.Queue {
	imports := make([]model.EmailImport, n)
	for i := range imports {
		imports[i] = model.EmailImport{
			ID:             i + 1,
			Subject:        "Factuur",
			FromAddress:    "boekhouding@vervoer.nl",
			AttachmentName: "factuur.pdf",
			Status:         model.EmailAwaitingReview,
			ReceivedAt:     time.Date(2025, 8, 20, 9, 30, 0, 0, time.UTC),
		}
	}
	q, _ := review.NewQueue().Apply(review.Loaded{
		Gen:    1,
		Filter: model.EmailImportFilter{Status: model.EmailAwaitingReview},
		Page:   model.Page[model.EmailImport]{Count: n, Results: imports},
	})
	return q
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "te beoordelen", StatusLabel(model.EmailAwaitingReview))
	assert.Equal(t, "onbekend", StatusLabel("onbekend"))
}

func TestRenderQueue(t *testing.T) {
	q := loadedQueue(3)
	q, _ = q.Apply(review.Toggle{ID: 2})
	q, _ = q.Apply(review.SetNotes{ID: 3, Notes: "bellen"})

	out := tuitest.StripANSI(RenderQueue(q, 0, 0, themes.Default))
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "[ ] 1"))
	assert.True(t, strings.HasPrefix(lines[1], "[x] 2"))
	assert.Contains(t, lines[0], "20-08 09:30")
	assert.Contains(t, lines[0], "te beoordelen")
	assert.True(t, strings.HasSuffix(strings.TrimRight(lines[2], " "), "✎"))
}

func TestRenderQueue_ScrollsToCursor(t *testing.T) {
	q := loadedQueue(10)
	q, _ = q.Apply(review.MoveCursor{Delta: 7})

	out := tuitest.StripANSI(RenderQueue(q, 0, 3, themes.Default))
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[2], "[ ] 8"))
}

func TestRenderQueue_Empty(t *testing.T) {
	out := tuitest.StripANSI(RenderQueue(review.NewQueue(), 80, 10, themes.Default))
	assert.Equal(t, "Geen e-mailimports voor dit filter", out)
}

func TestRenderDetail(t *testing.T) {
	q := loadedQueue(1)
	q, _ = q.Apply(review.SetType{ID: 1, Type: model.InvoiceSales})

	out := tuitest.StripANSI(RenderDetail(q, themes.Default))
	assert.True(t, tuitest.ContainsInOrder(out, "Factuur", "boekhouding@vervoer.nl", "factuur.pdf", "te beoordelen", "sales"))

	assert.Empty(t, RenderDetail(review.NewQueue(), themes.Default))
}
