package components

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/tui/themes"
	"github.com/Veraticus/kantoor/internal/tui/tuitest"
)

func TestStatsPanel(t *testing.T) {
	panel := NewStatsPanelModel(themes.Default)
	assert.Equal(t, "Statistieken laden...", tuitest.StripANSI(panel.View()))
	assert.Zero(t, panel.Handled())

	panel.SetStats(&model.EmailImportStats{
		Total:          10,
		AwaitingReview: 2,
		Today:          4,
		Failed:         1,
		ByStatus: map[model.EmailImportStatus]int{
			model.EmailPending:  1,
			model.EmailApproved: 6,
		},
	})
	panel.Resize(40)
	assert.InDelta(t, 0.7, panel.Handled(), 1e-9)

	full := tuitest.StripANSI(panel.View())
	assert.True(t, tuitest.ContainsInOrder(full, "Statistieken", "Totaal", "10", "70% afgehandeld", "goedgekeurd", "wachtend"))

	panel.SetCompact(true)
	assert.Equal(t, "● 2 te beoordelen  ● 4 vandaag  ● 1 mislukt", tuitest.StripANSI(panel.View()))
}
