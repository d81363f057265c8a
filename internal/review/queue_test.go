package review

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kantoor/internal/model"
)

func imports(n int) []model.EmailImport {
	out := make([]model.EmailImport, n)
	for i := range out {
		out[i] = model.EmailImport{
			ID:             i + 1,
			Status:         model.EmailAwaitingReview,
			AttachmentName: fmt.Sprintf("factuur-%d.pdf", i+1),
		}
	}
	return out
}

func loadedQueue(items []model.EmailImport) Queue {
	q := NewQueue()
	q, _ = q.Apply(Loaded{Gen: 1, Filter: q.Filter, Page: model.Page[model.EmailImport]{Count: len(items), Results: items}})
	return q
}

func ids(q Queue) []int {
	out := make([]int, len(q.Imports))
	for i, imp := range q.Imports {
		out[i] = imp.ID
	}
	return out
}

func TestQueue_BulkDeleteRemovesExactlySelected(t *testing.T) {
	q := loadedQueue(imports(5))
	for _, id := range []int{2, 4, 5} {
		q, _ = q.Apply(Toggle{ID: id})
	}

	q, eff := q.Apply(BulkDelete{})
	require.Equal(t, DeleteImports{IDs: []int{2, 4, 5}}, eff)

	q, _ = q.Apply(Deleted{IDs: []int{2, 4, 5}, Count: 3})
	assert.Equal(t, []int{1, 3}, ids(q))
	assert.Empty(t, q.Selected)
	assert.Empty(t, q.Pending)
	assert.Equal(t, 2, q.Count)
}

func TestQueue_DeleteFailedKeepsSelection(t *testing.T) {
	q := loadedQueue(imports(3))
	q, _ = q.Apply(Toggle{ID: 1})
	q, eff := q.Apply(BulkDelete{})
	require.NotNil(t, eff)

	q, _ = q.Apply(DeleteFailed{IDs: []int{1}, Err: errors.New("boom")})
	assert.Len(t, q.Imports, 3)
	assert.Equal(t, []int{1}, q.SelectedIDs())
	assert.NotEmpty(t, q.Err)
}

func TestQueue_BulkDeleteNothingSelected(t *testing.T) {
	q := loadedQueue(imports(2))
	q, eff := q.Apply(BulkDelete{})
	assert.Nil(t, eff)
	assert.NotEmpty(t, q.Err)
}

func TestQueue_SelectAll(t *testing.T) {
	q := loadedQueue(imports(3))
	q, _ = q.Apply(SelectAll{})
	assert.Equal(t, []int{1, 2, 3}, q.SelectedIDs())

	q, _ = q.Apply(SelectAll{})
	assert.Empty(t, q.SelectedIDs())
}

func TestQueue_ToggleUnknownID(t *testing.T) {
	q := loadedQueue(imports(1))
	q, _ = q.Apply(Toggle{ID: 99})
	assert.Empty(t, q.Selected)
}

func TestQueue_DropsStaleResponses(t *testing.T) {
	q := NewQueue()
	q, _ = q.Apply(Loaded{Gen: 5, Filter: q.Filter, Page: model.Page[model.EmailImport]{Results: imports(2)}})
	q, _ = q.Apply(Loaded{Gen: 3, Filter: q.Filter, Page: model.Page[model.EmailImport]{Results: imports(4)}})
	assert.Len(t, q.Imports, 2)

	q, _ = q.Apply(LoadFailed{Gen: 4, Err: errors.New("late")})
	assert.Empty(t, q.Err)

	q, _ = q.Apply(StatsLoaded{Gen: 7, Stats: model.EmailImportStats{Total: 9}})
	q, _ = q.Apply(StatsLoaded{Gen: 6, Stats: model.EmailImportStats{Total: 1}})
	require.NotNil(t, q.Stats)
	assert.Equal(t, 9, q.Stats.Total)
}

func TestQueue_ListFetchedBeforeMutation(t *testing.T) {
	approved := imports(5)[1]
	approved.Status = model.EmailApproved

	tests := []struct {
		name     string
		mutation func(q Queue) Queue
		staleGen uint64
		want     []int
	}{
		{
			name: "bulk delete",
			mutation: func(q Queue) Queue {
				for _, id := range []int{2, 4, 5} {
					q, _ = q.Apply(Toggle{ID: id})
				}
				q, _ = q.Apply(BulkDelete{})
				q, _ = q.Apply(Deleted{IDs: []int{2, 4, 5}, Count: 3, Gen: 3})
				return q
			},
			staleGen: 2,
			want:     []int{1, 3},
		},
		{
			name: "bulk delete without generation",
			mutation: func(q Queue) Queue {
				q, _ = q.Apply(Toggle{ID: 2})
				q, _ = q.Apply(BulkDelete{})
				q, _ = q.Apply(Deleted{IDs: []int{2}, Count: 1})
				return q
			},
			staleGen: 2,
			want:     []int{1, 3, 4, 5},
		},
		{
			name: "review",
			mutation: func(q Queue) Queue {
				q, _ = q.Apply(Review{ID: 2, Action: model.ActionApprove})
				q, _ = q.Apply(Reviewed{Import: approved, Gen: 3})
				return q
			},
			staleGen: 2,
			want:     []int{1, 3, 4, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.mutation(loadedQueue(imports(5)))

			q, _ = q.Apply(Loaded{Gen: tt.staleGen, Filter: q.Filter,
				Page: model.Page[model.EmailImport]{Count: 5, Results: imports(5)}})
			assert.Equal(t, tt.want, ids(q))
			assert.Equal(t, len(tt.want), q.Count)
		})
	}
}

func TestQueue_DeletedStayGoneFromLaterLists(t *testing.T) {
	q := loadedQueue(imports(3))
	q, _ = q.Apply(Toggle{ID: 3})
	q, _ = q.Apply(BulkDelete{})
	q, _ = q.Apply(Deleted{IDs: []int{3}, Count: 1, Gen: 2})

	q, _ = q.Apply(Loaded{Gen: 4, Filter: q.Filter, Page: model.Page[model.EmailImport]{Count: 3, Results: imports(3)}})
	assert.Equal(t, []int{1, 2}, ids(q))
	assert.Equal(t, uint64(4), q.Gen)
}

func TestQueue_FilterChangeDropsOldResults(t *testing.T) {
	q := loadedQueue(imports(2))
	old := q.Filter

	q, _ = q.Apply(SetFilter{Filter: model.EmailImportFilter{Status: model.EmailFailed}})
	assert.Empty(t, q.Imports)

	q, _ = q.Apply(Loaded{Gen: 9, Filter: old, Page: model.Page[model.EmailImport]{Results: imports(2)}})
	assert.Empty(t, q.Imports)
}

func TestQueue_RefreshPrunesSelection(t *testing.T) {
	q := loadedQueue(imports(3))
	q, _ = q.Apply(Toggle{ID: 3})
	q, _ = q.Apply(Loaded{Gen: 2, Filter: q.Filter, Page: model.Page[model.EmailImport]{Results: imports(2)}})
	assert.Empty(t, q.Selected)
}

func TestQueue_Review(t *testing.T) {
	items := imports(3)
	items[2].Status = model.EmailProcessing
	q := loadedQueue(items)

	q, _ = q.Apply(SetNotes{ID: 1, Notes: "Brandstof augustus"})
	q, _ = q.Apply(SetType{ID: 1, Type: model.InvoiceCredit})
	q, eff := q.Apply(Review{ID: 1, Action: model.ActionApprove})
	require.Equal(t, ReviewImport{ID: 1, Request: model.ReviewRequest{
		Action:      model.ActionApprove,
		Notes:       "Brandstof augustus",
		InvoiceType: model.InvoiceCredit,
	}}, eff)
	assert.True(t, q.Pending[1])

	_, again := q.Apply(Review{ID: 1, Action: model.ActionApprove})
	assert.Nil(t, again, "no second request while one is in flight")

	approved := items[0]
	approved.Status = model.EmailApproved
	q, _ = q.Apply(Reviewed{Import: approved})
	assert.Equal(t, []int{2, 3}, ids(q), "approved imports leave the awaiting list")
	assert.Empty(t, q.Pending)
	assert.Empty(t, q.Notes)

	q, eff = q.Apply(Review{ID: 2, Action: model.ActionReject})
	assert.Equal(t, ReviewImport{ID: 2, Request: model.ReviewRequest{Action: model.ActionReject}}, eff)

	q, eff = q.Apply(Review{ID: 3, Action: model.ActionApprove})
	assert.Nil(t, eff, "only awaiting_review imports can be reviewed")
	assert.Contains(t, q.Err, "factuur-3.pdf")
}

func TestQueue_ApproveDefaultsToPurchase(t *testing.T) {
	q := loadedQueue(imports(1))
	_, eff := q.Apply(Review{ID: 1, Action: model.ActionApprove})
	require.IsType(t, ReviewImport{}, eff)
	assert.Equal(t, model.InvoicePurchase, eff.(ReviewImport).Request.InvoiceType)
}

func TestQueue_SetTypeRejectsUnknown(t *testing.T) {
	q := loadedQueue(imports(1))
	q, _ = q.Apply(SetType{ID: 1, Type: "proforma"})
	assert.NotEmpty(t, q.Err)
	assert.Empty(t, q.Types)
}

func TestQueue_ApplyLeavesReceiverUntouched(t *testing.T) {
	q := loadedQueue(imports(2))
	next, _ := q.Apply(Toggle{ID: 1})
	assert.Empty(t, q.Selected)
	assert.True(t, next.Selected[1])
}

func TestQueue_Cursor(t *testing.T) {
	q := loadedQueue(imports(3))
	q, _ = q.Apply(MoveCursor{Delta: 10})
	assert.Equal(t, 2, q.Cursor)
	q, _ = q.Apply(MoveCursor{Delta: -1})
	cur, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, 2, cur.ID)
}
