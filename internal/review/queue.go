// Package review holds the email import review queue and the poller that keeps it fresh.
package review

import (
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/Veraticus/kantoor/internal/api"
	"github.com/Veraticus/kantoor/internal/model"
)

// Queue is the state of the review screen.
type Queue struct {
	Stats    *model.EmailImportStats
	Selected map[int]bool
	Notes    map[int]string
	Types    map[int]model.InvoiceType
	// Pending holds imports with a review or delete request in flight.
	Pending map[int]bool
	Status  string
	Err     string
	Imports []model.EmailImport
	Filter  model.EmailImportFilter
	// Count is the total reported by the backend for the current filter.
	Count int
	// Gen is the generation of the list shown; older responses are dropped. A review or
	// delete raises it to the generation it completed at.
	Gen      uint64
	StatsGen uint64
	Cursor   int
	// deleted holds every id removed by a bulk delete; lists never show them again.
	deleted map[int]bool
}

// NewQueue returns an empty queue showing imports that await review.
func NewQueue() Queue {
	return Queue{
		Filter:   model.EmailImportFilter{Status: model.EmailAwaitingReview},
		Selected: make(map[int]bool),
		Notes:    make(map[int]string),
		Types:    make(map[int]model.InvoiceType),
		Pending:  make(map[int]bool),
		deleted:  make(map[int]bool),
	}
}

func (q Queue) clone() Queue {
	q.Selected = cloneMap(q.Selected)
	q.Notes = cloneMap(q.Notes)
	q.Types = cloneMap(q.Types)
	q.Pending = cloneMap(q.Pending)
	q.deleted = cloneMap(q.deleted)
	q.Imports = slices.Clone(q.Imports)
	return q
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return make(map[K]V)
	}
	return maps.Clone(m)
}

// Command is an input to the queue.
type Command interface {
	apply(q Queue) (Queue, Effect)
}

// Effect is backend work the host runs, answering with a command.
type Effect interface {
	effect()
}

// ReviewImport asks the host to POST a review.
type ReviewImport struct {
	Request model.ReviewRequest
	ID      int
}

// DeleteImports asks the host to bulk delete imports.
type DeleteImports struct {
	IDs []int
}

func (ReviewImport) effect()  {}
func (DeleteImports) effect() {}

// Apply returns the queue after cmd and the effect to run. The receiver is untouched.
func (q Queue) Apply(cmd Command) (Queue, Effect) {
	return cmd.apply(q.clone())
}

// Find returns the import with id.
func (q Queue) Find(id int) (model.EmailImport, bool) {
	for _, imp := range q.Imports {
		if imp.ID == id {
			return imp, true
		}
	}
	return model.EmailImport{}, false
}

// SelectedIDs returns the selected ids in ascending order.
func (q Queue) SelectedIDs() []int {
	ids := make([]int, 0, len(q.Selected))
	for id, on := range q.Selected {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// Current returns the import under the cursor.
func (q Queue) Current() (model.EmailImport, bool) {
	if q.Cursor < 0 || q.Cursor >= len(q.Imports) {
		return model.EmailImport{}, false
	}
	return q.Imports[q.Cursor], true
}

// Loaded delivers a list response fetched for Filter at generation Gen.
type Loaded struct {
	Page   model.Page[model.EmailImport]
	Filter model.EmailImportFilter
	Gen    uint64
}

func (c Loaded) apply(q Queue) (Queue, Effect) {
	if c.Gen <= q.Gen || c.Filter != q.Filter {
		return q, nil
	}
	q.Gen = c.Gen
	q.Imports = slices.DeleteFunc(slices.Clone(c.Page.Results), func(imp model.EmailImport) bool {
		return q.deleted[imp.ID]
	})
	q.Count = max(0, c.Page.Count-(len(c.Page.Results)-len(q.Imports)))
	q.Err = ""

	present := make(map[int]bool, len(q.Imports))
	for _, imp := range q.Imports {
		present[imp.ID] = true
	}
	for id := range q.Selected {
		if !present[id] {
			delete(q.Selected, id)
		}
	}
	q.Cursor = max(0, min(q.Cursor, len(q.Imports)-1))
	return q, nil
}

// LoadFailed reports a failed list refresh. The list shown is kept.
type LoadFailed struct {
	Err error
	Gen uint64
}

func (c LoadFailed) apply(q Queue) (Queue, Effect) {
	if c.Gen <= q.Gen {
		return q, nil
	}
	q.Err = "Vernieuwen mislukt: " + errorText(c.Err)
	return q, nil
}

// StatsLoaded delivers pipeline statistics fetched at generation Gen.
type StatsLoaded struct {
	Stats model.EmailImportStats
	Gen   uint64
}

func (c StatsLoaded) apply(q Queue) (Queue, Effect) {
	if c.Gen <= q.StatsGen {
		return q, nil
	}
	stats := c.Stats
	q.Stats = &stats
	q.StatsGen = c.Gen
	return q, nil
}

// SetFilter switches the list filter. Results fetched for the old filter are dropped.
type SetFilter struct {
	Filter model.EmailImportFilter
}

func (c SetFilter) apply(q Queue) (Queue, Effect) {
	if c.Filter == q.Filter {
		return q, nil
	}
	q.Filter = c.Filter
	q.Imports = nil
	q.Count = 0
	q.Cursor = 0
	q.Selected = make(map[int]bool)
	return q, nil
}

// Toggle flips the selection of one import.
type Toggle struct{ ID int }

func (c Toggle) apply(q Queue) (Queue, Effect) {
	if _, ok := q.Find(c.ID); !ok {
		return q, nil
	}
	if q.Selected[c.ID] {
		delete(q.Selected, c.ID)
	} else {
		q.Selected[c.ID] = true
	}
	return q, nil
}

// SelectAll selects every listed import, or clears the selection when all are selected.
type SelectAll struct{}

func (SelectAll) apply(q Queue) (Queue, Effect) {
	if len(q.Imports) > 0 && len(q.SelectedIDs()) == len(q.Imports) {
		q.Selected = make(map[int]bool)
		return q, nil
	}
	for _, imp := range q.Imports {
		q.Selected[imp.ID] = true
	}
	return q, nil
}

// MoveCursor moves the cursor by Delta rows.
type MoveCursor struct{ Delta int }

func (c MoveCursor) apply(q Queue) (Queue, Effect) {
	if len(q.Imports) == 0 {
		q.Cursor = 0
		return q, nil
	}
	q.Cursor = max(0, min(q.Cursor+c.Delta, len(q.Imports)-1))
	return q, nil
}

// SetNotes records review notes for an import.
type SetNotes struct {
	Notes string
	ID    int
}

func (c SetNotes) apply(q Queue) (Queue, Effect) {
	if c.Notes == "" {
		delete(q.Notes, c.ID)
	} else {
		q.Notes[c.ID] = c.Notes
	}
	return q, nil
}

// SetType chooses the invoice type an approval seeds.
type SetType struct {
	Type model.InvoiceType
	ID   int
}

func (c SetType) apply(q Queue) (Queue, Effect) {
	if !c.Type.Valid() {
		q.Err = fmt.Sprintf("Onbekend factuurtype %q", c.Type)
		return q, nil
	}
	q.Types[c.ID] = c.Type
	q.Err = ""
	return q, nil
}

// Review approves or rejects one import with its notes and invoice type.
type Review struct {
	Action model.ReviewAction
	ID     int
}

func (c Review) apply(q Queue) (Queue, Effect) {
	imp, ok := q.Find(c.ID)
	if !ok {
		return q, nil
	}
	if !imp.Status.Reviewable() {
		q.Err = fmt.Sprintf("%s wacht niet op beoordeling", imp.AttachmentName)
		return q, nil
	}
	if q.Pending[c.ID] {
		return q, nil
	}

	req := model.ReviewRequest{Action: c.Action, Notes: q.Notes[c.ID]}
	switch c.Action {
	case model.ActionApprove:
		req.InvoiceType = q.Types[c.ID]
		if req.InvoiceType == "" {
			req.InvoiceType = model.InvoicePurchase
		}
	case model.ActionReject:
	default:
		q.Err = fmt.Sprintf("Onbekende actie %q", c.Action)
		return q, nil
	}

	q.Pending[c.ID] = true
	q.Err = ""
	return q, ReviewImport{ID: c.ID, Request: req}
}

// Reviewed delivers the import as stored after a review, answered at generation Gen.
// Lists fetched before Gen are dropped.
type Reviewed struct {
	Import model.EmailImport
	Gen    uint64
}

func (c Reviewed) apply(q Queue) (Queue, Effect) {
	q = q.settle(c.Gen)
	id := c.Import.ID
	delete(q.Pending, id)
	delete(q.Notes, id)
	delete(q.Types, id)

	idx := slices.IndexFunc(q.Imports, func(imp model.EmailImport) bool { return imp.ID == id })
	if idx >= 0 {
		if q.Filter.Status != "" && c.Import.Status != q.Filter.Status {
			q.Imports = slices.Delete(q.Imports, idx, idx+1)
			delete(q.Selected, id)
			q.Count = max(0, q.Count-1)
		} else {
			q.Imports[idx] = c.Import
		}
	}
	q.Cursor = max(0, min(q.Cursor, len(q.Imports)-1))

	verb := "goedgekeurd"
	if c.Import.Status == model.EmailRejected {
		verb = "afgewezen"
	}
	q.Status = fmt.Sprintf("%s %s", c.Import.AttachmentName, verb)
	return q, nil
}

// ReviewFailed reports a failed review; the import stays as it was.
type ReviewFailed struct {
	Err error
	ID  int
}

func (c ReviewFailed) apply(q Queue) (Queue, Effect) {
	delete(q.Pending, c.ID)
	q.Err = "Beoordelen mislukt: " + errorText(c.Err)
	return q, nil
}

// BulkDelete requests deletion of every selected import.
type BulkDelete struct{}

func (BulkDelete) apply(q Queue) (Queue, Effect) {
	ids := q.SelectedIDs()
	if len(ids) == 0 {
		q.Err = "Geen imports geselecteerd"
		return q, nil
	}
	for _, id := range ids {
		q.Pending[id] = true
	}
	q.Err = ""
	return q, DeleteImports{IDs: ids}
}

// Deleted reports a successful bulk delete of IDs, answered at generation Gen.
type Deleted struct {
	IDs   []int
	Count int
	Gen   uint64
}

func (c Deleted) apply(q Queue) (Queue, Effect) {
	q = q.settle(c.Gen)
	gone := make(map[int]bool, len(c.IDs))
	for _, id := range c.IDs {
		gone[id] = true
		q.deleted[id] = true
		delete(q.Pending, id)
		delete(q.Notes, id)
		delete(q.Types, id)
	}
	before := len(q.Imports)
	q.Imports = slices.DeleteFunc(q.Imports, func(imp model.EmailImport) bool { return gone[imp.ID] })
	q.Count = max(0, q.Count-(before-len(q.Imports)))
	q.Selected = make(map[int]bool)
	q.Cursor = max(0, min(q.Cursor, len(q.Imports)-1))
	q.Status = fmt.Sprintf("%d imports verwijderd", c.Count)
	return q, nil
}

// DeleteFailed reports a failed bulk delete. The list and selection are kept.
type DeleteFailed struct {
	Err error
	IDs []int
}

func (c DeleteFailed) apply(q Queue) (Queue, Effect) {
	for _, id := range c.IDs {
		delete(q.Pending, id)
	}
	q.Err = "Verwijderen mislukt: " + errorText(c.Err)
	return q, nil
}

// settle raises the list and statistics generations to gen, so responses fetched
// before a mutation landed cannot undo it.
func (q Queue) settle(gen uint64) Queue {
	q.Gen = max(q.Gen, gen)
	q.StatsGen = max(q.StatsGen, gen)
	return q
}

func errorText(err error) string {
	if err == nil {
		return api.GenericMessage
	}
	return api.Message(err)
}
