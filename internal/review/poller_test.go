package review

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kantoor/internal/api/apitest"
	"github.com/Veraticus/kantoor/internal/model"
)

func seed(srv *apitest.Server, n int) {
	for i := range n {
		srv.AddEmailImport(model.EmailImport{
			Subject:        "Factuur",
			AttachmentName: "factuur.pdf",
			Mailbox:        1,
			Status:         model.EmailAwaitingReview,
			ReceivedAt:     time.Date(2025, 8, 20+i, 9, 0, 0, 0, time.UTC),
		})
	}
}

func TestPoller_BulkReviewScenario(t *testing.T) {
	srv := apitest.NewServer(t)
	seed(srv, 5)
	p := NewPoller(srv.Client(t))
	ctx := context.Background()

	q, _ := NewQueue().Apply(p.FetchList(ctx))
	require.Len(t, q.Imports, 5)

	for _, id := range []int{1, 3, 5} {
		q, _ = q.Apply(Toggle{ID: id})
	}
	q, eff := q.Apply(BulkDelete{})
	q, _ = q.Apply(p.Exec(ctx, eff))

	assert.Equal(t, []int{2, 4}, ids(q))
	assert.Empty(t, q.Selected)
	assert.Len(t, srv.EmailImports, 2)

	q, _ = q.Apply(p.FetchList(ctx))
	assert.Equal(t, []int{2, 4}, ids(q))
}

func TestPoller_ListInFlightDuringDelete(t *testing.T) {
	srv := apitest.NewServer(t)
	seed(srv, 3)
	p := NewPoller(srv.Client(t))
	ctx := context.Background()

	q, _ := NewQueue().Apply(p.FetchList(ctx))
	stale := p.FetchList(ctx)

	q, _ = q.Apply(Toggle{ID: 2})
	q, eff := q.Apply(BulkDelete{})
	q, _ = q.Apply(p.Exec(ctx, eff))
	q, _ = q.Apply(stale)
	assert.Equal(t, []int{1, 3}, ids(q))

	q, _ = q.Apply(p.FetchList(ctx))
	assert.Equal(t, []int{1, 3}, ids(q))
}

func TestPoller_ExecReview(t *testing.T) {
	srv := apitest.NewServer(t)
	seed(srv, 2)
	p := NewPoller(srv.Client(t))
	ctx := context.Background()

	q, _ := NewQueue().Apply(p.FetchList(ctx))
	q, _ = q.Apply(SetType{ID: 2, Type: model.InvoiceSales})
	q, eff := q.Apply(Review{ID: 2, Action: model.ActionApprove})
	q, _ = q.Apply(p.Exec(ctx, eff))

	assert.Equal(t, []int{1}, ids(q))
	srv.Lock()
	assert.Equal(t, model.InvoiceSales, srv.EmailImports[2].InvoiceType)
	srv.Unlock()

	srv.Fail(http.MethodPost, "/api/email-import/imports/1/review/", http.StatusBadRequest, map[string]string{"detail": "Mailbox offline."})
	q, eff = q.Apply(Review{ID: 1, Action: model.ActionReject})
	q, _ = q.Apply(p.Exec(ctx, eff))
	assert.Equal(t, "Beoordelen mislukt: Mailbox offline.", q.Err)
	assert.Equal(t, []int{1}, ids(q))
	assert.Empty(t, q.Pending)
}

type collector struct {
	cmds []Command
	mu   sync.Mutex
}

func (c *collector) deliver(cmd Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cmds = append(c.cmds, cmd)
}

func (c *collector) counts() (lists, stats int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cmd := range c.cmds {
		switch cmd.(type) {
		case Loaded:
			lists++
		case StatsLoaded:
			stats++
		}
	}
	return lists, stats
}

func TestPoller_RunUntilCancelled(t *testing.T) {
	srv := apitest.NewServer(t)
	seed(srv, 1)
	p := NewPoller(srv.Client(t))
	p.ListInterval = 10 * time.Millisecond
	p.StatsInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	c := &collector{}
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, c.deliver) }()

	require.Eventually(t, func() bool {
		lists, _ := c.counts()
		return lists >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}

	_, stats := c.counts()
	assert.Equal(t, 1, stats, "stats are fetched once at start")

	var last uint64
	for _, cmd := range c.cmds {
		if l, ok := cmd.(Loaded); ok {
			assert.Greater(t, l.Gen, last)
			last = l.Gen
		}
	}
}

func TestPoller_FilterFollowsSetFilter(t *testing.T) {
	srv := apitest.NewServer(t)
	seed(srv, 2)
	srv.AddEmailImport(model.EmailImport{AttachmentName: "kapot.pdf", Status: model.EmailFailed})
	p := NewPoller(srv.Client(t))
	ctx := context.Background()

	filter := model.EmailImportFilter{Status: model.EmailFailed}
	p.SetFilter(filter)
	q, _ := NewQueue().Apply(SetFilter{Filter: filter})
	q, _ = q.Apply(p.FetchList(ctx))

	require.Len(t, q.Imports, 1)
	assert.Equal(t, "kapot.pdf", q.Imports[0].AttachmentName)
}
