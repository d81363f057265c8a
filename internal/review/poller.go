package review

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Veraticus/kantoor/internal/api"
	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/service"
)

// Default refresh intervals.
const (
	DefaultListInterval  = 10 * time.Second
	DefaultStatsInterval = 30 * time.Second
)

// Poller refreshes the review list and the pipeline statistics on fixed intervals.
// Every response is tagged with a generation number so a slow answer never replaces
// a newer one.
type Poller struct {
	api           service.ReviewAPI
	logger        *slog.Logger
	filter        model.EmailImportFilter
	ListInterval  time.Duration
	StatsInterval time.Duration
	gen           atomic.Uint64
	mu            sync.Mutex
}

// NewPoller creates a poller with the default intervals.
func NewPoller(reviewAPI service.ReviewAPI) *Poller {
	return &Poller{
		api:           reviewAPI,
		logger:        common.Component("review"),
		filter:        model.EmailImportFilter{Status: model.EmailAwaitingReview},
		ListInterval:  DefaultListInterval,
		StatsInterval: DefaultStatsInterval,
	}
}

// SetFilter changes the filter used by later list fetches.
func (p *Poller) SetFilter(filter model.EmailImportFilter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter = filter
}

func (p *Poller) currentFilter() model.EmailImportFilter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter
}

// FetchList loads the list once and returns the command that delivers it.
func (p *Poller) FetchList(ctx context.Context) Command {
	gen := p.gen.Add(1)
	filter := p.currentFilter()
	page, err := p.api.ListEmailImports(api.Fresh(ctx), filter)
	if err != nil {
		p.logger.Warn("Refreshing review list failed", "error", err)
		return LoadFailed{Gen: gen, Err: err}
	}
	return Loaded{Gen: gen, Filter: filter, Page: *page}
}

// FetchStats loads the statistics once. Failures return nil; the old figures stay.
func (p *Poller) FetchStats(ctx context.Context) Command {
	gen := p.gen.Add(1)
	stats, err := p.api.EmailImportStats(api.Fresh(ctx))
	if err != nil {
		p.logger.Warn("Refreshing review statistics failed", "error", err)
		return nil
	}
	return StatsLoaded{Gen: gen, Stats: *stats}
}

// Run fetches both immediately and then on their intervals, handing every result to
// deliver, until ctx is done.
func (p *Poller) Run(ctx context.Context, deliver func(Command)) error {
	listInterval := p.ListInterval
	if listInterval <= 0 {
		listInterval = DefaultListInterval
	}
	statsInterval := p.StatsInterval
	if statsInterval <= 0 {
		statsInterval = DefaultStatsInterval
	}

	send := func(cmd Command) {
		if cmd != nil && ctx.Err() == nil {
			deliver(cmd)
		}
	}

	send(p.FetchList(ctx))
	send(p.FetchStats(ctx))

	listTicker := time.NewTicker(listInterval)
	defer listTicker.Stop()
	statsTicker := time.NewTicker(statsInterval)
	defer statsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-listTicker.C:
			send(p.FetchList(ctx))
		case <-statsTicker.C:
			send(p.FetchStats(ctx))
		}
	}
}

// Exec runs an effect against the backend and returns the command reporting the outcome.
func (p *Poller) Exec(ctx context.Context, eff Effect) Command {
	switch eff := eff.(type) {
	case ReviewImport:
		imp, err := p.api.ReviewEmailImport(ctx, eff.ID, eff.Request)
		if err != nil {
			p.logger.Error("Review failed", "import", eff.ID, "action", eff.Request.Action, "error", err)
			return ReviewFailed{ID: eff.ID, Err: err}
		}
		p.logger.Info("Reviewed import", "import", eff.ID, "action", eff.Request.Action)
		return Reviewed{Import: *imp, Gen: p.gen.Add(1)}
	case DeleteImports:
		count, err := p.api.BulkDeleteEmailImports(ctx, eff.IDs)
		if err != nil {
			p.logger.Error("Bulk delete failed", "ids", eff.IDs, "error", err)
			return DeleteFailed{IDs: eff.IDs, Err: err}
		}
		return Deleted{IDs: eff.IDs, Count: count, Gen: p.gen.Add(1)}
	default:
		return nil
	}
}
