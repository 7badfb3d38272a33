// Package loader assembles the dashboard's input bundle: it pulls the five
// tables from a dataset.Source, substitutes demo data for any table that is
// missing, and memoizes the result for the life of the process.
package loader

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/ops-dashboard/internal/dataset"
	"github.com/sells-group/ops-dashboard/internal/demo"
	"github.com/sells-group/ops-dashboard/internal/model"
)

// NoticeLevel grades a load notice for display.
type NoticeLevel string

const (
	NoticeWarning NoticeLevel = "warning"
	NoticeInfo    NoticeLevel = "info"
)

// Notice is a user-visible banner about a substituted input.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Bundle holds the five loaded tables plus any substitution notices.
// All fields are read-only after Load returns.
type Bundle struct {
	Orders    []model.Order
	Segments  []model.Segment
	Impact    []model.ImpactRow
	PolicyLog []model.PolicyFiring
	Incidents []model.Incident
	Notices   []Notice
	LoadedAt  time.Time
}

// Demo reports whether any table was substituted with generated data.
func (b *Bundle) Demo() bool {
	return len(b.Notices) > 0
}

// Loader memoizes a one-time load of the input bundle. Repeated Loads
// return the first result; restart is the only invalidation path.
type Loader struct {
	source dataset.Source
	gen    *demo.Generator
	now    func() time.Time

	group  singleflight.Group
	mu     sync.Mutex
	cached *Bundle
}

// New creates a Loader over a source, with gen supplying fallbacks.
func New(source dataset.Source, gen *demo.Generator) *Loader {
	return &Loader{source: source, gen: gen, now: time.Now}
}

// Load returns the memoized bundle, fetching and assembling it on first
// call. Only a missing input is recoverable; any other source error fails
// the load (and is not cached, so a later call can retry).
func (l *Loader) Load(ctx context.Context) (*Bundle, error) {
	l.mu.Lock()
	if l.cached != nil {
		b := l.cached
		l.mu.Unlock()
		return b, nil
	}
	l.mu.Unlock()

	v, err, _ := l.group.Do("bundle", func() (any, error) {
		b, err := l.assemble(ctx)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cached = b
		l.mu.Unlock()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Bundle), nil
}

func (l *Loader) assemble(ctx context.Context) (*Bundle, error) {
	var (
		orders    []model.Order
		segments  []model.Segment
		impact    []model.ImpactRow
		policyLog []model.PolicyFiring
		incidents []model.Incident

		ordersErr, segmentsErr, impactErr, policyErr, incidentsErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { orders, ordersErr = l.source.Orders(gctx); return fatal(ordersErr) })
	g.Go(func() error { segments, segmentsErr = l.source.Segments(gctx); return fatal(segmentsErr) })
	g.Go(func() error { impact, impactErr = l.source.Impact(gctx); return fatal(impactErr) })
	g.Go(func() error { policyLog, policyErr = l.source.PolicyLog(gctx); return fatal(policyErr) })
	g.Go(func() error { incidents, incidentsErr = l.source.Incidents(gctx); return fatal(incidentsErr) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := &Bundle{LoadedAt: l.now()}

	// Fallbacks run in a fixed order: demo orders anchor the reference
	// time the demo policy log and incidents hang off.
	b.Orders = orders
	if errors.Is(ordersErr, dataset.ErrNotFound) {
		b.Orders = l.gen.Orders(l.now())
		b.warn("order facts not found; using generated demo orders", ordersErr)
	}

	b.Segments = segments
	if errors.Is(segmentsErr, dataset.ErrNotFound) {
		b.Segments = l.gen.Segments()
		b.warn("segment summary not found; using generated demo segments", segmentsErr)
	}

	b.Impact = impact
	if errors.Is(impactErr, dataset.ErrNotFound) {
		b.Impact = l.gen.Impact(b.Segments)
		b.warn("impact model not found; using generated demo projections", impactErr)
	}

	ref := maxPurchase(b.Orders, l.now())

	b.PolicyLog = policyLog
	if errors.Is(policyErr, dataset.ErrNotFound) {
		b.PolicyLog = l.gen.PolicyLog(ref)
		b.info("policy log not found; generating demo firings", policyErr)
	}

	b.Incidents = incidents
	if errors.Is(incidentsErr, dataset.ErrNotFound) {
		b.Incidents = l.gen.Incidents(ref)
		b.info("incident log not found; generating demo incidents", incidentsErr)
	}

	zap.L().Info("input bundle loaded",
		zap.Int("orders", len(b.Orders)),
		zap.Int("segments", len(b.Segments)),
		zap.Int("impact_rows", len(b.Impact)),
		zap.Int("policy_firings", len(b.PolicyLog)),
		zap.Int("incidents", len(b.Incidents)),
		zap.Int("notices", len(b.Notices)),
	)
	return b, nil
}

func (b *Bundle) warn(msg string, err error) {
	b.Notices = append(b.Notices, Notice{Level: NoticeWarning, Message: msg})
	zap.L().Warn(msg, zap.Error(err))
}

func (b *Bundle) info(msg string, err error) {
	b.Notices = append(b.Notices, Notice{Level: NoticeInfo, Message: msg})
	zap.L().Info(msg, zap.Error(err))
}

// fatal passes through every error except the recoverable missing-input one.
func fatal(err error) error {
	if err == nil || errors.Is(err, dataset.ErrNotFound) {
		return nil
	}
	return err
}

// maxPurchase returns the latest purchase timestamp, or def when the order
// table is empty.
func maxPurchase(orders []model.Order, def time.Time) time.Time {
	var max time.Time
	for _, o := range orders {
		if o.PurchasedAt.After(max) {
			max = o.PurchasedAt
		}
	}
	if max.IsZero() {
		return def
	}
	return max
}
