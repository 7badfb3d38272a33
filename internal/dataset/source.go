// Package dataset loads the five dashboard input tables from CSV files,
// SQLite, or Postgres. Sources are read-only; a missing input is reported
// as ErrNotFound so callers can substitute demo data instead of failing.
package dataset

import (
	"context"
	"errors"

	"github.com/sells-group/ops-dashboard/internal/model"
)

// ErrNotFound reports that an expected input table is absent. It is the
// only error class a caller is expected to recover from.
var ErrNotFound = errors.New("dataset: input not available")

// Source provides the five input tables.
type Source interface {
	Orders(ctx context.Context) ([]model.Order, error)
	Segments(ctx context.Context) ([]model.Segment, error)
	Impact(ctx context.Context) ([]model.ImpactRow, error)
	PolicyLog(ctx context.Context) ([]model.PolicyFiring, error)
	Incidents(ctx context.Context) ([]model.Incident, error)
	Close() error
}
