package dataset

import (
	"context"
	"errors"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/ops-dashboard/internal/model"
)

// Pool is the subset of pgxpool.Pool the source needs. pgxmock satisfies it
// in tests.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresSource reads the input tables from Postgres. Table and column
// names match the CSV schema.
type PostgresSource struct {
	pool Pool
}

// NewPostgres connects a Source to Postgres using a pgx pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresSource, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresSource{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests.
func NewPostgresFromPool(pool Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

func (s *PostgresSource) Orders(ctx context.Context) ([]model.Order, error) {
	rows, err := s.query(ctx, `SELECT order_id, order_purchase_timestamp,
		order_delivered_customer_date, order_estimated_delivery_date,
		on_time, delivery_time_days, review_score_mean, gross_revenue
		FROM orders`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var (
			o            model.Order
			onTime       int
			days, review *float64
		)
		if err := rows.Scan(&o.ID, &o.PurchasedAt, &o.DeliveredAt,
			&o.EstimatedDeliveryAt, &onTime, &days, &review, &o.GrossRevenue); err != nil {
			return nil, eris.Wrap(err, "postgres: scan orders")
		}
		o.OnTime = onTime == 1
		o.DeliveryDays = deref(days)
		o.ReviewScore = deref(review)
		orders = append(orders, o)
	}
	return orders, eris.Wrap(rows.Err(), "postgres: orders")
}

func (s *PostgresSource) Segments(ctx context.Context) ([]model.Segment, error) {
	rows, err := s.query(ctx, `SELECT segment, rule, size, otd_pct,
		p90_delivery_days, repeat_90d_pct, gmv_90d, play FROM segments`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []model.Segment
	for rows.Next() {
		var seg model.Segment
		if err := rows.Scan(&seg.Name, &seg.Rule, &seg.Orders, &seg.OTDPct,
			&seg.P90DeliveryDays, &seg.RepeatPct, &seg.GMV90d, &seg.Play); err != nil {
			return nil, eris.Wrap(err, "postgres: scan segments")
		}
		segments = append(segments, seg)
	}
	return segments, eris.Wrap(rows.Err(), "postgres: segments")
}

func (s *PostgresSource) Impact(ctx context.Context) ([]model.ImpactRow, error) {
	rows, err := s.query(ctx, `SELECT segment, scenario, base_gmv_90d,
		orders_90d, aov, uplift_gmv_pct, cost_per_order, take_rate,
		incr_gmv_90d, platform_share, total_cost, net_effect FROM impact`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var impact []model.ImpactRow
	for rows.Next() {
		var (
			r        model.ImpactRow
			scenario string
		)
		if err := rows.Scan(&r.Segment, &scenario, &r.BaseGMV, &r.Orders,
			&r.AOV, &r.UpliftPct, &r.CostPerOrder, &r.TakeRate,
			&r.IncrementalGMV, &r.PlatformShare, &r.TotalCost, &r.NetEffect); err != nil {
			return nil, eris.Wrap(err, "postgres: scan impact")
		}
		r.Scenario = model.Scenario(scenario)
		impact = append(impact, r)
	}
	return impact, eris.Wrap(rows.Err(), "postgres: impact")
}

func (s *PostgresSource) PolicyLog(ctx context.Context) ([]model.PolicyFiring, error) {
	rows, err := s.query(ctx, `SELECT timestamp, node, guardrail_fired FROM policy_log`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var log []model.PolicyFiring
	for rows.Next() {
		var (
			f     model.PolicyFiring
			fired int
		)
		if err := rows.Scan(&f.Timestamp, &f.Node, &fired); err != nil {
			return nil, eris.Wrap(err, "postgres: scan policy_log")
		}
		f.GuardrailFired = fired == 1
		log = append(log, f)
	}
	return log, eris.Wrap(rows.Err(), "postgres: policy_log")
}

func (s *PostgresSource) Incidents(ctx context.Context) ([]model.Incident, error) {
	rows, err := s.query(ctx, `SELECT incident_id, opened_at, severity, title, status FROM incidents`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incidents []model.Incident
	for rows.Next() {
		var inc model.Incident
		if err := rows.Scan(&inc.ID, &inc.OpenedAt, &inc.Severity, &inc.Title, &inc.Status); err != nil {
			return nil, eris.Wrap(err, "postgres: scan incidents")
		}
		incidents = append(incidents, inc)
	}
	return incidents, eris.Wrap(rows.Err(), "postgres: incidents")
}

func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresSource) query(ctx context.Context, q string) (pgx.Rows, error) {
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "42P01" { // undefined_table
			return nil, eris.Wrapf(ErrNotFound, "postgres: %s", pgErr.Message)
		}
		return nil, eris.Wrap(err, "postgres: query")
	}
	return rows, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
