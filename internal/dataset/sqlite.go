package dataset

import (
	"context"
	"database/sql"
	"math"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/ops-dashboard/internal/model"
)

// SQLiteSource reads the input tables from a SQLite database file. The
// database is opened read-only; table and column names match the CSV schema.
type SQLiteSource struct {
	path string
	db   *sql.DB
}

// NewSQLite opens a read-only Source over a SQLite database at the given path.
func NewSQLite(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		// Missing database file surfaces here, not at Open.
		db.Close()
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return nil, eris.Wrapf(ErrNotFound, "sqlite: %s", path)
		}
		return nil, eris.Wrapf(err, "sqlite: open %s", path)
	}
	return &SQLiteSource{path: path, db: db}, nil
}

func (s *SQLiteSource) Orders(ctx context.Context) ([]model.Order, error) {
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
			o                              model.Order
			purchased, delivered, estimated sql.NullString
			onTime                         sql.NullInt64
			days, review                   sql.NullFloat64
		)
		if err := rows.Scan(&o.ID, &purchased, &delivered, &estimated,
			&onTime, &days, &review, &o.GrossRevenue); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan orders")
		}
		o.PurchasedAt = parseTime(purchased.String)
		o.DeliveredAt = parseTimePtr(delivered.String)
		o.EstimatedDeliveryAt = parseTimePtr(estimated.String)
		o.OnTime = onTime.Valid && onTime.Int64 == 1
		o.DeliveryDays = nullFloat(days)
		o.ReviewScore = nullFloat(review)
		if o.ID == "" || o.PurchasedAt.IsZero() {
			continue
		}
		orders = append(orders, o)
	}
	return orders, eris.Wrap(rows.Err(), "sqlite: orders")
}

func (s *SQLiteSource) Segments(ctx context.Context) ([]model.Segment, error) {
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
			return nil, eris.Wrap(err, "sqlite: scan segments")
		}
		segments = append(segments, seg)
	}
	return segments, eris.Wrap(rows.Err(), "sqlite: segments")
}

func (s *SQLiteSource) Impact(ctx context.Context) ([]model.ImpactRow, error) {
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
			return nil, eris.Wrap(err, "sqlite: scan impact")
		}
		r.Scenario = model.Scenario(scenario)
		impact = append(impact, r)
	}
	return impact, eris.Wrap(rows.Err(), "sqlite: impact")
}

func (s *SQLiteSource) PolicyLog(ctx context.Context) ([]model.PolicyFiring, error) {
	rows, err := s.query(ctx, `SELECT timestamp, node, guardrail_fired FROM policy_log`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var log []model.PolicyFiring
	for rows.Next() {
		var (
			ts    string
			f     model.PolicyFiring
			fired int
		)
		if err := rows.Scan(&ts, &f.Node, &fired); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan policy_log")
		}
		f.Timestamp = parseTime(ts)
		f.GuardrailFired = fired == 1
		if f.Timestamp.IsZero() {
			continue
		}
		log = append(log, f)
	}
	return log, eris.Wrap(rows.Err(), "sqlite: policy_log")
}

func (s *SQLiteSource) Incidents(ctx context.Context) ([]model.Incident, error) {
	rows, err := s.query(ctx, `SELECT incident_id, opened_at, severity, title, status FROM incidents`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incidents []model.Incident
	for rows.Next() {
		var (
			inc    model.Incident
			opened string
		)
		if err := rows.Scan(&inc.ID, &opened, &inc.Severity, &inc.Title, &inc.Status); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan incidents")
		}
		inc.OpenedAt = parseTime(opened)
		incidents = append(incidents, inc)
	}
	return incidents, eris.Wrap(rows.Err(), "sqlite: incidents")
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func (s *SQLiteSource) query(ctx context.Context, q string) (*sql.Rows, error) {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return nil, eris.Wrapf(ErrNotFound, "sqlite: %s", err.Error())
		}
		return nil, eris.Wrap(err, "sqlite: query")
	}
	return rows, nil
}

func nullFloat(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
