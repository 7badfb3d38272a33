package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ops-dashboard/internal/model"
)

// CSVPaths names the file behind each input table.
type CSVPaths struct {
	Orders    string
	Segments  string
	Impact    string
	PolicyLog string
	Incidents string
}

// CSVSource reads the input tables from local CSV files. Each file has a
// header row; unknown columns are ignored and malformed rows are skipped.
type CSVSource struct {
	paths CSVPaths
}

// NewCSV creates a Source over local CSV files.
func NewCSV(paths CSVPaths) *CSVSource {
	return &CSVSource{paths: paths}
}

func (s *CSVSource) Orders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := s.readRows(ctx, s.paths.Orders, func(rec []string, col map[string]int) {
		id := trimQuotes(getCol(rec, col, "order_id"))
		purchased := parseTime(getCol(rec, col, "order_purchase_timestamp"))
		if id == "" || purchased.IsZero() {
			return // unusable without identity and purchase time
		}
		orders = append(orders, model.Order{
			ID:                  id,
			PurchasedAt:         purchased,
			DeliveredAt:         parseTimePtr(getCol(rec, col, "order_delivered_customer_date")),
			EstimatedDeliveryAt: parseTimePtr(getCol(rec, col, "order_estimated_delivery_date")),
			OnTime:              parseBool01(getCol(rec, col, "on_time")),
			DeliveryDays:        parseFloat64OrNaN(getCol(rec, col, "delivery_time_days")),
			ReviewScore:         parseFloat64OrNaN(getCol(rec, col, "review_score_mean")),
			GrossRevenue:        parseFloat64Or(getCol(rec, col, "gross_revenue"), 0),
		})
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *CSVSource) Segments(ctx context.Context) ([]model.Segment, error) {
	var segments []model.Segment
	err := s.readRows(ctx, s.paths.Segments, func(rec []string, col map[string]int) {
		name := trimQuotes(getCol(rec, col, "segment"))
		if name == "" {
			return
		}
		segments = append(segments, model.Segment{
			Name:            name,
			Rule:            trimQuotes(getCol(rec, col, "rule")),
			Orders:          parseIntOr(getCol(rec, col, "size"), 0),
			OTDPct:          parseFloat64Or(getCol(rec, col, "otd_pct"), 0),
			P90DeliveryDays: parseFloat64Or(getCol(rec, col, "p90_delivery_days"), 0),
			RepeatPct:       parseFloat64Or(getCol(rec, col, "repeat_90d_pct"), 0),
			GMV90d:          parseFloat64Or(getCol(rec, col, "gmv_90d"), 0),
			Play:            trimQuotes(getCol(rec, col, "play")),
		})
	})
	if err != nil {
		return nil, err
	}
	return segments, nil
}

func (s *CSVSource) Impact(ctx context.Context) ([]model.ImpactRow, error) {
	var rows []model.ImpactRow
	err := s.readRows(ctx, s.paths.Impact, func(rec []string, col map[string]int) {
		segment := trimQuotes(getCol(rec, col, "segment"))
		if segment == "" {
			return
		}
		rows = append(rows, model.ImpactRow{
			Segment:        segment,
			Scenario:       model.Scenario(trimQuotes(getCol(rec, col, "scenario"))),
			BaseGMV:        parseFloat64Or(getCol(rec, col, "base_gmv_90d"), 0),
			Orders:         parseIntOr(getCol(rec, col, "orders_90d"), 0),
			AOV:            parseFloat64Or(getCol(rec, col, "aov"), 0),
			UpliftPct:      parseFloat64Or(getCol(rec, col, "uplift_gmv_pct"), 0),
			CostPerOrder:   parseFloat64Or(getCol(rec, col, "cost_per_order"), 0),
			TakeRate:       parseFloat64Or(getCol(rec, col, "take_rate"), 0),
			IncrementalGMV: parseFloat64Or(getCol(rec, col, "incr_gmv_90d"), 0),
			PlatformShare:  parseFloat64Or(getCol(rec, col, "platform_share"), 0),
			TotalCost:      parseFloat64Or(getCol(rec, col, "total_cost"), 0),
			NetEffect:      parseFloat64Or(getCol(rec, col, "net_effect"), 0),
		})
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CSVSource) PolicyLog(ctx context.Context) ([]model.PolicyFiring, error) {
	var log []model.PolicyFiring
	err := s.readRows(ctx, s.paths.PolicyLog, func(rec []string, col map[string]int) {
		ts := parseTime(getCol(rec, col, "timestamp"))
		node := trimQuotes(getCol(rec, col, "node"))
		if ts.IsZero() || node == "" {
			return
		}
		log = append(log, model.PolicyFiring{
			Timestamp:      ts,
			Node:           node,
			GuardrailFired: parseBool01(getCol(rec, col, "guardrail_fired")),
		})
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

func (s *CSVSource) Incidents(ctx context.Context) ([]model.Incident, error) {
	var incidents []model.Incident
	err := s.readRows(ctx, s.paths.Incidents, func(rec []string, col map[string]int) {
		id := trimQuotes(getCol(rec, col, "incident_id"))
		if id == "" {
			return
		}
		incidents = append(incidents, model.Incident{
			ID:       id,
			OpenedAt: parseTime(getCol(rec, col, "opened_at")),
			Severity: trimQuotes(getCol(rec, col, "severity")),
			Title:    trimQuotes(getCol(rec, col, "title")),
			Status:   trimQuotes(getCol(rec, col, "status")),
		})
	})
	if err != nil {
		return nil, err
	}
	return incidents, nil
}

func (s *CSVSource) Close() error { return nil }

// readRows streams a CSV file through fn, one data row at a time.
// A missing file surfaces as ErrNotFound; malformed rows are skipped.
func (s *CSVSource) readRows(ctx context.Context, path string, fn func(rec []string, col map[string]int)) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return eris.Wrapf(ErrNotFound, "csv: %s", path)
		}
		return eris.Wrapf(err, "csv: open %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // allow variable fields

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil // empty file is an empty table, not an error
		}
		return eris.Wrapf(err, "csv: read header %s", path)
	}
	colIdx := mapColumns(header)

	for {
		if ctx.Err() != nil {
			return eris.Wrap(ctx.Err(), "csv: context cancelled")
		}
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			continue // skip malformed rows
		}
		fn(record, colIdx)
	}
}
