package main

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ops-dashboard/internal/demo"
	"github.com/sells-group/ops-dashboard/internal/model"
)

const seedTimeLayout = "2006-01-02 15:04:05"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write demo CSVs into the data directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		gen := demo.New(cfg.Data.DemoSeed)
		paths := csvPaths(cfg.Data)

		if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
			return eris.Wrapf(err, "create %s", cfg.Data.Dir)
		}

		orders := gen.Orders(time.Now().UTC())
		segments := gen.Segments()
		impact := gen.Impact(segments)
		ref := maxPurchase(orders)
		policyLog := gen.PolicyLog(ref)
		incidents := gen.Incidents(ref)

		if err := writeCSV(paths.Orders, orderHeader, len(orders), func(i int) []string {
			return orderRecord(orders[i])
		}); err != nil {
			return err
		}
		if err := writeCSV(paths.Segments, segmentHeader, len(segments), func(i int) []string {
			return segmentRecord(segments[i])
		}); err != nil {
			return err
		}
		if err := writeCSV(paths.Impact, impactHeader, len(impact), func(i int) []string {
			return impactRecord(impact[i])
		}); err != nil {
			return err
		}
		if err := writeCSV(paths.PolicyLog, policyHeader, len(policyLog), func(i int) []string {
			return policyRecord(policyLog[i])
		}); err != nil {
			return err
		}
		if err := writeCSV(paths.Incidents, incidentHeader, len(incidents), func(i int) []string {
			return incidentRecord(incidents[i])
		}); err != nil {
			return err
		}

		zap.L().Info("demo data written",
			zap.String("dir", cfg.Data.Dir),
			zap.Int("orders", len(orders)),
		)
		return nil
	},
}

var (
	orderHeader = []string{"order_id", "order_purchase_timestamp", "order_delivered_customer_date",
		"order_estimated_delivery_date", "on_time", "delivery_time_days", "review_score_mean", "gross_revenue"}
	segmentHeader = []string{"segment", "rule", "size", "otd_pct", "p90_delivery_days",
		"repeat_90d_pct", "gmv_90d", "play"}
	impactHeader = []string{"segment", "scenario", "base_gmv_90d", "orders_90d", "aov", "uplift_gmv_pct",
		"cost_per_order", "take_rate", "incr_gmv_90d", "platform_share", "total_cost", "net_effect"}
	policyHeader   = []string{"timestamp", "node", "guardrail_fired"}
	incidentHeader = []string{"incident_id", "opened_at", "severity", "title", "status"}
)

func orderRecord(o model.Order) []string {
	delivered := ""
	if o.DeliveredAt != nil {
		delivered = o.DeliveredAt.Format(seedTimeLayout)
	}
	estimated := ""
	if o.EstimatedDeliveryAt != nil {
		estimated = o.EstimatedDeliveryAt.Format(seedTimeLayout)
	}
	days, review := "", ""
	if o.HasDeliveryDays() {
		days = strconv.FormatFloat(o.DeliveryDays, 'f', 2, 64)
	}
	if o.HasReviewScore() {
		review = strconv.FormatFloat(o.ReviewScore, 'f', 1, 64)
	}
	return []string{
		o.ID, o.PurchasedAt.Format(seedTimeLayout), delivered, estimated,
		bool01(o.OnTime), days, review, strconv.FormatFloat(o.GrossRevenue, 'f', 2, 64),
	}
}

func segmentRecord(s model.Segment) []string {
	return []string{
		s.Name, s.Rule, strconv.Itoa(s.Orders),
		strconv.FormatFloat(s.OTDPct, 'f', 1, 64),
		strconv.FormatFloat(s.P90DeliveryDays, 'f', 1, 64),
		strconv.FormatFloat(s.RepeatPct, 'f', 1, 64),
		strconv.FormatFloat(s.GMV90d, 'f', 0, 64),
		s.Play,
	}
}

func impactRecord(r model.ImpactRow) []string {
	return []string{
		r.Segment, string(r.Scenario),
		strconv.FormatFloat(r.BaseGMV, 'f', 2, 64),
		strconv.Itoa(r.Orders),
		strconv.FormatFloat(r.AOV, 'f', 2, 64),
		strconv.FormatFloat(r.UpliftPct, 'f', 2, 64),
		strconv.FormatFloat(r.CostPerOrder, 'f', 2, 64),
		strconv.FormatFloat(r.TakeRate, 'f', 2, 64),
		strconv.FormatFloat(r.IncrementalGMV, 'f', 2, 64),
		strconv.FormatFloat(r.PlatformShare, 'f', 2, 64),
		strconv.FormatFloat(r.TotalCost, 'f', 2, 64),
		strconv.FormatFloat(r.NetEffect, 'f', 2, 64),
	}
}

func policyRecord(p model.PolicyFiring) []string {
	return []string{p.Timestamp.Format(seedTimeLayout), p.Node, bool01(p.GuardrailFired)}
}

func incidentRecord(i model.Incident) []string {
	return []string{i.ID, i.OpenedAt.Format(seedTimeLayout), i.Severity, i.Title, i.Status}
}

func bool01(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func maxPurchase(orders []model.Order) time.Time {
	var max time.Time
	for _, o := range orders {
		if o.PurchasedAt.After(max) {
			max = o.PurchasedAt
		}
	}
	return max
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// writeCSV writes header plus n records produced by record.
func writeCSV(path string, header []string, n int, record func(i int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return eris.Wrapf(err, "write header %s", path)
	}
	for i := 0; i < n; i++ {
		if err := w.Write(record(i)); err != nil {
			return eris.Wrapf(err, "write row %s", path)
		}
	}
	w.Flush()
	return eris.Wrapf(w.Error(), "flush %s", path)
}
