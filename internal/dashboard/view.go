// Package dashboard turns the loaded bundle into the single-page view the
// frontend renders: metric cards, two weekly series, four tables, and the
// substitution banners. It decides presentation shape only; all numbers
// come from the metrics package.
package dashboard

import (
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/ops-dashboard/internal/config"
	"github.com/sells-group/ops-dashboard/internal/loader"
	"github.com/sells-group/ops-dashboard/internal/metrics"
	"github.com/sells-group/ops-dashboard/internal/model"
)

// Card is one headline metric, pre-formatted for display.
type Card struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Point is one weekly observation. Value is null when undefined so the
// chart can show a gap instead of a zero.
type Point struct {
	Week   time.Time `json:"week"`
	Value  *float64  `json:"value"`
	Orders int       `json:"orders,omitempty"`
}

// SegmentRow is one row of the segment summary table in display order.
type SegmentRow struct {
	Segment        string   `json:"segment"`
	Orders         int      `json:"orders"`
	OTDPct         float64  `json:"otd_pct"`
	RepeatPct      float64  `json:"repeat_pct"`
	Play           string   `json:"play"`
	ExpectedEffect *float64 `json:"expected_effect_90d"`
}

// Baselines are the window reference values, null when undefined.
type Baselines struct {
	MeanWeeklyOTDPct *float64 `json:"mean_weekly_otd_pct"`
	P90DeliveryDays  *float64 `json:"p90_delivery_days"`
}

// Snapshot is the full page payload.
type Snapshot struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Demo        bool                     `json:"demo"`
	Banners     []loader.Notice          `json:"banners"`
	Cards       []Card                   `json:"cards"`
	Baselines   Baselines                `json:"baselines"`
	WeeklyOTD   []Point                  `json:"weekly_otd"`
	ReviewTrend []Point                  `json:"review_trend"`
	Incidents   []model.Incident         `json:"incidents"`
	Segments    []SegmentRow             `json:"segments"`
	NodeFires   []metrics.NodeCount      `json:"node_fires"`
	Guardrails  []metrics.GuardrailCount `json:"guardrails"`
}

var printer = message.NewPrinter(language.English)

// Build derives the full snapshot from a loaded bundle. Pure and cheap:
// recomputed on every request, only the load behind the bundle is cached.
func Build(b *loader.Bundle, win config.WindowConfig) *Snapshot {
	w := metrics.AnalysisWindow(b.Orders, win.Days)
	weeks := metrics.WeeklyRollup(w, win.RollingWeeks)
	base := metrics.ComputeBaselines(weeks, w)
	head := metrics.ComputeHeadline(w, b.Impact)
	nodes, guards := metrics.PolicyStatus(b.PolicyLog, win.PolicyDays)

	s := &Snapshot{
		GeneratedAt: time.Now().UTC(),
		Demo:        b.Demo(),
		Banners:     b.Notices,
		Baselines: Baselines{
			MeanWeeklyOTDPct: fptr(base.MeanWeeklyOTDPct),
			P90DeliveryDays:  fptr(base.P90DeliveryDays),
		},
		Cards: []Card{
			{Title: "On-time Orders (90d)", Value: printer.Sprintf("%d", head.OnTimeOrders)},
			{Title: "OTD (90d)", Value: pct(head.OTDPct)},
			{Title: "Delivery Time p90 (days)", Value: days(head.P90DeliveryDays)},
			{Title: "Net GMV Growth (90d, base)", Value: printer.Sprintf("$%.0f", head.NetBaseEffect)},
		},
		Incidents:  metrics.OpenIncidents(b.Incidents),
		NodeFires:  nodes,
		Guardrails: guards,
	}

	for _, ws := range weeks {
		s.WeeklyOTD = append(s.WeeklyOTD, Point{Week: ws.Week, Value: fptr(ws.OTDPct), Orders: ws.Orders})
		s.ReviewTrend = append(s.ReviewTrend, Point{Week: ws.Week, Value: fptr(ws.ReviewRolling)})
	}

	for _, row := range metrics.SegmentRollup(b.Segments, b.Impact) {
		s.Segments = append(s.Segments, SegmentRow{
			Segment:        row.Name,
			Orders:         row.Orders,
			OTDPct:         row.OTDPct,
			RepeatPct:      row.RepeatPct,
			Play:           row.Play,
			ExpectedEffect: row.ExpectedEffect,
		})
	}
	return s
}

func pct(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return printer.Sprintf("%.1f%%", v)
}

func days(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return printer.Sprintf("%.1f", v)
}

// fptr maps NaN to nil so the JSON encoder never sees a NaN.
func fptr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
