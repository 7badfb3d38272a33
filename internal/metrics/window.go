// Package metrics derives every number the dashboard shows: the trailing
// analysis window, weekly rollups, percentile baselines, headline KPIs, and
// the segment and policy summaries. Everything here is a pure function of
// the loaded tables.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/sells-group/ops-dashboard/internal/model"
)

// Window is the trailing slice of the order table the dashboard analyzes.
type Window struct {
	Orders []model.Order
	Start  time.Time
	End    time.Time
}

// AnalysisWindow filters orders to the trailing window of the given length
// ending at the maximum observed purchase timestamp. Both window ends are
// inclusive. An empty order table yields an empty window.
func AnalysisWindow(orders []model.Order, days int) Window {
	var end time.Time
	for _, o := range orders {
		if o.PurchasedAt.After(end) {
			end = o.PurchasedAt
		}
	}
	if end.IsZero() {
		return Window{}
	}
	start := end.AddDate(0, 0, -days)

	w := Window{Start: start, End: end}
	for _, o := range orders {
		if o.PurchasedAt.Before(start) || o.PurchasedAt.After(end) {
			continue
		}
		w.Orders = append(w.Orders, o)
	}
	return w
}

// WeekStart truncates a timestamp to the Monday 00:00 UTC of its ISO week.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -daysSinceMonday)
}

// WeekStat aggregates one calendar week of the analysis window.
type WeekStat struct {
	Week          time.Time `json:"week"`
	Orders        int       `json:"orders"`
	OTDPct        float64   `json:"otd_pct"`
	Review        float64   `json:"review"`
	ReviewRolling float64   `json:"review_rolling"`
}

// WeeklyRollup groups the window into calendar weeks and computes, per
// week, the distinct order count, the on-time rate as a percentage, and
// the mean review score. ReviewRolling is a trailing simple moving average
// over rollingWeeks weeks, using however many weeks exist at the start of
// the series instead of producing a gap.
func WeeklyRollup(w Window, rollingWeeks int) []WeekStat {
	type acc struct {
		ids     map[string]struct{}
		rows    int
		onTime  int
		revSum  float64
		revRows int
	}
	byWeek := make(map[time.Time]*acc)

	for _, o := range w.Orders {
		week := WeekStart(o.PurchasedAt)
		a := byWeek[week]
		if a == nil {
			a = &acc{ids: make(map[string]struct{})}
			byWeek[week] = a
		}
		a.ids[o.ID] = struct{}{}
		a.rows++
		if o.OnTime {
			a.onTime++
		}
		if o.HasReviewScore() {
			a.revSum += o.ReviewScore
			a.revRows++
		}
	}

	weeks := make([]WeekStat, 0, len(byWeek))
	for week, a := range byWeek {
		review := math.NaN()
		if a.revRows > 0 {
			review = a.revSum / float64(a.revRows)
		}
		weeks = append(weeks, WeekStat{
			Week:   week,
			Orders: len(a.ids),
			OTDPct: 100 * float64(a.onTime) / float64(a.rows),
			Review: review,
		})
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Week.Before(weeks[j].Week) })

	if rollingWeeks < 1 {
		rollingWeeks = 1
	}
	for i := range weeks {
		lo := i - rollingWeeks + 1
		if lo < 0 {
			lo = 0
		}
		sum, n := 0.0, 0
		for _, ws := range weeks[lo : i+1] {
			if !math.IsNaN(ws.Review) {
				sum += ws.Review
				n++
			}
		}
		if n > 0 {
			weeks[i].ReviewRolling = sum / float64(n)
		} else {
			weeks[i].ReviewRolling = math.NaN()
		}
	}
	return weeks
}

// Percentile computes the p-th percentile of values with linear
// interpolation, ignoring NaN entries. Returns NaN when no usable values
// exist.
func Percentile(values []float64, p float64) float64 {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return math.NaN()
	}
	sort.Float64s(clean)

	if len(clean) == 1 {
		return clean[0]
	}
	rank := p / 100 * float64(len(clean)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return clean[lo]
	}
	frac := rank - float64(lo)
	return clean[lo] + frac*(clean[hi]-clean[lo])
}

// Baselines are the window-level reference values the charts annotate.
type Baselines struct {
	MeanWeeklyOTDPct float64 `json:"mean_weekly_otd_pct"`
	P90DeliveryDays  float64 `json:"p90_delivery_days"`
}

// ComputeBaselines derives the window baselines: the mean of the weekly
// on-time percentages and the 90th percentile of per-order delivery time.
func ComputeBaselines(weeks []WeekStat, w Window) Baselines {
	b := Baselines{MeanWeeklyOTDPct: math.NaN()}
	if len(weeks) > 0 {
		sum := 0.0
		for _, ws := range weeks {
			sum += ws.OTDPct
		}
		b.MeanWeeklyOTDPct = sum / float64(len(weeks))
	}
	b.P90DeliveryDays = Percentile(deliveryDays(w.Orders), 90)
	return b
}

func deliveryDays(orders []model.Order) []float64 {
	days := make([]float64, 0, len(orders))
	for _, o := range orders {
		days = append(days, o.DeliveryDays)
	}
	return days
}
