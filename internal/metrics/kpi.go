package metrics

import (
	"math"

	"github.com/sells-group/ops-dashboard/internal/model"
)

// Headline holds the four metric-card values. Percentages and durations
// are NaN when the window carries no usable data.
type Headline struct {
	OnTimeOrders    int     `json:"on_time_orders"`
	OTDPct          float64 `json:"otd_pct"`
	P90DeliveryDays float64 `json:"p90_delivery_days"`
	NetBaseEffect   float64 `json:"net_base_effect"`
}

// ComputeHeadline derives the headline KPIs: distinct on-time orders in
// the window, overall on-time percentage, p90 delivery time, and the net
// platform effect summed over base-scenario impact rows. Recomputed in
// full on every call; the load step is the only thing memoized.
func ComputeHeadline(w Window, impact []model.ImpactRow) Headline {
	h := Headline{OTDPct: math.NaN()}

	onTime := make(map[string]struct{})
	rows := 0
	for _, o := range w.Orders {
		rows++
		if o.OnTime {
			onTime[o.ID] = struct{}{}
		}
	}
	h.OnTimeOrders = len(onTime)
	if rows > 0 {
		onTimeRows := 0
		for _, o := range w.Orders {
			if o.OnTime {
				onTimeRows++
			}
		}
		h.OTDPct = 100 * float64(onTimeRows) / float64(rows)
	}

	h.P90DeliveryDays = Percentile(deliveryDays(w.Orders), 90)

	for _, r := range impact {
		if r.Scenario == model.ScenarioBase {
			h.NetBaseEffect += r.NetEffect
		}
	}
	return h
}
