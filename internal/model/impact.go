package model

// Scenario labels an impact projection row.
type Scenario string

const (
	ScenarioOptimistic  Scenario = "optimistic"
	ScenarioBase        Scenario = "base"
	ScenarioPessimistic Scenario = "pessimistic"
)

// ImpactRow projects the financial effect of acting on a segment under one
// scenario. The last four fields are derived; Derive fills them from the
// inputs and is the contract any impact-data provider must satisfy.
type ImpactRow struct {
	Segment      string   `json:"segment"`
	Scenario     Scenario `json:"scenario"`
	BaseGMV      float64  `json:"base_gmv_90d"`
	Orders       int      `json:"orders_90d"`
	AOV          float64  `json:"aov"`
	UpliftPct    float64  `json:"uplift_gmv_pct"`
	CostPerOrder float64  `json:"cost_per_order"`
	TakeRate     float64  `json:"take_rate"`

	IncrementalGMV float64 `json:"incr_gmv_90d"`
	PlatformShare  float64 `json:"platform_share"`
	TotalCost      float64 `json:"total_cost"`
	NetEffect      float64 `json:"net_effect"`
}

// Derive computes the four derived fields in place:
// incremental GMV from the uplift percentage, the platform's take of it,
// the per-order action cost, and the net platform effect.
func (r *ImpactRow) Derive() {
	r.IncrementalGMV = r.BaseGMV * (r.UpliftPct / 100)
	r.PlatformShare = r.IncrementalGMV * r.TakeRate
	r.TotalCost = float64(r.Orders) * r.CostPerOrder
	r.NetEffect = r.PlatformShare - r.TotalCost
}
