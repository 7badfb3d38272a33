package model

// Segment is a named customer/order cohort with a human-readable
// selection rule and pre-computed 90-day stats.
type Segment struct {
	Name            string  `json:"segment"`
	Rule            string  `json:"rule"`
	Orders          int     `json:"size"`
	OTDPct          float64 `json:"otd_pct"`
	P90DeliveryDays float64 `json:"p90_delivery_days"`
	RepeatPct       float64 `json:"repeat_90d_pct"`
	GMV90d          float64 `json:"gmv_90d"`
	Play            string  `json:"play"`
}
