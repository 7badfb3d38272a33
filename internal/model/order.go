// Package model defines the five input tables the dashboard derives
// everything from. Records are immutable after load; every downstream
// aggregate is a pure function of these.
package model

import (
	"math"
	"time"
)

// Order is one delivered (or pending) e-commerce order fact row.
// DeliveryDays and ReviewScore are NaN when the source row had no value.
type Order struct {
	ID                  string     `json:"order_id"`
	PurchasedAt         time.Time  `json:"order_purchase_timestamp"`
	DeliveredAt         *time.Time `json:"order_delivered_customer_date,omitempty"`
	EstimatedDeliveryAt *time.Time `json:"order_estimated_delivery_date,omitempty"`
	OnTime              bool       `json:"on_time"`
	DeliveryDays        float64    `json:"delivery_time_days"`
	ReviewScore         float64    `json:"review_score_mean"`
	GrossRevenue        float64    `json:"gross_revenue"`
}

// HasDeliveryDays reports whether the delivery duration is known.
func (o Order) HasDeliveryDays() bool {
	return !math.IsNaN(o.DeliveryDays)
}

// HasReviewScore reports whether the order carries a review score.
func (o Order) HasReviewScore() bool {
	return !math.IsNaN(o.ReviewScore)
}
