package dataset

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCSVOrders(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "orders.csv", `order_id,order_purchase_timestamp,order_delivered_customer_date,order_estimated_delivery_date,on_time,delivery_time_days,review_score_mean,gross_revenue
o-1,2024-03-01 10:30:00,2024-03-08 14:00:00,2024-03-10 00:00:00,1,7.15,4.5,120.50
o-2,2024-03-02 09:00:00,,2024-03-09 00:00:00,0,,,80
`)

	src := NewCSV(CSVPaths{Orders: path})
	orders, err := src.Orders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "o-1", orders[0].ID)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), orders[0].PurchasedAt)
	require.NotNil(t, orders[0].DeliveredAt)
	assert.True(t, orders[0].OnTime)
	assert.InDelta(t, 7.15, orders[0].DeliveryDays, 0.001)
	assert.InDelta(t, 4.5, orders[0].ReviewScore, 0.001)
	assert.InDelta(t, 120.50, orders[0].GrossRevenue, 0.001)

	// Missing measurements come back as NaN, missing delivery as nil.
	assert.Nil(t, orders[1].DeliveredAt)
	assert.False(t, orders[1].OnTime)
	assert.True(t, math.IsNaN(orders[1].DeliveryDays))
	assert.True(t, math.IsNaN(orders[1].ReviewScore))
}

func TestCSVOrdersSkipsUnusableRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "orders.csv", `order_id,order_purchase_timestamp,on_time
,2024-03-01 10:30:00,1
o-2,not-a-timestamp,1
o-3,2024-03-03 08:00:00,1
`)

	src := NewCSV(CSVPaths{Orders: path})
	orders, err := src.Orders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "o-3", orders[0].ID)
}

func TestCSVMissingFileIsNotFound(t *testing.T) {
	src := NewCSV(CSVPaths{Orders: filepath.Join(t.TempDir(), "nope.csv")})
	_, err := src.Orders(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCSVEmptyFileIsEmptyTable(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "orders.csv", "")

	src := NewCSV(CSVPaths{Orders: path})
	orders, err := src.Orders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCSVSegments(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "segments.csv", `segment,rule,size,otd_pct,p90_delivery_days,repeat_90d_pct,gmv_90d,play
S1 Urban Fast-Track,"state in {SP,RJ} & Top10",2300,95.2,11.8,22.0,2300000,Express if p90>7d
S5 Heavy-Freight,freight top 10%,900,95.6,20.1,9.0,1000000,Carrier switch / weight cap
`)

	src := NewCSV(CSVPaths{Segments: path})
	segments, err := src.Segments(context.Background())
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, "S1 Urban Fast-Track", segments[0].Name)
	assert.Equal(t, "state in {SP,RJ} & Top10", segments[0].Rule)
	assert.Equal(t, 2300, segments[0].Orders)
	assert.InDelta(t, 95.2, segments[0].OTDPct, 0.001)
	assert.InDelta(t, 2_300_000, segments[0].GMV90d, 0.001)
	assert.Equal(t, "Carrier switch / weight cap", segments[1].Play)
}

func TestCSVImpact(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "impact.csv", `segment,scenario,base_gmv_90d,orders_90d,aov,uplift_gmv_pct,cost_per_order,take_rate,incr_gmv_90d,platform_share,total_cost,net_effect
S1,base,2300000,2300,1000,3,0.6,0.12,69000,8280,1380,6900
S1,optimistic,2300000,2300,1000,6,0.8,0.12,138000,16560,1840,14720
`)

	src := NewCSV(CSVPaths{Impact: path})
	rows, err := src.Impact(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "S1", rows[0].Segment)
	assert.Equal(t, "base", string(rows[0].Scenario))
	assert.InDelta(t, 6900, rows[0].NetEffect, 0.001)
	assert.InDelta(t, 0.12, rows[1].TakeRate, 0.001)
}

func TestCSVPolicyLog(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "policy_log.csv", `timestamp,node,guardrail_fired
2024-03-01 00:00:00,Node1_high_risk,1
2024-03-01 01:00:00,Node2_segment_geo,0
`)

	src := NewCSV(CSVPaths{PolicyLog: path})
	log, err := src.PolicyLog(context.Background())
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, "Node1_high_risk", log[0].Node)
	assert.True(t, log[0].GuardrailFired)
	assert.False(t, log[1].GuardrailFired)
}

func TestCSVIncidents(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "incidents.csv", `incident_id,opened_at,severity,title,status
101,2024-03-01 08:00:00,high,Carrier outage in PR,open
102,2024-03-02 09:00:00,medium,API throttle on checkout,resolved
`)

	src := NewCSV(CSVPaths{Incidents: path})
	incidents, err := src.Incidents(context.Background())
	require.NoError(t, err)
	require.Len(t, incidents, 2)
	assert.True(t, incidents[0].Open())
	assert.False(t, incidents[1].Open())
}

func TestCSVCancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "orders.csv", `order_id,order_purchase_timestamp
o-1,2024-03-01 10:30:00
`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewCSV(CSVPaths{Orders: path})
	_, err := src.Orders(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
