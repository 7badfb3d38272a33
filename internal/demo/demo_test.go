package demo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ops-dashboard/internal/model"
)

var ref = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestOrdersDeterministic(t *testing.T) {
	a := New(7).Orders(ref)
	b := New(7).Orders(ref)
	require.Len(t, a, 5000)
	assert.Equal(t, a, b)
}

func TestOrdersShape(t *testing.T) {
	orders := New(1).Orders(ref)

	onTime := 0
	for _, o := range orders {
		assert.False(t, o.PurchasedAt.After(ref.Add(24*time.Hour)))
		assert.False(t, o.PurchasedAt.Before(ref.AddDate(0, 0, -400)))
		assert.Greater(t, o.DeliveryDays, 0.0)
		assert.GreaterOrEqual(t, o.ReviewScore, 1.0)
		assert.LessOrEqual(t, o.ReviewScore, 5.0)
		if o.OnTime {
			onTime++
		}
	}
	rate := float64(onTime) / float64(len(orders))
	assert.InDelta(t, 0.98, rate, 0.02)
}

func TestSegmentsFixed(t *testing.T) {
	segments := New(1).Segments()
	require.Len(t, segments, 5)
	assert.Equal(t, "S1 Urban Fast-Track", segments[0].Name)
	assert.Equal(t, "S5 Heavy-Freight", segments[4].Name)
}

func TestImpactFormula(t *testing.T) {
	g := New(1)
	segments := g.Segments()
	rows := g.Impact(segments)
	require.Len(t, rows, len(segments)*3)

	for _, r := range rows {
		wantIncr := r.BaseGMV * (r.UpliftPct / 100)
		wantShare := wantIncr * r.TakeRate
		wantCost := float64(r.Orders) * r.CostPerOrder
		assert.InDelta(t, wantIncr, r.IncrementalGMV, 0.001)
		assert.InDelta(t, wantShare, r.PlatformShare, 0.001)
		assert.InDelta(t, wantCost, r.TotalCost, 0.001)
		assert.InDelta(t, wantShare-wantCost, r.NetEffect, 0.001)
	}
}

func TestImpactScenarios(t *testing.T) {
	g := New(1)
	rows := g.Impact(g.Segments())

	perSegment := map[string]map[model.Scenario]bool{}
	for _, r := range rows {
		if perSegment[r.Segment] == nil {
			perSegment[r.Segment] = map[model.Scenario]bool{}
		}
		perSegment[r.Segment][r.Scenario] = true
	}
	for seg, scenarios := range perSegment {
		assert.Len(t, scenarios, 3, "segment %s", seg)
		assert.True(t, scenarios[model.ScenarioBase])
	}
}

func TestPolicyLogWindow(t *testing.T) {
	log := New(1).PolicyLog(ref)
	require.Len(t, log, 600)

	earliest := ref.AddDate(0, 0, -6)
	for _, f := range log {
		assert.False(t, f.Timestamp.Before(earliest))
		assert.False(t, f.Timestamp.After(ref))
	}
}

func TestIncidentsOpen(t *testing.T) {
	incidents := New(1).Incidents(ref)
	require.Len(t, incidents, 2)
	for _, inc := range incidents {
		assert.True(t, inc.Open())
		assert.NotEmpty(t, inc.Title)
		assert.True(t, inc.OpenedAt.Before(ref))
	}
}
