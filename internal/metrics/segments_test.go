package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ops-dashboard/internal/model"
)

func TestSegmentRollupBaseOnly(t *testing.T) {
	segments := []model.Segment{{Name: "S1"}, {Name: "S2"}}
	impact := []model.ImpactRow{
		{Segment: "S1", Scenario: model.ScenarioBase, NetEffect: 100},
		{Segment: "S1", Scenario: model.ScenarioBase, NetEffect: 50},
		{Segment: "S1", Scenario: model.ScenarioOptimistic, NetEffect: 9999},
		{Segment: "S2", Scenario: model.ScenarioBase, NetEffect: -20},
	}

	rows := SegmentRollup(segments, impact)
	require.Len(t, rows, 2)

	require.NotNil(t, rows[0].ExpectedEffect)
	assert.InDelta(t, 150.0, *rows[0].ExpectedEffect, 0.001)
	require.NotNil(t, rows[1].ExpectedEffect)
	assert.InDelta(t, -20.0, *rows[1].ExpectedEffect, 0.001)
}

func TestSegmentRollupNoDataIsNotZero(t *testing.T) {
	segments := []model.Segment{{Name: "S1"}, {Name: "orphan"}}
	impact := []model.ImpactRow{
		{Segment: "S1", Scenario: model.ScenarioBase, NetEffect: 0},
	}

	rows := SegmentRollup(segments, impact)
	require.Len(t, rows, 2)

	// S1 has a real zero effect; orphan has no data at all.
	require.NotNil(t, rows[0].ExpectedEffect)
	assert.InDelta(t, 0.0, *rows[0].ExpectedEffect, 0.001)
	assert.Nil(t, rows[1].ExpectedEffect)
}

func TestSegmentRollupPreservesOrder(t *testing.T) {
	segments := []model.Segment{{Name: "z"}, {Name: "a"}, {Name: "m"}}
	rows := SegmentRollup(segments, nil)
	require.Len(t, rows, 3)
	assert.Equal(t, "z", rows[0].Name)
	assert.Equal(t, "a", rows[1].Name)
	assert.Equal(t, "m", rows[2].Name)
}

func TestOpenIncidents(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	incidents := []model.Incident{
		{ID: "old-open", OpenedAt: base.AddDate(0, 0, -5), Status: "open"},
		{ID: "resolved", OpenedAt: base.AddDate(0, 0, -1), Status: "resolved"},
		{ID: "new-open", OpenedAt: base.AddDate(0, 0, -2), Status: "Open"},
	}

	open := OpenIncidents(incidents)
	require.Len(t, open, 2)
	assert.Equal(t, "new-open", open[0].ID)
	assert.Equal(t, "old-open", open[1].ID)
}
