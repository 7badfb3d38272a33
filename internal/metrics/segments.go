package metrics

import (
	"sort"

	"github.com/sells-group/ops-dashboard/internal/model"
)

// SegmentRow is one segment joined with its expected base-scenario effect.
// ExpectedEffect is nil when no base-scenario impact rows exist for the
// segment: "no data" is a distinct state from a zero effect.
type SegmentRow struct {
	model.Segment
	ExpectedEffect *float64 `json:"expected_effect_90d"`
}

// SegmentRollup sums the base-scenario net platform effect per segment and
// left-joins it onto the segment table, preserving segment order.
func SegmentRollup(segments []model.Segment, impact []model.ImpactRow) []SegmentRow {
	sums := make(map[string]float64)
	seen := make(map[string]bool)
	for _, r := range impact {
		if r.Scenario != model.ScenarioBase {
			continue
		}
		sums[r.Segment] += r.NetEffect
		seen[r.Segment] = true
	}

	rows := make([]SegmentRow, 0, len(segments))
	for _, seg := range segments {
		row := SegmentRow{Segment: seg}
		if seen[seg.Name] {
			v := sums[seg.Name]
			row.ExpectedEffect = &v
		}
		rows = append(rows, row)
	}
	return rows
}

// OpenIncidents filters to open incidents, most recently opened first.
func OpenIncidents(incidents []model.Incident) []model.Incident {
	open := make([]model.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if inc.Open() {
			open = append(open, inc)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].OpenedAt.After(open[j].OpenedAt) })
	return open
}
