package dashboard

import (
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// WriteXLSX writes the snapshot's tabular sections as an XLSX workbook:
// one sheet each for cards, segments, incidents, and policy status.
func WriteXLSX(s *Snapshot, w io.Writer) error {
	f := xlsx.NewFile()

	cards, err := f.AddSheet("KPIs")
	if err != nil {
		return eris.Wrap(err, "xlsx: add KPIs sheet")
	}
	addRow(cards, "Metric", "Value")
	for _, c := range s.Cards {
		addRow(cards, c.Title, c.Value)
	}

	segments, err := f.AddSheet("Segments")
	if err != nil {
		return eris.Wrap(err, "xlsx: add Segments sheet")
	}
	addRow(segments, "Segment", "Orders", "OTD (%)", "Repeat (%)", "Planned Play", "Expected 90d Effect")
	for _, row := range s.Segments {
		effect := "no data"
		if row.ExpectedEffect != nil {
			effect = strconv.FormatFloat(*row.ExpectedEffect, 'f', 2, 64)
		}
		addRow(segments, row.Segment, strconv.Itoa(row.Orders),
			strconv.FormatFloat(row.OTDPct, 'f', 1, 64),
			strconv.FormatFloat(row.RepeatPct, 'f', 1, 64),
			row.Play, effect)
	}

	incidents, err := f.AddSheet("Incidents")
	if err != nil {
		return eris.Wrap(err, "xlsx: add Incidents sheet")
	}
	addRow(incidents, "ID", "Opened", "Severity", "Title", "Status")
	for _, inc := range s.Incidents {
		addRow(incidents, inc.ID, inc.OpenedAt.Format("2006-01-02 15:04"), inc.Severity, inc.Title, inc.Status)
	}

	policy, err := f.AddSheet("Policy")
	if err != nil {
		return eris.Wrap(err, "xlsx: add Policy sheet")
	}
	addRow(policy, "Node", "Fires (7d)")
	for _, n := range s.NodeFires {
		addRow(policy, n.Node, strconv.Itoa(n.Fires))
	}
	addRow(policy)
	addRow(policy, "Guardrail Tripped", "Count")
	for _, g := range s.Guardrails {
		addRow(policy, g.Label, strconv.Itoa(g.Count))
	}

	return eris.Wrap(f.Write(w), "xlsx: write")
}

func addRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().Value = c
	}
}
