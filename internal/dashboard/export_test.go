package dashboard

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/ops-dashboard/internal/loader"
)

func TestWriteXLSX(t *testing.T) {
	snap := Build(testBundle(), testWindow())

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(snap, &buf))
	require.NotZero(t, buf.Len())

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 4)
	assert.Equal(t, "KPIs", f.Sheets[0].Name)
	assert.Equal(t, "Segments", f.Sheets[1].Name)

	// Header plus one row per card.
	assert.Len(t, f.Sheets[0].Rows, len(snap.Cards)+1)
	// A segment without a base projection exports as "no data".
	last := f.Sheets[1].Rows[2]
	assert.Equal(t, "no data", last.Cells[5].Value)
}

func TestWriteXLSXEmptySnapshot(t *testing.T) {
	snap := Build(&loader.Bundle{}, testWindow())

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(snap, &buf))
	assert.NotZero(t, buf.Len())
}
