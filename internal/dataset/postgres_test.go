package dataset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ops-dashboard/internal/model"
)

func TestPostgresSegments(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT segment, rule, size").WillReturnRows(
		pgxmock.NewRows([]string{"segment", "rule", "size", "otd_pct", "p90_delivery_days", "repeat_90d_pct", "gmv_90d", "play"}).
			AddRow("S1", "rule a", 2300, 95.2, 11.8, 22.0, 2_300_000.0, "Express"),
	)

	src := NewPostgresFromPool(mock)
	segments, err := src.Segments(context.Background())
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "S1", segments[0].Name)
	assert.Equal(t, 2300, segments[0].Orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresImpact(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT segment, scenario, base_gmv_90d").WillReturnRows(
		pgxmock.NewRows([]string{"segment", "scenario", "base_gmv_90d", "orders_90d", "aov",
			"uplift_gmv_pct", "cost_per_order", "take_rate",
			"incr_gmv_90d", "platform_share", "total_cost", "net_effect"}).
			AddRow("S1", "base", 2_300_000.0, 2300, 1000.0, 3.0, 0.6, 0.12, 69_000.0, 8280.0, 1380.0, 6900.0),
	)

	src := NewPostgresFromPool(mock)
	rows, err := src.Impact(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.ScenarioBase, rows[0].Scenario)
	assert.InDelta(t, 6900, rows[0].NetEffect, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPolicyLog(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT timestamp, node, guardrail_fired").WillReturnRows(
		pgxmock.NewRows([]string{"timestamp", "node", "guardrail_fired"}).
			AddRow(ts, "Node1_high_risk", 1).
			AddRow(ts.Add(time.Hour), "Node2_segment_geo", 0),
	)

	src := NewPostgresFromPool(mock)
	log, err := src.PolicyLog(context.Background())
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.True(t, log[0].GuardrailFired)
	assert.False(t, log[1].GuardrailFired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMissingTableIsNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT segment, scenario, base_gmv_90d").WillReturnError(
		&pgconn.PgError{Code: "42P01", Message: `relation "impact" does not exist`},
	)

	src := NewPostgresFromPool(mock)
	_, err = src.Impact(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
