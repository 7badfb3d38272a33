package main

import (
	"context"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ops-dashboard/internal/config"
	"github.com/sells-group/ops-dashboard/internal/dataset"
)

// newSource builds the configured input source. csv is the default and
// never fails up front; sqlite and postgres validate their connection here.
func newSource(ctx context.Context, cfg *config.Config) (dataset.Source, error) {
	switch cfg.Data.Source {
	case "", "csv":
		return dataset.NewCSV(csvPaths(cfg.Data)), nil
	case "sqlite":
		return dataset.NewSQLite(cfg.Data.SQLitePath)
	case "postgres":
		return dataset.NewPostgres(ctx, cfg.Data.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown data source %q", cfg.Data.Source)
	}
}

func csvPaths(d config.DataConfig) dataset.CSVPaths {
	return dataset.CSVPaths{
		Orders:    filepath.Join(d.Dir, d.OrdersFile),
		Segments:  filepath.Join(d.Dir, d.SegmentsFile),
		Impact:    filepath.Join(d.Dir, d.ImpactFile),
		PolicyLog: filepath.Join(d.Dir, d.PolicyFile),
		Incidents: filepath.Join(d.Dir, d.IncidentsFile),
	}
}
