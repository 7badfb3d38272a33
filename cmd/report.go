package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/ops-dashboard/internal/dashboard"
	"github.com/sells-group/ops-dashboard/internal/demo"
	"github.com/sells-group/ops-dashboard/internal/loader"
)

var (
	reportFormat string
	reportOut    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a one-shot dashboard snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		source, err := newSource(ctx, cfg)
		if err != nil {
			return err
		}
		defer source.Close()

		bundle, err := loader.New(source, demo.New(cfg.Data.DemoSeed)).Load(ctx)
		if err != nil {
			return eris.Wrap(err, "load")
		}
		snap := dashboard.Build(bundle, cfg.Window)

		switch reportFormat {
		case "text":
			formatSnapshot(cmd.OutOrStdout(), snap)
			return nil
		case "yaml":
			data, err := yaml.Marshal(snap)
			if err != nil {
				return eris.Wrap(err, "marshal snapshot")
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		case "xlsx":
			if reportOut == "" {
				return eris.New("--out is required with --format xlsx")
			}
			f, err := os.Create(reportOut)
			if err != nil {
				return eris.Wrapf(err, "create %s", reportOut)
			}
			defer f.Close()
			return dashboard.WriteXLSX(snap, f)
		default:
			return eris.Errorf("unknown format %q", reportFormat)
		}
	},
}

// formatSnapshot writes the tabular sections of a snapshot to out.
func formatSnapshot(out io.Writer, s *dashboard.Snapshot) {
	for _, b := range s.Banners {
		_, _ = fmt.Fprintf(out, "[%s] %s\n", b.Level, b.Message)
	}
	if len(s.Banners) > 0 {
		_, _ = fmt.Fprintln(out)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range s.Cards {
		_, _ = fmt.Fprintf(w, "%s:\t%s\n", c.Title, c.Value)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SEGMENT\tORDERS\tOTD%\tREPEAT%\tPLAY\tEXPECTED 90D")
	for _, row := range s.Segments {
		effect := "no data"
		if row.ExpectedEffect != nil {
			effect = fmt.Sprintf("%.2f", *row.ExpectedEffect)
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%.1f\t%.1f\t%s\t%s\n",
			row.Segment, row.Orders, row.OTDPct, row.RepeatPct, row.Play, effect)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NODE\tFIRES")
	for _, n := range s.NodeFires {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", n.Node, n.Fires)
	}
	_, _ = fmt.Fprintln(w, "GUARDRAIL\tCOUNT")
	for _, g := range s.Guardrails {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", g.Label, g.Count)
	}
	_ = w.Flush()

	if len(s.Incidents) > 0 {
		_, _ = fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "INCIDENT\tOPENED\tSEVERITY\tTITLE")
		for _, inc := range s.Incidents {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				inc.ID, inc.OpenedAt.Format("2006-01-02 15:04"), inc.Severity, inc.Title)
		}
		_ = w.Flush()
	}
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "text", "output format: text, yaml, or xlsx")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "output file (xlsx format)")
	rootCmd.AddCommand(reportCmd)
}
