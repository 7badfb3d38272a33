package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ops-dashboard/internal/dashboard"
	"github.com/sells-group/ops-dashboard/internal/demo"
	"github.com/sells-group/ops-dashboard/internal/loader"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		source, err := newSource(ctx, cfg)
		if err != nil {
			return err
		}
		defer source.Close()

		l := loader.New(source, demo.New(cfg.Data.DemoSeed))
		server := dashboard.NewServer(l, cfg.Server, cfg.Window)

		// Warm the bundle before accepting traffic so a bad source
		// fails the command instead of the first request.
		if b, err := l.Load(ctx); err != nil {
			return eris.Wrap(err, "initial load")
		} else if b.Demo() {
			for _, n := range b.Notices {
				zap.L().Warn("input substituted", zap.String("notice", n.Message))
			}
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           server.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
