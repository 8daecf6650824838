package commands

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/specwatch/specwatch/internal/metrics"
	"github.com/specwatch/specwatch/internal/poller"
)

func newWatchCommand() *cobra.Command {
	var interval time.Duration
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the scheduler loop",
		Long: `Run the scheduler until interrupted: every tick polls all eligible
specs and scans the repositories that are due. With --metrics-addr,
Prometheus metrics are served over HTTP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			registry := prometheus.NewRegistry()
			m := metrics.New(registry)

			a, err := newApp(ctx, m)
			if err != nil {
				return err
			}

			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
				server := &http.Server{Addr: metricsAddr, Handler: mux}
				go func() {
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						a.log.Error("metrics server failed", err)
					}
				}()
				defer server.Close()
				fmt.Fprintf(cmd.OutOrStdout(), "Serving metrics on %s/metrics\n", metricsAddr)
			}

			if interval <= 0 {
				interval = cfg.Polling.Interval
			}
			watch := poller.NewWatch(a.poller, a.scans, interval, a.log)
			if err := watch.Run(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "scheduler tick interval (default from config)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (e.g. :9090)")
	return cmd
}
