package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"podqueue/internal/api"
	"podqueue/internal/logging"
	"podqueue/internal/metrics"
	"podqueue/internal/queue"
)

const (
	shutdownTimeout     = 10 * time.Second
	queueLengthInterval = 15 * time.Second
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the queue over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			addr := bind
			if addr == "" {
				addr = ctx.config.Paths.APIBind
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(reg)
			broadcaster := queue.NewBroadcaster()
			defer broadcaster.Close()

			return ctx.withStore(func(store *queue.Store, orderer *queue.Orderer) error {
				logger := logging.NewComponentLogger(ctx.baseLogger(), "serve")
				listener, err := net.Listen("tcp", addr)
				if err != nil {
					return fmt.Errorf("listen on %s: %w", addr, err)
				}
				srv := &http.Server{
					Handler: api.NewRouter(api.RouterOptions{
						Service:  api.NewQueueService(store, orderer, ctx.config.Paths.StorageDir),
						Changes:  broadcaster,
						Gatherer: reg,
						Logger:   ctx.baseLogger(),
					}),
					ReadHeaderTimeout: 10 * time.Second,
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Serving podqueue API on http://%s\n", listener.Addr())
				logger.Info("api listening", logging.String("addr", listener.Addr().String()))

				g, gctx := errgroup.WithContext(runCtx)
				g.Go(func() error {
					if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return err
					}
					return nil
				})
				g.Go(func() error {
					<-gctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
					defer cancel()
					broadcaster.Close()
					return srv.Shutdown(shutdownCtx)
				})
				g.Go(func() error {
					return sampleQueue(gctx, store, broadcaster, m)
				})

				err = g.Wait()
				logger.Info("api stopped")
				return err
			}, queue.WithNotifier(broadcaster), queue.WithObserver(m))
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (defaults to paths.api_bind)")
	return cmd
}

// sampleQueue refreshes gauges that are not driven by mutations.
func sampleQueue(ctx context.Context, store *queue.Store, broadcaster *queue.Broadcaster, m *metrics.Metrics) error {
	ticker := time.NewTicker(queueLengthInterval)
	defer ticker.Stop()

	var reported uint64
	for {
		if n, err := store.QueueLength(ctx); err == nil {
			m.SetQueueLength(n)
		}
		dropped := broadcaster.Dropped()
		m.AddDropped(dropped - reported)
		reported = dropped

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
