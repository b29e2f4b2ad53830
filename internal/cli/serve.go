package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/arbor/internal/httpapi"
	"github.com/mesh-intelligence/arbor/internal/observability"
	"github.com/mesh-intelligence/arbor/internal/tree"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tree over HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = a.settings.Listen
			}
			return a.serve(cmd, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, \":5000\")")
	return cmd
}

func (a *app) serve(cmd *cobra.Command, addr string) (err error) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, a.settings.Tracing, cmd.ErrOrStderr())
	if err != nil {
		return userError(err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if serr := shutdownTracer(sctx); serr != nil {
			a.logger.Warn("tracer shutdown failed", "error", serr)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	m, store, err := a.openTree(ctx, tree.WithMetrics(metrics))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = sysError(fmt.Errorf("close store: %w", cerr))
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	srv := httpapi.New(m,
		httpapi.WithLogger(a.logger),
		httpapi.WithMetrics(metrics, reg),
		httpapi.WithCORSOrigins(a.settings.CORSOrigins...),
	)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return sysError(fmt.Errorf("listen on %s: %w", addr, err))
	}
	a.logger.Info("serving tree",
		"addr", ln.Addr().String(),
		"backend", a.settings.Backend,
		"data_dir", a.dataDir,
		"nodes", m.Len())

	if err := serveHTTP(ctx, ln, srv.Handler(), a.logger); err != nil {
		return sysError(err)
	}
	return nil
}

// serveHTTP serves h on ln until ctx is done, then shuts down gracefully.
func serveHTTP(ctx context.Context, ln net.Listener, h http.Handler, logger *slog.Logger) error {
	httpSrv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(sctx)
	})
	return g.Wait()
}
