package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/broady/endpoint"
	"github.com/broady/endpoint/config"
	"github.com/broady/endpoint/middleware"
)

// IndexPath serves the discovery documents of every endpoint.
const IndexPath = "/_endpoints"

type ServeCmd struct {
	Config          string        `help:"Config file (.yaml, .yml, .json or .toml)." required:"" short:"c" type:"existingfile"`
	Listen          string        `help:"Override the listen address from the config file." short:"l"`
	ShutdownTimeout time.Duration `help:"How long to wait for in-flight requests on shutdown." default:"10s" name:"shutdown-timeout"`
}

func (c *ServeCmd) Run(logger *slog.Logger) error {
	f, eps, err := loadEndpoints(c.Config)
	if err != nil {
		return err
	}
	if c.Listen != "" {
		f.Listen = c.Listen
	}

	var m *endpoint.Metrics
	if f.Metrics.Enabled {
		m = endpoint.PrometheusMetrics(f.Metrics.Namespace)
	}
	h, err := newHandler(f, eps, m, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              f.Listen,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	logger.Info("serving endpoints",
		slog.String("listen", f.Listen),
		slog.Int("endpoints", len(eps)),
		slog.Bool("metrics", f.Metrics.Enabled))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newHandler registers eps on a router and mounts it with the index and,
// when m is non-nil, the metrics endpoint.
func newHandler(f *config.File, eps []*endpoint.Endpoint, m *endpoint.Metrics, logger *slog.Logger) (http.Handler, error) {
	rt := endpoint.NewRouter().WithLogger(logger)
	if m != nil {
		rt.WithMetrics(m)
	}
	for _, ep := range eps {
		if err := rt.Register(ep); err != nil {
			return nil, err
		}
	}

	mux := http.NewServeMux()
	mux.Handle(IndexPath, rt.IndexHandler())
	if m != nil {
		mux.Handle(f.Metrics.Path, promhttp.Handler())
	}
	mux.Handle("/", rt.Handler())

	return middleware.Logging(logger)(middleware.CORS(f.CORS)(mux)), nil
}
