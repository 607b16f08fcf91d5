package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yandex/streamtool/streamtool/internal/chunkstore"
	"github.com/yandex/streamtool/streamtool/internal/config"
	"github.com/yandex/streamtool/streamtool/internal/splitter"
	"github.com/yandex/streamtool/streamtool/internal/xmetrics"
	"github.com/yandex/streamtool/streamtool/pkg/xlog"
)

type app struct {
	conf     *config.Config
	logger   xlog.Logger
	registry *xmetrics.Registry
	server   *http.Server
}

func newApp(ctx context.Context) (*app, error) {
	conf, err := config.ParseConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if logLevel != "" {
		conf.LogLevel = logLevel
	}

	logger, err := xlog.NewFromLevel(conf.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &app{
		conf:     conf,
		logger:   logger,
		registry: xmetrics.NewRegistry(xmetrics.WithProcessCollectors()),
	}

	if metricsPort != 0 {
		if err := a.serveMetrics(ctx); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *app) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.registry.HTTPHandler(a.logger))

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", metricsPort))
	if err != nil {
		return fmt.Errorf("failed to listen on metrics port: %w", err)
	}

	a.server = &http.Server{Handler: mux}
	a.logger.Info(ctx, "Starting metrics server", zap.Uint32("port", metricsPort))
	go func() {
		if err := a.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(ctx, "Metrics server failed", zap.Error(err))
		}
	}()
	return nil
}

func (a *app) newSplitter() (*splitter.Splitter, error) {
	store, err := chunkstore.New(&a.conf.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chunk store: %w", err)
	}
	return splitter.New(a.logger, a.registry, store), nil
}

func (a *app) close(ctx context.Context) error {
	var errs []error

	if metricsDump != "" {
		if err := a.registry.DumpToFile(context.WithoutCancel(ctx), metricsDump); err != nil {
			errs = append(errs, fmt.Errorf("failed to dump metrics: %w", err))
		}
	}

	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		errs = append(errs, a.server.Shutdown(shutdownCtx))
	}

	_ = a.logger.Zap().Sync()
	return errors.Join(errs...)
}

// run wraps a command body with config, logging and metrics setup.
func run(body func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}

		err = body(ctx, a, cmd, args)
		if err != nil {
			a.logger.Error(ctx, "Command failed", zap.String("command", cmd.Name()), zap.Error(err))
		}
		return errors.Join(err, a.close(ctx))
	}
}

////////////////////////////////////////////////////////////////////////////////

func openInput(path string) (io.ReadCloser, string, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), "stdin", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	return f, path, nil
}
