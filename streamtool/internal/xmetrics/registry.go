package xmetrics

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	"github.com/yandex/streamtool/streamtool/pkg/atomicfs"
	"github.com/yandex/streamtool/streamtool/pkg/xlog"
)

////////////////////////////////////////////////////////////////////////////////

type Registry struct {
	*prometheus.Registry
}

func NewRegistry(options ...Option) *Registry {
	conf := collectOptions(options...)

	r := &Registry{prometheus.NewRegistry()}
	if conf.processCollectors {
		r.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return r
}

func (r *Registry) HTTPHandler(logger xlog.Logger) http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(logger.Zap()),
	})
}

// StreamMetrics writes every gathered metric family to w in the text
// exposition format.
func (r *Registry) StreamMetrics(ctx context.Context, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	families, err := r.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := enc.Encode(family); err != nil {
			return fmt.Errorf("failed to encode metric family %s: %w", family.GetName(), err)
		}
	}
	return nil
}

// DumpToFile replaces the file at path with the current metrics.
func (r *Registry) DumpToFile(ctx context.Context, path string) error {
	f, err := atomicfs.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Discard()
	}()

	if err := r.StreamMetrics(ctx, f); err != nil {
		return err
	}
	return f.Commit()
}
