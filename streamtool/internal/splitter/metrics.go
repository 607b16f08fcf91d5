package splitter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	readBytes    prometheus.Counter
	storedBytes  prometheus.Counter
	writtenBytes prometheus.Counter
	chunks       *prometheus.CounterVec
}

func newMetrics(r prometheus.Registerer) *metrics {
	factory := promauto.With(r)
	return &metrics{
		readBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "streamtool_read_bytes_total",
			Help: "Raw bytes consumed from split sources.",
		}),
		storedBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "streamtool_stored_bytes_total",
			Help: "Encoded bytes written to or read from the chunk store.",
		}),
		writtenBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "streamtool_written_bytes_total",
			Help: "Raw bytes produced by join.",
		}),
		chunks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "streamtool_chunks_total",
			Help: "Chunks processed, by operation.",
		}, []string{"op"}),
	}
}
