package run

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "voicescroll"

// latencyBuckets are histogram boundaries in seconds.
var latencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30}

// Metrics holds the loop's instruments.
type Metrics struct {
	// Heard counts utterances transcribed to non-empty text.
	Heard metric.Int64Counter
	// Matched counts dispatched commands, attribute "command".
	Matched metric.Int64Counter
	// Unknown counts utterances matching no command.
	Unknown metric.Int64Counter
	// Failures counts recognition failures, attribute "kind".
	Failures metric.Int64Counter
	// TranscribeDuration tracks speech-to-text latency.
	TranscribeDuration metric.Float64Histogram
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}
	if met.Heard, err = m.Int64Counter("voicescroll.utterances.heard",
		metric.WithDescription("Utterances transcribed to text."),
	); err != nil {
		return nil, err
	}
	if met.Matched, err = m.Int64Counter("voicescroll.commands.matched",
		metric.WithDescription("Commands dispatched, by action."),
	); err != nil {
		return nil, err
	}
	if met.Unknown, err = m.Int64Counter("voicescroll.commands.unknown",
		metric.WithDescription("Utterances that matched no command."),
	); err != nil {
		return nil, err
	}
	if met.Failures, err = m.Int64Counter("voicescroll.recognition.failures",
		metric.WithDescription("Recognition failures by kind."),
	); err != nil {
		return nil, err
	}
	if met.TranscribeDuration, err = m.Float64Histogram("voicescroll.transcribe.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// newMeterProvider returns a Prometheus-backed provider when enabled and a
// no-op provider otherwise.
func newMeterProvider(enabled bool) (metric.MeterProvider, func(context.Context) error, error) {
	if !enabled {
		return noop.NewMeterProvider(), func(context.Context) error { return nil }, nil
	}
	exp, err := promexporter.New()
	if err != nil {
		return nil, nil, err
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp))
	return mp, mp.Shutdown, nil
}

// serveMetrics exposes /metrics until ctx is done.
func serveMetrics(ctx context.Context, addr string, logger *logrus.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	logger.Infof("metrics listening on http://%s/metrics", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
