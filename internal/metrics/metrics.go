// Package metrics exposes engine counters on a private prometheus registry.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "voxel"

// Metrics holds every engine collector.
type Metrics struct {
	registry *prometheus.Registry

	ChunksGenerated    prometheus.Counter
	GenerationFailures prometheus.Counter
	MeshesBuilt        prometheus.Counter
	MeshFailures       prometheus.Counter
	QuadsEmitted       prometheus.Counter
	FeaturesForwarded  prometheus.Counter
	FeatureBlocksLost  prometheus.Counter
	LateFragments      prometheus.Counter

	GenQueue        prometheus.Gauge
	MeshQueue       prometheus.Gauge
	PendingResults  prometheus.Gauge
	PendingFeatures prometheus.Gauge
	LoadedChunks    prometheus.Gauge
	Workers         prometheus.Gauge

	GenSeconds  prometheus.Histogram
	MeshSeconds prometheus.Histogram
}

func counter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
}

// New creates and registers the collectors.
func New() *Metrics {
	buckets := prometheus.ExponentialBuckets(0.0005, 2, 12)
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ChunksGenerated:    counter("chunks_generated_total", "Chunks generated and inserted into the world."),
		GenerationFailures: counter("generation_failures_total", "Chunk requests skipped after a generation error."),
		MeshesBuilt:        counter("meshes_built_total", "Chunk meshes produced."),
		MeshFailures:       counter("mesh_failures_total", "Mesh requests skipped after a meshing error."),
		QuadsEmitted:       counter("quads_emitted_total", "Quads emitted by the mesher."),
		FeaturesForwarded:  counter("feature_fragments_forwarded_total", "Feature fragments routed to a neighbor chunk."),
		FeatureBlocksLost:  counter("feature_blocks_dropped_total", "Feature blocks dropped at the world edge."),
		LateFragments:      counter("late_fragments_applied_total", "Fragments applied to chunks that were already loaded."),

		GenQueue:        gauge("generation_queue", "Chunk positions waiting for generation."),
		MeshQueue:       gauge("mesh_queue", "Chunk positions waiting for meshing."),
		PendingResults:  gauge("mesh_results_pending", "Meshes waiting for upload by the render thread."),
		PendingFeatures: gauge("feature_fragments_pending", "Feature fragments waiting for their target chunk."),
		LoadedChunks:    gauge("chunks_loaded", "Chunks in the world map."),
		Workers:         gauge("generation_workers", "Size of the generation worker pool."),

		GenSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_seconds",
			Help:      "Time to generate one chunk.",
			Buckets:   buckets,
		}),
		MeshSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mesh_seconds",
			Help:      "Time to mesh one chunk.",
			Buckets:   buckets,
		}),
	}

	m.registry.MustRegister(
		m.ChunksGenerated, m.GenerationFailures, m.MeshesBuilt, m.MeshFailures,
		m.QuadsEmitted, m.FeaturesForwarded, m.FeatureBlocksLost, m.LateFragments,
		m.GenQueue, m.MeshQueue, m.PendingResults, m.PendingFeatures, m.LoadedChunks, m.Workers,
		m.GenSeconds, m.MeshSeconds,
	)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled. It returns once the
// listener is bound.
func (m *Metrics) Serve(ctx context.Context, addr string, log *zap.Logger) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("metrics listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return ln.Addr(), nil
}
