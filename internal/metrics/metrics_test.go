package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCollectorsRegistered(t *testing.T) {
	m := New()
	m.ChunksGenerated.Add(3)
	m.GenQueue.Set(7)
	m.GenSeconds.Observe(0.01)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range families {
		metric := mf.GetMetric()[0]
		switch {
		case metric.GetCounter() != nil:
			values[mf.GetName()] = metric.GetCounter().GetValue()
		case metric.GetGauge() != nil:
			values[mf.GetName()] = metric.GetGauge().GetValue()
		case metric.GetHistogram() != nil:
			values[mf.GetName()] = float64(metric.GetHistogram().GetSampleCount())
		}
	}
	assert.Equal(t, 3.0, values["voxel_chunks_generated_total"])
	assert.Equal(t, 7.0, values["voxel_generation_queue"])
	assert.Equal(t, 1.0, values["voxel_generation_seconds"])
	assert.Len(t, families, 16)
}

func TestSeparateRegistries(t *testing.T) {
	// Two engines in one process must not collide.
	a, b := New(), New()
	a.MeshesBuilt.Inc()
	fa, err := a.Registry().Gather()
	require.NoError(t, err)
	fb, err := b.Registry().Gather()
	require.NoError(t, err)
	assert.Equal(t, len(fa), len(fb))
}

func TestServe(t *testing.T) {
	m := New()
	m.QuadsEmitted.Add(42)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	addr, err := m.Serve(ctx, "127.0.0.1:0", zap.NewNop())
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr.String() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "voxel_quads_emitted_total 42"))
}

func TestServeBadAddress(t *testing.T) {
	_, err := New().Serve(context.Background(), "not-an-address", zap.NewNop())
	assert.Error(t, err)
}
