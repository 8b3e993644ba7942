package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// counterValue sums the counter samples of family name whose labels include want.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metrics:
		for _, m := range f.GetMetric() {
			labels := make(map[string]string)
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue metrics
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	ctx := context.Background()

	m.OnResolveComplete(ctx, 4, time.Second, nil)
	m.OnResolveComplete(ctx, 0, time.Second, errors.New("boom"))
	m.OnScheduleComplete(ctx, 2, time.Millisecond, nil)
	m.OnCacheHit(ctx, "http")
	m.OnCacheHit(ctx, "http")
	m.OnCacheSet(ctx, "resolve", 100)
	m.OnResponse(ctx, "GET", "cdn.example.com", "/libraries/x", 200, time.Millisecond)
	m.OnError(ctx, "GET", "cdn.example.com", "/libraries/x", errors.New("reset"))

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"resolve ok", counterValue(t, reg, "cdnlock_resolve_total", map[string]string{"outcome": "ok"}), 1},
		{"resolve error", counterValue(t, reg, "cdnlock_resolve_total", map[string]string{"outcome": "error"}), 1},
		{"schedule ok", counterValue(t, reg, "cdnlock_schedule_total", map[string]string{"outcome": "ok"}), 1},
		{"cache hits", counterValue(t, reg, "cdnlock_cache_operations_total", map[string]string{"key_type": "http", "op": "hit"}), 2},
		{"cache bytes", counterValue(t, reg, "cdnlock_cache_written_bytes_total", map[string]string{"key_type": "resolve"}), 100},
		{"registry 200", counterValue(t, reg, "cdnlock_registry_requests_total", map[string]string{"code": "200"}), 1},
		{"registry errors", counterValue(t, reg, "cdnlock_registry_errors_total", nil), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestMetricsInstall(t *testing.T) {
	defer Reset()
	m := NewMetrics(prometheus.NewRegistry())
	m.Install()
	if Pipeline() != PipelineHooks(m) || Cache() != CacheHooks(m) || HTTP() != HTTPHooks(m) {
		t.Error("Install() should register the metrics as every hook")
	}
}
