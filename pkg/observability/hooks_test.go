package observability

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	q := NoopQueryHooks{}
	q.OnQueryStart(ctx, "impact")
	q.OnQueryComplete(ctx, "impact", "backdoor", time.Second, nil)
	q.OnRenderComplete(ctx, "svg", time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "query")
	c.OnCacheMiss(ctx, "render")
	c.OnCacheSet(ctx, "model", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/impact")
	h.OnResponse(ctx, "POST", "/v1/impact", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Query().(NoopQueryHooks); !ok {
		t.Error("Query() is not a no-op by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() is not a no-op by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() is not a no-op by default")
	}

	custom := &testQueryHooks{}
	SetQueryHooks(custom)
	if Query() != custom {
		t.Error("SetQueryHooks did not install the hooks")
	}
	SetQueryHooks(nil)
	if Query() != custom {
		t.Error("SetQueryHooks(nil) replaced the hooks")
	}

	m := NewMetrics()
	Register(m)
	if Query() != m || Cache() != m || HTTP() != m {
		t.Error("Register did not install the metrics for every category")
	}

	Reset()
	if _, ok := Query().(NoopQueryHooks); !ok {
		t.Error("Reset() did not restore the no-op hooks")
	}
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics()

	m.OnQueryStart(ctx, "impact")
	if got := testutil.ToFloat64(m.QueriesInFlight.WithLabelValues("impact")); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	m.OnQueryComplete(ctx, "impact", "backdoor", 10*time.Millisecond, nil)
	m.OnQueryStart(ctx, "impact")
	m.OnQueryComplete(ctx, "impact", "hedge", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(m.QueriesInFlight.WithLabelValues("impact")); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.QueriesTotal.WithLabelValues("impact", "backdoor", "ok")); got != 1 {
		t.Errorf("ok queries = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.QueriesTotal.WithLabelValues("impact", "hedge", "error")); got != 1 {
		t.Errorf("failed queries = %v, want 1", got)
	}

	m.OnCacheHit(ctx, "query")
	m.OnCacheMiss(ctx, "query")
	m.OnCacheMiss(ctx, "query")
	m.OnCacheSet(ctx, "query", 512)
	if got := testutil.ToFloat64(m.CacheMisses.WithLabelValues("query")); got != 2 {
		t.Errorf("misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheBytes.WithLabelValues("query")); got != 512 {
		t.Errorf("bytes = %v, want 512", got)
	}

	m.OnResponse(ctx, "POST", "/v1/impact", 422, time.Millisecond)
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/v1/impact", "422")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.OnRenderComplete(context.Background(), "svg", time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{`causeway_renders_total{format="svg",status="ok"} 1`, "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("/metrics lacks %s", want)
		}
	}
}

type testQueryHooks struct{ NoopQueryHooks }
