package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probeFor(check CheckFunc) *probe {
	return newProbe("test", time.Second, check)
}

func TestProbeFailureThreshold(t *testing.T) {
	boom := errors.New("connection refused")
	p := probeFor(func(context.Context) error { return boom })

	// Healthy until the failure threshold is reached.
	for i := 0; i < defaultFailureThreshold-1; i++ {
		p.run(context.Background())
		assert.True(t, p.healthy.Load(), "after %d failures", i+1)
	}
	p.run(context.Background())
	assert.False(t, p.healthy.Load())

	msg, failed := p.failure()
	require.True(t, failed)
	assert.Equal(t, "connection refused", msg)
}

func TestProbeRecovers(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	p := probeFor(func(context.Context) error {
		if fail.Load() {
			return errors.New("down")
		}
		return nil
	})

	for i := 0; i < defaultFailureThreshold; i++ {
		p.run(context.Background())
	}
	require.False(t, p.healthy.Load())

	fail.Store(false)
	p.run(context.Background())
	assert.True(t, p.healthy.Load())
}

func TestProbeTimeout(t *testing.T) {
	p := newProbe("slow", 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	for i := 0; i < defaultFailureThreshold; i++ {
		p.run(context.Background())
	}
	assert.False(t, p.healthy.Load())
}

func TestLiveEndpoint(t *testing.T) {
	svc := New()
	svc.AddLivenessCheck("always-ok", time.Second, func(context.Context) error { return nil })

	rec := httptest.NewRecorder()
	svc.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestLiveEndpointUnhealthy(t *testing.T) {
	svc := New()
	svc.AddLivenessCheck("db", time.Second, func(context.Context) error {
		return errors.New("dial failed")
	})
	for i := 0; i < defaultFailureThreshold; i++ {
		svc.liveness[0].run(context.Background())
	}

	rec := httptest.NewRecorder()
	svc.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status": "unhealthy", "checks": {"db": "dial failed"}}`, rec.Body.String())
}

func TestReadyEndpointGate(t *testing.T) {
	svc := New()

	// Not ready until SetReady(true), even with zero probes.
	rec := httptest.NewRecorder()
	svc.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, svc.IsReady())

	svc.SetReady(true)
	rec = httptest.NewRecorder()
	svc.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.IsReady())

	// Shutdown closes the gate again.
	svc.SetReady(false)
	assert.False(t, svc.IsReady())
}

func TestIsReadyTracksProbes(t *testing.T) {
	var fail atomic.Bool
	svc := New()
	svc.AddReadinessCheck("db", time.Second, func(context.Context) error {
		if fail.Load() {
			return errors.New("down")
		}
		return nil
	})
	svc.SetReady(true)

	svc.readiness[0].run(context.Background())
	require.True(t, svc.IsReady())

	fail.Store(true)
	for i := 0; i < defaultFailureThreshold; i++ {
		svc.readiness[0].run(context.Background())
	}
	assert.False(t, svc.IsReady())
}

func TestStartRunsProbesImmediately(t *testing.T) {
	var calls atomic.Int32
	svc := New()
	svc.AddReadinessCheck("counter", time.Second, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	svc.Start(context.Background(), time.Hour)
	defer svc.Stop()

	assert.Eventually(t, func() bool {
		return calls.Load() >= 1
	}, time.Second, 10*time.Millisecond)
}

func TestPingCheck(t *testing.T) {
	ok := PingCheck(pingerFunc(func(context.Context) error { return nil }))
	assert.NoError(t, ok(context.Background()))

	bad := PingCheck(pingerFunc(func(context.Context) error { return errors.New("refused") }))
	assert.Error(t, bad(context.Background()))
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}
