package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type healthBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func passing(context.Context) error { return nil }

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func serve(t *testing.T, handler http.HandlerFunc) (int, healthBody) {
	t.Helper()
	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body healthBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return w.Code, body
}

func runN(c *check, n int) {
	for range n {
		c.run(context.Background())
	}
}

func TestLiveEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		fn         CheckFunc
		runs       int
		wantStatus int
		wantChecks map[string]string
	}{
		{name: "healthy before first run", fn: failing("down"), runs: 0, wantStatus: http.StatusOK},
		{name: "passing", fn: passing, runs: 3, wantStatus: http.StatusOK},
		{name: "failures below threshold", fn: failing("temporary"), runs: 2, wantStatus: http.StatusOK},
		{
			name:       "failures at threshold",
			fn:         failing("connection refused"),
			runs:       3,
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"postgres": "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New()
			h.AddLivenessCheck("postgres", tt.fn)
			runN(h.liveness[0], tt.runs)

			code, body := serve(t, h.LiveEndpoint)
			assert.Equal(t, tt.wantStatus, code)
			if tt.wantChecks == nil {
				assert.Equal(t, "ok", body.Status)
				assert.Empty(t, body.Checks)
				return
			}
			assert.Equal(t, "unhealthy", body.Status)
			assert.Equal(t, tt.wantChecks, body.Checks)
		})
	}
}

func TestReadyEndpoint(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", passing)
	h.AddReadinessCheck("mongo", failing("server selection timeout"))

	code, body := serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, map[string]string{"_readiness": "service is not ready"}, body.Checks)

	h.SetReady(true)
	code, _ = serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, code)

	runN(h.readiness[1], 3)
	code, body = serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, map[string]string{"mongo": "server selection timeout"}, body.Checks)

	h.SetReady(false)
	assert.False(t, h.IsReady())
}

func TestIsReady(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", passing)

	assert.False(t, h.IsReady())
	h.SetReady(true)
	assert.True(t, h.IsReady())
	h.SetReady(false)
	assert.False(t, h.IsReady())
}

func TestThresholds(t *testing.T) {
	down := true
	h := New()
	h.AddLivenessCheck("flaky", func(context.Context) error {
		if down {
			return errors.New("down")
		}
		return nil
	}, WithThresholds(1, 2))
	c := h.liveness[0]

	runN(c, 1)
	assert.False(t, c.healthy.Load(), "one failure is enough")

	down = false
	runN(c, 1)
	assert.False(t, c.healthy.Load(), "needs two successes")
	runN(c, 1)
	assert.True(t, c.healthy.Load())
}

func TestWithTimeout(t *testing.T) {
	h := New()
	h.AddReadinessCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, WithTimeout(10*time.Millisecond), WithThresholds(1, 1))

	runN(h.readiness[0], 1)
	msg, failed := h.readiness[0].failure()
	assert.True(t, failed)
	assert.Contains(t, msg, "deadline exceeded")
}

func TestStartStop(t *testing.T) {
	var (
		mu   sync.Mutex
		runs int
	)
	h := New()
	h.AddLivenessCheck("count", func(context.Context) error {
		mu.Lock()
		runs++
		mu.Unlock()
		return nil
	})

	h.Start(context.Background(), 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return runs >= 2
	}, time.Second, 5*time.Millisecond)

	h.Stop()
	h.Stop()
}

func TestConcurrentAccess(t *testing.T) {
	h := New()
	h.AddLivenessCheck("live", failing("err"))
	h.AddReadinessCheck("ready", passing)
	h.SetReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Start(ctx, time.Millisecond)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				h.IsReady()
				h.LiveEndpoint(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/livez", nil))
				h.ReadyEndpoint(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/readyz", nil))
			}
		}()
	}
	wg.Wait()
	h.Stop()
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestPingCheck(t *testing.T) {
	assert.NoError(t, PingCheck(fakePinger{})(context.Background()))

	err := PingCheck(fakePinger{err: errors.New("refused")})(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))

	err := GoroutineCountCheck(0)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds threshold")
}

func TestGCMaxPauseCheck(t *testing.T) {
	assert.NoError(t, GCMaxPauseCheck(time.Hour)(context.Background()))
}
