package healthcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubChecker reports a fixed status after an optional delay
type stubChecker struct {
	status Status
	delay  time.Duration
	calls  atomic.Int32
}

func (s *stubChecker) Check(ctx context.Context) Check {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Check{Status: StatusUnhealthy, Message: ctx.Err().Error()}
		}
	}
	return Check{Status: s.status, LastChecked: time.Now()}
}

func TestHealthCheck_NoCheckers(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())

	response := hc.Check(context.Background())

	assert.Equal(t, StatusHealthy, response.Status)
	assert.Equal(t, "1.0.0", response.Version)
	assert.Empty(t, response.Checks)
}

func TestHealthCheck_AggregatesWorstStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses map[string]Status
		want     Status
	}{
		{"all healthy", map[string]Status{"a": StatusHealthy, "b": StatusHealthy}, StatusHealthy},
		{"one degraded", map[string]Status{"a": StatusHealthy, "b": StatusDegraded}, StatusDegraded},
		{"unhealthy wins", map[string]Status{"a": StatusDegraded, "b": StatusUnhealthy, "c": StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := New("1.0.0", zap.NewNop())
			for name, status := range tt.statuses {
				hc.Register(name, &stubChecker{status: status})
			}

			response := hc.Check(context.Background())

			assert.Equal(t, tt.want, response.Status)
			require.Len(t, response.Checks, len(tt.statuses))
			for i := 1; i < len(response.Checks); i++ {
				assert.Less(t, response.Checks[i-1].Name, response.Checks[i].Name)
			}
		})
	}
}

func TestHealthCheck_RunsConcurrently(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	delay := 100 * time.Millisecond
	hc.Register("slow1", &stubChecker{status: StatusHealthy, delay: delay})
	hc.Register("slow2", &stubChecker{status: StatusHealthy, delay: delay})
	hc.Register("slow3", &stubChecker{status: StatusHealthy, delay: delay})

	start := time.Now()
	response := hc.Check(context.Background())

	assert.Equal(t, StatusHealthy, response.Status)
	assert.Less(t, time.Since(start), 3*delay)
}

func TestHealthCheck_Timeout(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	hc.SetTimeout(20 * time.Millisecond)
	hc.Register("stuck", &stubChecker{status: StatusHealthy, delay: time.Second})

	response := hc.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, response.Status)
}

func TestHealthCheck_Caching(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	checker := &stubChecker{status: StatusHealthy}
	hc.Register("test", checker)

	hc.Check(context.Background())
	hc.Check(context.Background())
	assert.Equal(t, int32(1), checker.calls.Load())

	hc.SetCacheTTL(0)
	hc.Check(context.Background())
	assert.Equal(t, int32(2), checker.calls.Load())
}

func TestHealthCheck_Handler(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		code   int
	}{
		{"healthy", StatusHealthy, http.StatusOK},
		{"degraded", StatusDegraded, http.StatusOK},
		{"unhealthy", StatusUnhealthy, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := New("1.0.0", zap.NewNop())
			hc.Register("test", &stubChecker{status: tt.status})

			rec := httptest.NewRecorder()
			hc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, string(tt.status), body["status"])
			assert.Contains(t, body, "total_duration_ms")
		})
	}
}

func TestExternalServiceChecker(t *testing.T) {
	tests := []struct {
		name string
		code int
		want Status
	}{
		{"success", http.StatusOK, StatusHealthy},
		{"client error", http.StatusNotFound, StatusDegraded},
		{"server error", http.StatusBadGateway, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer srv.Close()

			check := NewExternalServiceChecker(srv.URL, time.Second).Check(context.Background())

			assert.Equal(t, tt.want, check.Status)
			assert.Equal(t, tt.code, check.Metadata.(map[string]interface{})["status_code"])
		})
	}
}

func TestExternalServiceChecker_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	check := NewExternalServiceChecker(url, 100*time.Millisecond).Check(context.Background())

	assert.Equal(t, StatusUnhealthy, check.Status)
	assert.NotEmpty(t, check.Message)
}

func TestCustomChecker(t *testing.T) {
	checker := NewCustomChecker(func(ctx context.Context) (Status, string, interface{}) {
		return StatusDegraded, "slow", map[string]int{"n": 1}
	})

	check := checker.Check(context.Background())

	assert.Equal(t, StatusDegraded, check.Status)
	assert.Equal(t, "slow", check.Message)
	assert.Equal(t, map[string]int{"n": 1}, check.Metadata)
}
