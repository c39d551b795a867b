package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type countingObserver struct {
	paths []string
}

func (o *countingObserver) RateLimited(path string) {
	o.paths = append(o.paths, path)
}

func TestRateLimiter_RejectsAfterBurst(t *testing.T) {
	obs := &countingObserver{}
	rl := NewRateLimiter(0.001, 2).WithObserver(obs)

	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for iter := 0; iter < 3; iter++ {
		req := httptest.NewRequest(http.MethodPost, "/earn", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
	if len(obs.paths) != 1 {
		t.Fatalf("expected one observed rejection, got %d", len(obs.paths))
	}

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/earn", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected second client to pass, got %d", rr.Code)
	}
}

func TestRateLimiter_CleanupIdle(t *testing.T) {
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(10, 10)
	rl.now = func() time.Time { return now }

	rl.getLimiter("10.0.0.1")
	now = now.Add(5 * time.Minute)
	rl.getLimiter("10.0.0.2")

	if removed := rl.CleanupIdle(time.Minute); removed != 1 {
		t.Fatalf("expected one idle limiter removed, got %d", removed)
	}
	if _, ok := rl.visitors["10.0.0.2"]; !ok {
		t.Fatalf("active limiter must be kept")
	}
}
