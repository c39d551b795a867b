package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/usecase"
)

var _ usecase.MetricsRecorder = (*Metrics)(nil)

func TestNewWithRegistryRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewWithRegistry(registry)

	if m.Earned == nil || m.HTTPRequests == nil || m.OperationDuration == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.HTTPInFlight.Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestRecorderMethods(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.CoinsEarned(domain.KindMessageSend, 1)
	m.CoinsEarned(domain.KindMessageSend, 1)
	m.CoinsSpent(domain.KindRedemption, 50)
	m.TransferCompleted(30)
	m.RedemptionCompleted("1", 50)
	m.BonusClaimed(3)
	m.OperationFailed("transfer", domain.ErrSelfTransfer)
	m.ObserveOperation("earn", 5*time.Millisecond)

	if got := testutil.ToFloat64(m.Earned.WithLabelValues("message_send")); got != 2 {
		t.Fatalf("expected 2 coins earned, got %v", got)
	}

	if got := testutil.ToFloat64(m.Spent.WithLabelValues("redemption")); got != 50 {
		t.Fatalf("expected 50 coins spent, got %v", got)
	}

	if got := testutil.ToFloat64(m.TransfersCompleted); got != 1 {
		t.Fatalf("expected one transfer, got %v", got)
	}

	if got := testutil.ToFloat64(m.RedemptionsCompleted.WithLabelValues("1")); got != 1 {
		t.Fatalf("expected one redemption, got %v", got)
	}

	if got := testutil.ToFloat64(m.BonusClaims); got != 1 {
		t.Fatalf("expected one bonus claim, got %v", got)
	}

	if got := testutil.ToFloat64(m.OperationErrors.WithLabelValues("transfer", "validation")); got != 1 {
		t.Fatalf("expected one validation failure, got %v", got)
	}
}

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{fmt.Errorf("%w: amount", domain.ErrValidation), "validation"},
		{domain.ErrAccountNotFound, "not_found"},
		{&domain.InsufficientBalanceError{Required: 10, Available: 5}, "insufficient_balance"},
		{domain.ErrAlreadyClaimedToday, "already_claimed"},
		{domain.ErrAccountExists, "exists"},
		{domain.ErrOfferInactive, "offer_inactive"},
		{domain.ErrConcurrencyConflict, "conflict"},
		{errors.New("boom"), "storage"},
	}

	for _, tt := range tests {
		if got := Reason(tt.err); got != tt.want {
			t.Fatalf("Reason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
