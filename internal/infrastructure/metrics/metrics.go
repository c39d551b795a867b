package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/campuscoins/coinledger/internal/domain"
)

const namespace = "coinledger"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Coin flow metrics
	Earned        *prometheus.CounterVec
	Spent         *prometheus.CounterVec
	EntriesByKind *prometheus.CounterVec

	// Transfer metrics
	TransfersCompleted prometheus.Counter
	TransferAmount     prometheus.Histogram

	// Redemption metrics
	RedemptionsCompleted *prometheus.CounterVec
	RedemptionCost       prometheus.Histogram

	// Daily bonus metrics
	BonusClaims prometheus.Counter
	BonusStreak prometheus.Histogram

	// Operation metrics
	OperationDuration *prometheus.HistogramVec
	OperationErrors   *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	OutboxBacklog   prometheus.Gauge
}

// New creates and registers all metrics on the default registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates and registers all metrics on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Earned: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coins_earned_total",
			Help:      "Coins credited, by entry kind",
		}, []string{"kind"}),
		Spent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coins_spent_total",
			Help:      "Coins debited, by entry kind",
		}, []string{"kind"}),
		EntriesByKind: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_entries_total",
			Help:      "Ledger entries appended, by kind",
		}, []string{"kind"}),

		TransfersCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_completed_total",
			Help:      "Total number of completed transfers",
		}),
		TransferAmount: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transfer_amount_coins",
			Help:      "Transfer amounts in coins",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		}),

		RedemptionsCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redemptions_completed_total",
			Help:      "Completed redemptions, by offer",
		}, []string{"offer_id"}),
		RedemptionCost: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "redemption_cost_coins",
			Help:      "Total cost of redemptions in coins",
			Buckets:   []float64{10, 50, 100, 200, 500, 1000, 5000, 20000},
		}),

		BonusClaims: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "daily_bonus_claims_total",
			Help:      "Total number of daily bonus claims",
		}),
		BonusStreak: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "daily_bonus_streak_days",
			Help:      "Streak length at claim time",
			Buckets:   []float64{1, 2, 3, 5, 8, 14, 30, 60, 120, 365},
		}),

		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of ledger operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		OperationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Failed ledger operations, by operation and reason",
		}, []string{"operation", "reason"}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),

		RateLimitHits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}, []string{"path"}),

		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_published_total",
			Help:      "Outbox events published, by event type",
		}, []string{"event_type"}),
		OutboxBacklog: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outbox_backlog",
			Help:      "Unpublished events seen by the last relay poll",
		}),
	}
}

// CoinsEarned records a credit.
func (m *Metrics) CoinsEarned(kind domain.EntryKind, amount int64) {
	m.Earned.WithLabelValues(string(kind)).Add(float64(amount))
	m.EntriesByKind.WithLabelValues(string(kind)).Inc()
}

// CoinsSpent records a debit.
func (m *Metrics) CoinsSpent(kind domain.EntryKind, amount int64) {
	m.Spent.WithLabelValues(string(kind)).Add(float64(amount))
	m.EntriesByKind.WithLabelValues(string(kind)).Inc()
}

// TransferCompleted records a committed transfer.
func (m *Metrics) TransferCompleted(amount int64) {
	m.TransfersCompleted.Inc()
	m.TransferAmount.Observe(float64(amount))
	m.EntriesByKind.WithLabelValues(string(domain.KindTransferOut)).Inc()
	m.EntriesByKind.WithLabelValues(string(domain.KindTransferIn)).Inc()
}

// RedemptionCompleted records a committed redemption.
func (m *Metrics) RedemptionCompleted(offerID string, totalCost int64) {
	m.RedemptionsCompleted.WithLabelValues(offerID).Inc()
	m.RedemptionCost.Observe(float64(totalCost))
}

// BonusClaimed records a daily bonus claim.
func (m *Metrics) BonusClaimed(streak int) {
	m.BonusClaims.Inc()
	m.BonusStreak.Observe(float64(streak))
}

// OperationFailed counts a failed operation labelled with its error class.
func (m *Metrics) OperationFailed(operation string, err error) {
	m.OperationErrors.WithLabelValues(operation, Reason(err)).Inc()
}

// ObserveOperation records how long an operation took.
func (m *Metrics) ObserveOperation(operation string, d time.Duration) {
	m.OperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// Reason maps an error to a bounded label value.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidActivityKind), errors.Is(err, domain.ErrSelfTransfer):
		return "validation"
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrOfferNotFound), errors.Is(err, domain.ErrEntryNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrAlreadyClaimed), errors.Is(err, domain.ErrAlreadyClaimedToday):
		return "already_claimed"
	case errors.Is(err, domain.ErrAccountExists):
		return "exists"
	case errors.Is(err, domain.ErrOfferInactive):
		return "offer_inactive"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "conflict"
	default:
		return "storage"
	}
}

// EventPublished counts an event relayed from the outbox.
func (m *Metrics) EventPublished(eventType string) {
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// Backlog records how many unpublished events the relay saw.
func (m *Metrics) Backlog(n int) {
	m.OutboxBacklog.Set(float64(n))
}

// RateLimited counts a request rejected by the rate limiter.
func (m *Metrics) RateLimited(path string) {
	m.RateLimitHits.WithLabelValues(path).Inc()
}
