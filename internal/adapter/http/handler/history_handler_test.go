package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/usecase"
)

type historyServiceStub struct {
	lastInput usecase.TransactionsInput
	entry     *domain.LedgerEntry
	err       error
}

func (s *historyServiceStub) GetTransactions(_ context.Context, input usecase.TransactionsInput) (*usecase.EntryPage, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &usecase.EntryPage{Page: input.Page, Limit: input.Limit, TotalPages: 1}, nil
}

func (s *historyServiceStub) GetTransaction(_ context.Context, _ string, _ int64) (*domain.LedgerEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.entry, nil
}

func (s *historyServiceStub) GetRedemptions(_ context.Context, _ string, page, limit int) (*usecase.EntryPage, error) {
	return &usecase.EntryPage{Page: page, Limit: limit}, s.err
}

func TestHistoryHandler_TransactionsParsesQuery(t *testing.T) {
	stub := &historyServiceStub{}
	h := NewHistoryHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/accounts/alice/transactions?kind=transfer_out&page=2&limit=5&date_from=2024-03-01&date_to=2024-03-04T23:59:59Z", nil)
	rec := httptest.NewRecorder()
	h.Transactions(rec, withURLParams(req, map[string]string{"id": "alice"}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "alice", stub.lastInput.AccountID)
	assert.Equal(t, "transfer_out", stub.lastInput.Kind)
	assert.Equal(t, 2, stub.lastInput.Page)
	assert.Equal(t, 5, stub.lastInput.Limit)
	require.NotNil(t, stub.lastInput.DateFrom)
	assert.True(t, stub.lastInput.DateFrom.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, stub.lastInput.DateTo)
}

func TestHistoryHandler_BadDate(t *testing.T) {
	h := NewHistoryHandler(&historyServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/accounts/alice/transactions?date_from=yesterday", nil)
	rec := httptest.NewRecorder()
	h.Transactions(rec, withURLParams(req, map[string]string{"id": "alice"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryHandler_Transaction(t *testing.T) {
	testCases := []struct {
		name    string
		entryID string
		err     error
		want    int
	}{
		{name: "found", entryID: "7", want: http.StatusOK},
		{name: "non numeric id", entryID: "abc", want: http.StatusBadRequest},
		{name: "missing", entryID: "8", err: domain.ErrEntryNotFound, want: http.StatusNotFound},
		{name: "storage down", entryID: "9", err: domain.ErrStorageUnavailable, want: http.StatusServiceUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHistoryHandler(&historyServiceStub{
				entry: &domain.LedgerEntry{ID: 7, AccountID: "alice", Amount: 50, Kind: domain.KindEventCreate},
				err:   tc.err,
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			h.Transaction(rec, withURLParams(req, map[string]string{"id": "alice", "entryID": tc.entryID}))

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

type reconciliationStub struct {
	report *usecase.ConsistencyReport
	err    error
}

func (s *reconciliationStub) CheckLedgerConsistency(context.Context) (*usecase.ConsistencyReport, error) {
	return s.report, s.err
}

func (s *reconciliationStub) ReconcileAccount(_ context.Context, accountID string) (*usecase.ReconciliationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &usecase.ReconciliationResult{AccountID: accountID, IsReconciled: true}, nil
}

func TestLedgerHandler_CheckConsistency(t *testing.T) {
	testCases := []struct {
		name   string
		report *usecase.ConsistencyReport
		err    error
		want   int
	}{
		{name: "consistent", report: &usecase.ConsistencyReport{Consistent: true}, want: http.StatusOK},
		{
			name: "drift",
			report: &usecase.ConsistencyReport{
				Difference:    -10,
				Discrepancies: []domain.BalanceDiscrepancy{{AccountID: "alice", RecordedBalance: 90, EntrySum: 100}},
			},
			want: http.StatusConflict,
		},
		{name: "unexpected error", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewLedgerHandler(&reconciliationStub{report: tc.report, err: tc.err})

			rec := httptest.NewRecorder()
			h.CheckConsistency(rec, httptest.NewRequest(http.MethodGet, "/ledger/consistency", nil))

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	healthy := NewHealthHandler(map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
	})
	rec := httptest.NewRecorder()
	healthy.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"postgres":"ok"`)

	failing := NewHealthHandler(map[string]HealthCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	rec = httptest.NewRecorder()
	failing.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	failing.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
