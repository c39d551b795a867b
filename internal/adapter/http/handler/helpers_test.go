package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/campuscoins/coinledger/internal/adapter/http/dto"
	"github.com/campuscoins/coinledger/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/leaderboard?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/leaderboard?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestParseTimeQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?date_from=2024-03-04&date_to=2024-03-05T12:00:00Z&bad=yesterday", nil)

	from, err := parseTimeQuery(req, "date_from")
	if err != nil || from == nil || from.Day() != 4 {
		t.Fatalf("unexpected date_from %v err=%v", from, err)
	}

	to, err := parseTimeQuery(req, "date_to")
	if err != nil || to == nil || to.Hour() != 12 {
		t.Fatalf("unexpected date_to %v err=%v", to, err)
	}

	if missing, err := parseTimeQuery(req, "missing"); err != nil || missing != nil {
		t.Fatalf("expected nil for missing parameter")
	}

	if _, err := parseTimeQuery(req, "bad"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", fmt.Errorf("%w: amount", domain.ErrValidation), http.StatusBadRequest},
		{"invalid activity", domain.ErrInvalidActivityKind, http.StatusBadRequest},
		{"self transfer", domain.ErrSelfTransfer, http.StatusBadRequest},
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"entry not found", domain.ErrEntryNotFound, http.StatusNotFound},
		{"offer not found", domain.ErrOfferNotFound, http.StatusNotFound},
		{"exists", domain.ErrAccountExists, http.StatusConflict},
		{"already claimed", domain.ErrAlreadyClaimed, http.StatusConflict},
		{"claimed today", domain.ErrAlreadyClaimedToday, http.StatusConflict},
		{"conflict", domain.ErrConcurrencyConflict, http.StatusConflict},
		{"insufficient", &domain.InsufficientBalanceError{Required: 10, Available: 5}, http.StatusUnprocessableEntity},
		{"inactive offer", domain.ErrOfferInactive, http.StatusGone},
		{"storage", fmt.Errorf("earn: %w", domain.ErrStorageUnavailable), http.StatusServiceUnavailable},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteDomainError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", nil)

	rr := httptest.NewRecorder()
	writeDomainError(rr, req, "redeem failed", &domain.InsufficientBalanceError{AccountID: "alice", Required: 100, Available: 70})

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if rr.Code != http.StatusUnprocessableEntity || resp.Required == nil || *resp.Required != 100 || *resp.Available != 70 {
		t.Fatalf("unexpected insufficient balance response %d %+v", rr.Code, resp)
	}

	rr = httptest.NewRecorder()
	writeDomainError(rr, req, "earn failed", domain.ErrConcurrencyConflict)
	if rr.Code != http.StatusConflict || rr.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected 409 with Retry-After, got %d %v", rr.Code, rr.Header())
	}

	rr = httptest.NewRecorder()
	writeDomainError(rr, req, "earn failed", errors.New("pq: connection refused to 10.0.0.5"))
	if rr.Code != http.StatusInternalServerError || strings.Contains(rr.Body.String(), "10.0.0.5") {
		t.Fatalf("expected internal details to be hidden, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %s", ct)
	}
}

func TestDecodeRequest(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"recipient_id":"bob","amount":0}`))

	var body dto.TransferRequest
	if err := decodeRequest(rr, req, &body); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{not json`))
	if err := decodeRequest(rr, req, &body); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for malformed JSON, got %v", err)
	}
}
