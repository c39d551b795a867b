package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/infrastructure/auth"
)

func execute(t *testing.T, srvURL string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if srvURL != "" {
		args = append([]string{"--url", srvURL}, args...)
	}
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1}); err != nil {
		t.Fatalf("printJSON: %v", err)
	}

	expected := "{\n  \"a\": 1\n}\n"
	if buf.String() != expected {
		t.Fatalf("unexpected json output:\n%s", buf.String())
	}
}

func TestConsistencyCmd(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		wantErr bool
		want    string
	}{
		{
			name:   "consistent",
			status: http.StatusOK,
			body:   `{"consistent":true,"total_balance":300,"total_entry_amount":300}`,
			want:   "PASSED",
		},
		{
			name:    "inconsistent",
			status:  http.StatusConflict,
			body:    `{"consistent":false,"difference":-10,"discrepancies":[{"account_id":"alice","recorded_balance":90,"entry_sum":100}]}`,
			wantErr: true,
			want:    "alice: recorded 90, entries 100",
		},
		{
			name:    "server error",
			status:  http.StatusServiceUnavailable,
			body:    `{"error":"storage unavailable"}`,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/v1/ledger/consistency" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			out, err := execute(t, srv.URL, "ledger", "consistency")
			if tc.wantErr != (err != nil) {
				t.Fatalf("unexpected error state: %v", err)
			}
			if !strings.Contains(out, tc.want) {
				t.Fatalf("expected %q in output, got %q", tc.want, out)
			}
		})
	}
}

func TestBalanceCmdSendsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"account_id":"alice","balance":70}`))
	}))
	defer srv.Close()

	out, err := execute(t, srv.URL, "--token", "abc", "balance", "alice")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !strings.Contains(out, `"balance": 70`) {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestLeaderboardCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("scope") != "campus-a" || r.URL.Query().Get("limit") != "2" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"data":[{"rank":1,"account_id":"bob","balance":180},{"rank":2,"account_id":"alice","balance":70}]}`))
	}))
	defer srv.Close()

	out, err := execute(t, srv.URL, "leaderboard", "--scope", "campus-a", "--limit", "2")
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "1") || !strings.Contains(lines[1], "bob") {
		t.Fatalf("unexpected table:\n%s", out)
	}
}

func TestTokenCmd(t *testing.T) {
	out, err := execute(t, "", "token", "ops", "--secret", "s3cret", "--role", "admin")
	if err != nil {
		t.Fatalf("token failed: %v", err)
	}

	claims, err := auth.NewJWTManager("s3cret", time.Hour).Verify(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("minted token does not verify: %v", err)
	}
	if claims.AccountID != "ops" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := execute(t, "", "token", "ops", "--secret", "s3cret", "--role", "root"); err == nil {
		t.Fatalf("expected unknown role to fail")
	}
}
