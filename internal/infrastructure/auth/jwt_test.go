package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/infrastructure/auth"
)

func TestJWTManagerGenerateAndVerify(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)

	token, err := manager.Generate("alice", domain.RoleMember)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}

	if claims.AccountID != "alice" || claims.Role != domain.RoleMember || claims.Subject != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	p := claims.Principal()
	if !p.CanActOn("alice") || p.CanActOn("bob") {
		t.Fatalf("member principal should only act on its own account")
	}
}

func TestJWTManagerRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)

	if _, err := manager.Generate("alice", domain.Role("root")); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestJWTManagerVerifyErrors(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)
	expired := auth.NewJWTManager("super-secret", -time.Minute)
	other := auth.NewJWTManager("other-secret", time.Minute)

	expiredToken, err := expired.Generate("alice", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	foreignToken, err := other.Generate("alice", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{
		AccountID: "alice",
		Role:      domain.RoleAdmin,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build unsigned token: %v", err)
	}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", expiredToken, auth.ErrExpiredToken},
		{"wrong secret", foreignToken, auth.ErrInvalidToken},
		{"unsigned", noneToken, auth.ErrInvalidToken},
		{"garbage", "not-a-token", auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		if _, err := manager.Verify(tt.token); err != tt.want {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}
