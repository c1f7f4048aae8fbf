package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dragonmail/dragonmail/internal/config"
	"github.com/dragonmail/dragonmail/internal/model"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple", nil)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Fatal("correct password rejected")
	}

	ok, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword wrong: %v", err)
	}
	if ok {
		t.Fatal("wrong password accepted")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same", nil)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	b, err := HashPassword("same", nil)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	if _, err := VerifyPassword("x", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
	if _, err := VerifyPassword("x", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA"); err == nil {
		t.Fatal("expected error for unsupported algorithm")
	}
}

func newTokenService(t *testing.T, ttl time.Duration) *TokenService {
	t.Helper()
	svc, err := NewTokenService(config.TokenConfig{
		Secret:         "test-secret",
		AccessTokenTTL: ttl,
		Issuer:         "dragonmail",
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func TestTokenService_GenerateValidate(t *testing.T) {
	t.Parallel()
	svc := newTokenService(t, time.Hour)

	session, err := svc.Generate(&model.User{Username: "alice", Role: model.RoleAdmin})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if session.TokenType != "Bearer" || session.ExpiresIn != 3600 {
		t.Fatalf("unexpected session metadata: %+v", session)
	}

	claims, err := svc.Validate(session.AccessToken)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Username != "alice" || claims.Role != model.RoleAdmin {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokenService_RejectsExpired(t *testing.T) {
	t.Parallel()
	svc := newTokenService(t, -time.Minute)

	session, err := svc.Generate(&model.User{Username: "alice", Role: model.RoleUser})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := svc.Validate(session.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Validate expired = %v, want ErrInvalidToken", err)
	}
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	t.Parallel()

	session, err := newTokenService(t, time.Hour).Generate(&model.User{Username: "alice", Role: model.RoleUser})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	other, err := NewTokenService(config.TokenConfig{Secret: "other", AccessTokenTTL: time.Hour, Issuer: "dragonmail"})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	if _, err := other.Validate(session.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Validate with wrong secret = %v, want ErrInvalidToken", err)
	}
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenService(config.TokenConfig{}); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
