package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	a, err := New("Admin@Campus.edu", string(hash), "signing-key", time.Hour)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return a
}

func TestLoginAndVerify(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	token, expires, err := a.Login(ctx, " admin@campus.edu ", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if time.Until(expires) <= 59*time.Minute {
		t.Fatalf("unexpected expiry %v", expires)
	}

	subject, err := a.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject != "admin@campus.edu" {
		t.Fatalf("unexpected subject %q", subject)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "admin@campus.edu", "nope"},
		{"wrong email", "other@campus.edu", "s3cret"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := a.Login(ctx, tt.email, tt.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	a := newTestAuthenticator(t)
	issued := time.Now().Add(-2 * time.Hour)
	a.now = func() time.Time { return issued }
	token, _, err := a.Login(context.Background(), "admin@campus.edu", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	a.now = time.Now
	if _, err := a.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	a := newTestAuthenticator(t)

	t.Run("other secret", func(t *testing.T) {
		other, err := New("admin@campus.edu", string(a.passwordHash), "different-key", time.Hour)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		token, _, err := other.Login(context.Background(), "admin@campus.edu", "s3cret")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if _, err := a.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("non-admin role", func(t *testing.T) {
		claims := Claims{
			Role: "student",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if _, err := a.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := a.Verify("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New("a@b.io", "", "", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := New("a@b.io", "", "k", 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
