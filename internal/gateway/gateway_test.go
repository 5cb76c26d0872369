package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"studentdocs.org/internal/auth"
	"studentdocs.org/internal/throttle"
)

const testAddr = "192.0.2.10"

func newTestGateway(t *testing.T) (*Gateway, *auth.User, *throttle.Limiter) {
	t.Helper()
	t.Setenv("STUDENTDOCS_AUTH_SECRET", "test-secret")
	auth.ResetSecretForTests()
	t.Cleanup(auth.ResetSecretForTests)

	store := auth.NewMemoryStore()
	user := &auth.User{Email: "test@student.com", PasswordHash: "hash"}
	if err := store.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	limiter := throttle.New(10, time.Minute)
	return New(store, limiter), user, limiter
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return "Bearer " + token
}

func TestAuthenticateSuccess(t *testing.T) {
	gw, user, limiter := newTestGateway(t)
	ctx := context.Background()

	// Prior failures must be reset by a successful authentication.
	limiter.RecordFailure(ctx, testAddr)
	limiter.RecordFailure(ctx, testAddr)

	got, err := gw.Authenticate(ctx, testAddr, bearerFor(t, user.ID))
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("resolved wrong user: %s", got.ID)
	}
	if n := limiter.Failures(testAddr); n != 0 {
		t.Fatalf("expected failure counter reset, got %d", n)
	}
}

func TestAuthenticateMissingHeader(t *testing.T) {
	gw, _, limiter := newTestGateway(t)

	cases := []string{"", "Basic abc", "Bearer ", "bearer"}
	for i, header := range cases {
		_, err := gw.Authenticate(context.Background(), testAddr, header)
		if !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("header %q: expected ErrUnauthenticated, got %v", header, err)
		}
		if n := limiter.Failures(testAddr); n != i+1 {
			t.Fatalf("expected %d recorded failures, got %d", i+1, n)
		}
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	gw, _, limiter := newTestGateway(t)

	_, err := gw.Authenticate(context.Background(), testAddr, "Bearer not.a.token")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if n := limiter.Failures(testAddr); n != 1 {
		t.Fatalf("expected exactly one failure, got %d", n)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	gw, user, _ := newTestGateway(t)

	past := time.Now().UTC().Add(-2 * time.Hour)
	claims := jwt.RegisteredClaims{
		Issuer:    "studentdocs",
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(past),
		ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := gw.Authenticate(context.Background(), testAddr, "Bearer "+signed); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthenticateUnknownSubject(t *testing.T) {
	gw, _, limiter := newTestGateway(t)

	// Valid signature, but the account no longer exists.
	_, err := gw.Authenticate(context.Background(), testAddr, bearerFor(t, "ghost-user"))
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if n := limiter.Failures(testAddr); n != 1 {
		t.Fatalf("expected one failure, got %d", n)
	}
}

func TestAuthenticateBlockedShortCircuits(t *testing.T) {
	gw, user, limiter := newTestGateway(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		limiter.RecordFailure(ctx, testAddr)
	}

	// Even a perfectly valid token is rejected while the block is active.
	_, err := gw.Authenticate(ctx, testAddr, bearerFor(t, user.ID))
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if !gw.Blocked(testAddr) {
		t.Fatal("expected address to stay blocked")
	}
}
