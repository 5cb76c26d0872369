// Package gateway is the access-control choke point: every protected
// operation passes through Authenticate, which consults the throttle,
// verifies the presented token and resolves the subject to an account.
package gateway

import (
	"context"
	"errors"
	"strings"

	"studentdocs.org/internal/audit"
	"studentdocs.org/internal/auth"
	"studentdocs.org/internal/obs"
	"studentdocs.org/internal/throttle"
)

var (
	// ErrTooManyAttempts means the client address is inside a block window.
	ErrTooManyAttempts = errors.New("gateway: too many failed attempts")
	// ErrUnauthenticated covers every credential failure: missing header,
	// malformed or expired token, unknown subject. Clients get one generic
	// failure; the distinction only reaches logs and metrics.
	ErrUnauthenticated = errors.New("gateway: unauthenticated")
)

const bearerPrefix = "Bearer "

// Gateway binds the throttle and the credential store together. Both are
// injected; the gateway holds no ambient state of its own.
type Gateway struct {
	users   auth.Store
	limiter *throttle.Limiter
}

func New(users auth.Store, limiter *throttle.Limiter) *Gateway {
	return &Gateway{users: users, limiter: limiter}
}

// Blocked reports whether the address is currently throttled. Exposed for the
// login path, which authenticates by password rather than token but must
// short-circuit blocked addresses the same way.
func (g *Gateway) Blocked(addr string) bool {
	return g.limiter.IsBlocked(addr)
}

// Limiter returns the shared failure limiter so that other abuse signals
// (failed logins, cross-owner probes) feed the same counters.
func (g *Gateway) Limiter() *throttle.Limiter {
	return g.limiter
}

// Authenticate validates a bearer credential presented from clientAddr and
// returns the resolved account. The throttle check runs first and spends no
// cryptographic effort on blocked addresses. Every failure path increments
// the address failure counter; success resets it.
func (g *Gateway) Authenticate(ctx context.Context, clientAddr, authorization string) (*auth.User, error) {
	if g.limiter.IsBlocked(clientAddr) {
		obs.CountAuthFailure("blocked")
		_ = audit.LogEvent(ctx, "auth.blocked_address.attempt", map[string]any{
			"address": clientAddr,
		})
		return nil, ErrTooManyAttempts
	}

	token, err := extractBearerToken(authorization)
	if err != nil {
		g.limiter.RecordFailure(ctx, clientAddr)
		obs.CountAuthFailure("missing_token")
		return nil, ErrUnauthenticated
	}

	claims, err := auth.ParseAndValidate(token)
	if err != nil {
		g.limiter.RecordFailure(ctx, clientAddr)
		if errors.Is(err, auth.ErrTokenExpired) {
			obs.CountAuthFailure("token_expired")
		} else {
			obs.CountAuthFailure("token_invalid")
		}
		return nil, ErrUnauthenticated
	}

	user, err := g.users.Find(ctx, claims.Subject)
	if err != nil {
		// Account deleted after token issuance, or a forged subject.
		g.limiter.RecordFailure(ctx, clientAddr)
		obs.CountAuthFailure("unknown_subject")
		return nil, ErrUnauthenticated
	}

	g.limiter.RecordSuccess(clientAddr)
	return user, nil
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearerPrefix)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
