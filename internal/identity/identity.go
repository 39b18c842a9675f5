package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	applog "budgetly/internal/log"
)

// Claims is the authenticated caller's identity, extracted from the bearer
// token issued by the identity provider. UID is filled from the token's
// subject after verification.
type Claims struct {
	UID    string `json:"-"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"picture"`
	jwt.RegisteredClaims
}

type contextKey struct{}

// FromContext returns the claims attached by Middleware.
func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(contextKey{}).(*Claims)
	return c, ok
}

// WithClaims attaches claims to a context. Exported for handler tests.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// Verifier validates bearer tokens. With an empty secret it runs in dev mode
// and trusts X-User-ID / X-User-Name headers instead, so the API can be
// exercised locally without an identity provider.
type Verifier struct {
	secret []byte
	logger *applog.Logger
}

func NewVerifier(secret string, logger *applog.Logger) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		logger: logger.WithComponent(applog.ComponentIdentity),
	}
}

func (v *Verifier) DevMode() bool {
	return len(v.secret) == 0
}

// Parse validates a token string and returns its claims.
func (v *Verifier) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims.UID = claims.Subject
	if claims.UID == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}

// Middleware authenticates the request and attaches claims to its context.
// Unauthenticated requests get 401.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := v.authenticate(r)
		if err != nil {
			v.logger.WarnContext(r.Context(), "Authentication failed",
				applog.FieldError, err.Error(),
				applog.FieldPath, r.URL.Path)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func (v *Verifier) authenticate(r *http.Request) (*Claims, error) {
	if v.DevMode() {
		uid := r.Header.Get("X-User-ID")
		if uid == "" {
			return nil, fmt.Errorf("missing X-User-ID header")
		}
		return &Claims{
			UID:  uid,
			Name: r.Header.Get("X-User-Name"),
		}, nil
	}

	auth := r.Header.Get("Authorization")
	if auth == "" {
		return nil, fmt.Errorf("missing Authorization header")
	}
	tokenString, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return nil, fmt.Errorf("malformed Authorization header")
	}
	return v.Parse(tokenString)
}
