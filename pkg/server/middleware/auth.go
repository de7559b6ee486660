package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/daily-report/pkg/models/api"
	"github.com/de-tools/daily-report/pkg/models/domain"
)

var ErrMissingIdentity = errors.New("token carries no owner or role")

// Claims identifies the person filing reports. The subject is the owner key.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Name     string `json:"name,omitempty"`
	Depot    string `json:"depot,omitempty"`
	jwt.RegisteredClaims
}

func (c Claims) Identity() domain.Identity {
	owner := c.Subject
	if owner == "" {
		owner = c.Username
	}
	return domain.Identity{Owner: owner, Role: c.Role, Name: c.Name, Depot: c.Depot}
}

// GenerateToken signs an HS256 token for identity valid for ttl.
func GenerateToken(secret string, identity domain.Identity, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		Username: identity.Owner,
		Role:     identity.Role,
		Name:     identity.Name,
		Depot:    identity.Depot,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Owner,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken validates tokenString and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	id := claims.Identity()
	if id.Owner == "" || id.Role == "" {
		return nil, ErrMissingIdentity
	}
	return claims, nil
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok
}

// Auth rejects requests without a valid bearer token and stores the caller's
// identity in the request context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			header := req.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "authorization header required")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, "invalid authorization header format")
				return
			}

			claims, err := ParseToken(secret, strings.TrimSpace(parts[1]))
			if err != nil {
				zerolog.Ctx(req.Context()).Debug().Err(err).Msg("rejected token")
				unauthorized(w, "invalid or expired token")
				return
			}

			id := claims.Identity()
			logger := zerolog.Ctx(req.Context()).With().
				Str("owner", id.Owner).
				Str("role", id.Role).
				Logger()
			ctx := WithIdentity(logger.WithContext(req.Context()), id)

			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(api.Error{Error: msg})
}
