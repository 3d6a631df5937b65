package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/homebite/orderdesk/internal/platform/httpx"
)

const issuer = "orderdesk"

// Claims is the bearer token payload.
type Claims struct {
	SessionID string `json:"sessionId"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// ParseBearerToken extracts the token from an Authorization header value.
func ParseBearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func signToken(sess Session, secret []byte) (string, error) {
	claims := Claims{
		SessionID: sess.ID,
		Email:     sess.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   sess.Email,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func verifyToken(token string, secret []byte, now time.Time) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: %w", errTokenRequired, httpx.ErrUnauthorized)
	}
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}); err != nil {
		return nil, fmt.Errorf("invalid token: %v: %w", err, httpx.ErrUnauthorized)
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("invalid token: no session: %w", httpx.ErrUnauthorized)
	}
	return claims, nil
}
