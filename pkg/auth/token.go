package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/meatshare/orderbook-backend/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// AdminClaims is the request-scoped identity minted into the session cookie.
// Admin status is a claim carried here, never ambient process state.
type AdminClaims struct {
	Phone string `json:"phone"`
	jwt.RegisteredClaims
}

// SessionID returns the token's jti, which keys the redis-side session.
func (c *AdminClaims) SessionID() string {
	return c.ID
}

// MintAdminToken issues a signed JWT for the admin phone. The jti doubles as
// the redis session key; the token TTL only bounds the cookie lifetime, the
// sliding idle expiry lives server-side.
func MintAdminToken(cfg config.SessionConfig, now time.Time, phone, sessionID string) (string, error) {
	if cfg.JWTSecret == "" {
		return "", fmt.Errorf("session jwt secret is required")
	}
	if cfg.JWTIssuer == "" {
		return "", fmt.Errorf("session jwt issuer is required")
	}
	if cfg.TokenTTL <= 0 {
		return "", fmt.Errorf("session token ttl must be positive")
	}
	if strings.TrimSpace(phone) == "" {
		return "", fmt.Errorf("admin phone is required")
	}

	jti := strings.TrimSpace(sessionID)
	if jti == "" {
		jti = uuid.NewString()
	}

	claims := AdminClaims{
		Phone: phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenTTL)),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseAdminToken validates the JWT string and returns typed claims.
func ParseAdminToken(cfg config.SessionConfig, tokenString string) (*AdminClaims, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("session jwt secret is required")
	}

	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.JWTIssuer),
	)
	if err != nil {
		return nil, err
	}

	return claims, nil
}
