package adminauth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cronforge/chronod/internal/config"
)

// operatorSubject is the fixed subject every admin token carries: there
// is exactly one operator role, not per-device identities.
const operatorSubject = "operator"

const tokenAudience = "chronod-admin"
const tokenIssuer = "chronod"

// DefaultTokenTTL is used by chronoctl's login helper when no explicit
// expiry is requested.
const DefaultTokenTTL = 12 * time.Hour

var (
	ErrTokenExpired = errors.New("admin token expired")
	ErrTokenInvalid = errors.New("admin token invalid")
)

type adminClaims struct {
	jwt.RegisteredClaims
}

// GenerateAdminToken mints a bearer token signed with cfg.AdminToken as
// the HMAC secret, valid for ttl. There is no pairing or refresh flow:
// an operator holding the secret can always mint a fresh token.
func GenerateAdminToken(cfg config.Config, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := adminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operatorSubject,
			Issuer:    tokenIssuer,
			Audience:  []string{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.AdminToken))
}

// VerifyAdminToken validates token against cfg.AdminToken.
func VerifyAdminToken(cfg config.Config, token string) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithAudience(tokenAudience),
		jwt.WithIssuer(tokenIssuer),
	)

	claims := &adminClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return []byte(cfg.AdminToken), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if parsed == nil || !parsed.Valid || claims.Subject != operatorSubject {
		return ErrTokenInvalid
	}
	return nil
}
