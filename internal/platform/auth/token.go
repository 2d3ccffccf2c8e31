package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds the HS256 signing parameters shared by the API and the dev
// token minter.
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Claims carries only the registered claim set; the subject is the identity.
type Claims struct {
	jwt.RegisteredClaims
}

// MintToken signs an HS256 token for the given subject.
func MintToken(cfg Config, subject string, now time.Time) (string, error) {
	if cfg.Secret == "" {
		return "", errors.New("empty jwt secret")
	}
	if subject == "" {
		return "", errors.New("empty subject")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}

// Verifier validates bearer tokens and extracts the subject.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(cfg Config) *Verifier {
	return &Verifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

// Verify checks the signature and standard claims and returns the subject.
func (v *Verifier) Verify(ctx context.Context, raw string) (string, error) {
	_ = ctx
	if len(v.secret) == 0 {
		return "", errors.New("verifier has no secret configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenUnverifiable
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}
