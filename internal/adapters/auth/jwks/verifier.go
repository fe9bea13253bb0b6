package jwks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vet-practice-api/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenEmpty = errors.New("token is empty")
	ErrMissingKid = errors.New("token header has no kid")
)

type Config struct {
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// Verifier implementa auth.AuthVerifier validando JWT RS256 contra el JWKS.
type Verifier struct {
	keys   *Cache
	parser *jwt.Parser
	now    func() time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

func NewVerifier(keys *Cache, cfg Config) *Verifier {
	v := &Verifier{keys: keys, now: time.Now}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return v.now() }),
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}
	if iss := strings.TrimSpace(cfg.Issuer); iss != "" {
		opts = append(opts, jwt.WithIssuer(iss))
	}
	if aud := strings.TrimSpace(cfg.Audience); aud != "" {
		opts = append(opts, jwt.WithAudience(aud))
	}
	v.parser = jwt.NewParser(opts...)
	return v
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var c tokenClaims
	_, err := v.parser.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrMissingKid
		}
		return v.keys.Key(ctx, kid)
	})
	if err != nil {
		return auth.Claims{}, fmt.Errorf("jwt verify failed: %w", err)
	}

	sub := strings.TrimSpace(c.Subject)
	if sub == "" {
		return auth.Claims{}, errors.New("jwt claims missing subject")
	}
	return auth.Claims{
		UserID: sub,
		Email:  strings.TrimSpace(c.Email),
		Name:   strings.TrimSpace(c.Name),
	}, nil
}
