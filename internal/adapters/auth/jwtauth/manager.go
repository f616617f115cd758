package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"patitas-a-casa/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotConfigured = errors.New("jwt manager not configured")
	ErrTokenEmpty    = errors.New("token is empty")
	ErrTokenInvalid  = errors.New("token is invalid")
)

const defaultIssuer = "patitas-a-casa"

// Config del emisor/verificador HS256.
type Config struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// Manager implementa auth.AuthVerifier y auth.TokenIssuer con JWT firmados HS256.
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type tokenClaims struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func NewManager(cfg Config) *Manager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	iss := strings.TrimSpace(cfg.Issuer)
	if iss == "" {
		iss = defaultIssuer
	}
	return &Manager{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		issuer: iss,
		now:    time.Now,
	}
}

func (m *Manager) IsConfigured() bool {
	return m != nil && len(m.secret) > 0
}

func (m *Manager) Issue(ctx context.Context, c auth.Claims) (string, error) {
	_ = ctx
	if !m.IsConfigured() {
		return "", ErrNotConfigured
	}
	uid := strings.TrimSpace(c.UserID)
	if uid == "" {
		return "", errors.New("claims missing user id")
	}

	now := m.now().UTC()
	tc := tokenClaims{
		Username: c.Username,
		Email:    c.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *Manager) Verify(ctx context.Context, token string) (auth.Claims, error) {
	_ = ctx
	if !m.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var tc tokenClaims
	_, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	uid := strings.TrimSpace(tc.Subject)
	if uid == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	out := auth.Claims{UserID: uid, Username: tc.Username, Email: tc.Email}
	if tc.ExpiresAt != nil {
		out.ExpiresAt = tc.ExpiresAt.Time
	}
	return out, nil
}
