// Package token issues and verifies the signed bearer tokens that carry an
// authenticated principal between requests.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/example/salon-scheduler/internal/application"
	"github.com/example/salon-scheduler/internal/domain"
)

const issuerName = "salon-scheduler"

var (
	// ErrInvalidToken is returned for malformed, forged or expired tokens.
	ErrInvalidToken = errors.New("token: invalid or expired")
	// ErrSecretRequired is returned when no signing secret is configured.
	ErrSecretRequired = errors.New("token: signing secret is required")
)

// Claims are the custom claims embedded in every token.
type Claims struct {
	Role        domain.Role `json:"role"`
	Username    string      `json:"username"`
	FirstName   string      `json:"first_name,omitempty"`
	LastName    string      `json:"last_name,omitempty"`
	PhoneNumber string      `json:"phone_number,omitempty"`
	jwt.RegisteredClaims
}

// Issued is a freshly signed token.
type Issued struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// Manager signs and verifies HS256 tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager returns a Manager. ttl defaults to 12 hours.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, ErrSecretRequired
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock overrides the time source used for issuing and expiry checks.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Issue signs a token for principal.
func (m *Manager) Issue(principal application.Principal) (Issued, error) {
	now := m.now()
	claims := Claims{
		Role:        principal.Role,
		Username:    principal.Username,
		FirstName:   principal.FirstName,
		LastName:    principal.LastName,
		PhoneNumber: principal.PhoneNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuerName,
			Subject:   strconv.FormatInt(principal.AccountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Issued{}, fmt.Errorf("token: sign: %w", err)
	}
	return Issued{Token: signed, ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify parses raw and returns the principal it was issued for.
func (m *Manager) Verify(raw string) (application.Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return application.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !claims.Role.Valid() {
		return application.Principal{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return application.Principal{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return application.Principal{
		Role:        claims.Role,
		AccountID:   id,
		Username:    claims.Username,
		FirstName:   claims.FirstName,
		LastName:    claims.LastName,
		PhoneNumber: claims.PhoneNumber,
	}, nil
}
