package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTypeRefresh marks refresh tokens; access tokens carry no type claim.
const TokenTypeRefresh = "refresh"

const (
	defaultAccessTTL  = 30 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// ErrInvalidToken is returned for any token that is malformed, badly signed or expired.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the subject a token pair is minted for.
type Identity struct {
	UserID uint
	Email  string
	Roles  []string
}

// Claims represents JWT claims for authenticated requests.
type Claims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	Type  string   `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// UserID decodes the numeric user id carried in sub.
func (c *Claims) UserID() (uint, error) {
	if c == nil {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return uint(id), nil
}

// IsRefresh reports whether the claims belong to a refresh token.
func (c *Claims) IsRefresh() bool {
	return c != nil && c.Type == TokenTypeRefresh
}

// Manager encapsulates JWT generation and validation.
type Manager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewManager creates a new JWT manager.
func NewManager(secret, issuer string, accessTTL, refreshTTL time.Duration) (*Manager, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	if strings.TrimSpace(issuer) == "" {
		issuer = "blog"
	}
	return &Manager{
		secret:     []byte(trimmed),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// AccessTTL returns the default access token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

// CreateAccessToken issues a signed access token. A non-positive ttl uses the configured default.
func (m *Manager) CreateAccessToken(identity Identity, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = m.accessTTL
	}
	return m.sign(identity, ttl, "")
}

// CreateRefreshToken issues a signed refresh token with the fixed refresh lifetime.
func (m *Manager) CreateRefreshToken(identity Identity) (string, time.Time, error) {
	return m.sign(identity, m.refreshTTL, TokenTypeRefresh)
}

func (m *Manager) sign(identity Identity, ttl time.Duration, tokenType string) (string, time.Time, error) {
	if m == nil {
		return "", time.Time{}, errors.New("jwt manager is nil")
	}
	if identity.UserID == 0 {
		return "", time.Time{}, errors.New("invalid identity for token generation")
	}
	now := m.now()
	expiry := now.Add(ttl)

	roles := identity.Roles
	if roles == nil {
		roles = []string{}
	}

	claims := Claims{
		Email: identity.Email,
		Roles: roles,
		Type:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(identity.UserID), 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}

// VerifyToken validates signature, issuer and expiry and returns the decoded claims.
// Every failure is reported as ErrInvalidToken.
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	if m == nil {
		return nil, errors.New("jwt manager is nil")
	}
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrInvalidToken
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
