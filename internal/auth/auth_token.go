package auth

import (
	"errors"
	"time"

	autherrors "go-leave/internal/auth/errors"
	"go-leave/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

const issuer = "go-leave"

type Claims struct {
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

func NewTokenManager(secret string, ttl time.Duration, clock clockwork.Clock) *TokenManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, clock: clock}
}

func (m *TokenManager) Issue(employeeID, role string) (string, time.Time, error) {
	now := m.clock.Now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		EmployeeID: employeeID,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   employeeID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken verifies tokenString and returns the identity it carries.
func (m *TokenManager) ParseToken(tokenString string) (domain.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.clock.Now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, autherrors.ErrTokenExpired
		}
		return domain.Identity{}, autherrors.ErrInvalidToken
	}
	if !token.Valid {
		return domain.Identity{}, autherrors.ErrInvalidToken
	}
	if claims.EmployeeID == "" || claims.Role == "" {
		return domain.Identity{}, autherrors.ErrInvalidClaims
	}

	return domain.Identity{EmployeeID: claims.EmployeeID, Role: claims.Role}, nil
}
