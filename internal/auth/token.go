package auth

import (
	"errors"
	"time"

	autherrors "go-hrms/internal/auth/errors"
	"go-hrms/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
	expire time.Duration
	now    func() time.Time
}

func NewTokenManager(cfg config.JWTConfig) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.Secret),
		expire: cfg.Expire,
		now:    time.Now,
	}
}

func (m *TokenManager) Issue(employeeID uuid.UUID) (string, error) {
	now := m.now()
	claims := Claims{
		ID: employeeID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   employeeID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expire)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", autherrors.ErrTokenGenerationFailed
	}
	return signed, nil
}

func (m *TokenManager) Verify(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, autherrors.ErrTokenExpired
		}
		return uuid.Nil, autherrors.ErrInvalidToken
	}
	if !token.Valid {
		return uuid.Nil, autherrors.ErrInvalidToken
	}

	subject := claims.Subject
	if subject == "" {
		subject = claims.ID
	}
	id, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, autherrors.ErrInvalidToken
	}
	return id, nil
}
