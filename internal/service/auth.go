package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminSubject = "admin"
	// bcrypt only looks at the first 72 bytes; longer passwords are refused
	// rather than silently truncated.
	maxPasswordBytes = 72
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// AccessToken is an issued admin bearer token.
type AccessToken struct {
	Token     string
	ExpiresIn time.Duration
}

type AuthService interface {
	Login(ctx context.Context, password string) (*AccessToken, error)
	// VerifyToken checks signature, expiry and subject of an admin token.
	VerifyToken(token string) error
}

type AuthServiceConfig struct {
	AdminPasswordHash string
	JWTSecret         string
	TTL               time.Duration
}

type authService struct {
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewAuthService(cfg AuthServiceConfig) AuthService {
	return &authService{
		passwordHash: []byte(cfg.AdminPasswordHash),
		secret:       []byte(cfg.JWTSecret),
		ttl:          cfg.TTL,
		now:          time.Now,
	}
}

func (s *authService) Login(_ context.Context, password string) (*AccessToken, error) {
	if len(password) > maxPasswordBytes {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}
	return &AccessToken{Token: signed, ExpiresIn: s.ttl}, nil
}

func (s *authService) VerifyToken(token string) error {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	if claims.Subject != adminSubject {
		return ErrInvalidToken
	}
	return nil
}
