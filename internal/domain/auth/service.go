package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Tokens is an issued access/refresh token pair.
type Tokens struct {
	Access  string
	Refresh string
}

// Identity is the verified subject of a request, extracted from an access token.
type Identity struct {
	UserID string
	Role   Role
}

type claims struct {
	jwt.RegisteredClaims
	Role      Role   `json:"role"`
	TokenType string `json:"typ"`
}

// Service issues and verifies JWT token pairs and checks credentials.
type Service struct {
	users      Repository
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewService creates an auth Service signing tokens with the given HS256 secret.
func NewService(users Repository, secret []byte, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		users:      users,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Login verifies the email/password pair and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*Tokens, *User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issue(u)
	if err != nil {
		return nil, nil, err
	}
	return tokens, u, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair. The user is
// re-read so role changes take effect on rotation.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	c, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, c.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return s.issue(u)
}

// Verify validates an access token and returns the caller's identity.
func (s *Service) Verify(accessToken string) (*Identity, error) {
	c, err := s.parse(accessToken, tokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: c.Subject, Role: c.Role}, nil
}

func (s *Service) issue(u *User) (*Tokens, error) {
	access, err := s.sign(u, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, errors.Wrap(err, "sign access token")
	}
	refresh, err := s.sign(u, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, errors.Wrap(err, "sign refresh token")
	}
	return &Tokens{Access: access, Refresh: refresh}, nil
}

func (s *Service) sign(u *User, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:      u.Role,
		TokenType: tokenType,
	})
	return t.SignedString(s.secret)
}

func (s *Service) parse(tokenString, wantType string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if c.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return &c, nil
}
