package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bcpschool/portal-api/internal/models"
)

var (
	// ErrTokenExpired indicates the token was well-formed but past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid indicates a malformed token or a failed signature check.
	ErrTokenInvalid = errors.New("token invalid")
)

// Identity is the resolved principal carried by a verified token.
type Identity struct {
	UserID   uint
	Username string
	Role     string
}

type tokenClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed identity tokens. The signing secret
// is fixed at construction and read-only afterwards.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService builds a token service signing with the given secret.
// Tokens live for ttl (one hour when non-positive).
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue produces a signed token encoding the user's id, username and role.
func (s *TokenService) Issue(user models.User) (string, error) {
	issuedAt := s.now()
	claims := tokenClaims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the signature and expiry of a raw token and returns the
// identity it encodes. Expired tokens report ErrTokenExpired; every other
// failure reports ErrTokenInvalid.
func (s *TokenService) Verify(raw string) (Identity, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrTokenInvalid
	}

	if !token.Valid {
		return Identity{}, ErrTokenInvalid
	}

	userID, err := parseSubject(claims.Subject)
	if err != nil {
		return Identity{}, ErrTokenInvalid
	}

	if claims.Username == "" || !models.ValidRole(claims.Role) {
		return Identity{}, ErrTokenInvalid
	}

	return Identity{
		UserID:   userID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

func parseSubject(subject string) (uint, error) {
	id, err := strconv.ParseUint(subject, 10, 64)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, fmt.Errorf("invalid subject")
	}
	return uint(id), nil
}
