package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/core"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "approvalflow"

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by a login token. The subject is the user id.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	clock  core.Clock
}

func NewTokenService(secret string, ttl time.Duration, clock core.Clock) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("jwt secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, clock: clock}, nil
}

func (s *TokenService) Issue(userID int64, username string, role domain.Role) (string, time.Time, error) {
	now := s.clock.Now()
	expires := now.Add(s.ttl)
	claims := Claims{
		Username: username,
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies the signature, issuer and expiry and returns the user id in the subject.
func (s *TokenService) Parse(token string) (int64, *Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !parsed.Valid {
		return 0, nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return userID, claims, nil
}
