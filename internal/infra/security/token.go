package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tourhub/internal/domain/authz"
	domainuser "tourhub/internal/domain/user"
)

var ErrInvalidToken = errors.New("security: invalid or expired token")

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWT issues and parses HS256 bearer tokens whose subject is the user id.
type JWT struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	Now    func() time.Time
}

func NewJWT(secret string, ttl time.Duration) *JWT {
	return &JWT{Secret: []byte(secret), TTL: ttl, Issuer: "tourhub"}
}

func (j *JWT) Issue(actor authz.Actor) (string, time.Time, error) {
	if strings.TrimSpace(actor.ID) == "" {
		return "", time.Time{}, errors.New("security: subject is required")
	}
	now := j.now()
	expiresAt := now.Add(j.ttl())
	claims := Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("security: sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Parse verifies the signature and expiry and returns the actor.
func (j *JWT) Parse(raw string) (authz.Actor, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return j.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return authz.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	role, err := domainuser.ParseRole(claims.Role)
	if err != nil || claims.Subject == "" {
		return authz.Actor{}, ErrInvalidToken
	}
	return authz.Actor{ID: claims.Subject, Role: role}, nil
}

func (j *JWT) ttl() time.Duration {
	if j.TTL > 0 {
		return j.TTL
	}
	return 24 * time.Hour
}

func (j *JWT) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}
