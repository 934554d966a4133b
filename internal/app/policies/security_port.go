package policies

import (
	"time"

	"tourhub/internal/domain/authz"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(actor authz.Actor) (token string, expiresAt time.Time, err error)
}
