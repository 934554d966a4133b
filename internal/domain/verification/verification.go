package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"
)

var (
	ErrCodeNotFound = errors.New("verification: code not found or expired")
	ErrCodeMismatch = errors.New("verification: code does not match")
)

const CodeLength = 6

// CodeStore keeps short-lived codes keyed by an opaque key. Expired entries
// behave as missing.
type CodeStore interface {
	Put(ctx context.Context, key, code string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// EmailKey scopes a code to an email address.
func EmailKey(email string) string {
	return "verification:email:" + strings.ToLower(strings.TrimSpace(email))
}

// NewCode draws a zero-padded decimal code from src; nil means crypto/rand.
func NewCode(src io.Reader) (string, error) {
	if src == nil {
		src = rand.Reader
	}
	limit := big.NewInt(1_000_000)
	n, err := rand.Int(src, limit)
	if err != nil {
		return "", fmt.Errorf("verification: generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

// Check compares code with the stored one for key and deletes it on success.
func Check(ctx context.Context, store CodeStore, key, code string) error {
	stored, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	if stored != strings.TrimSpace(code) {
		return ErrCodeMismatch
	}
	return store.Delete(ctx, key)
}
