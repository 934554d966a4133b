package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"tourhub/internal/domain/verification"
)

// NewClient connects and pings once so misconfiguration surfaces at startup.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// CodeStore keeps verification codes with a native Redis expiry, so every
// instance sees the same codes.
type CodeStore struct {
	client goredis.Cmdable
}

func NewCodeStore(client goredis.Cmdable) *CodeStore {
	return &CodeStore{client: client}
}

func (s *CodeStore) Put(ctx context.Context, key, code string, ttl time.Duration) error {
	return s.client.Set(ctx, key, code, ttl).Err()
}

func (s *CodeStore) Get(ctx context.Context, key string) (string, error) {
	code, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", verification.ErrCodeNotFound
	}
	return code, err
}

func (s *CodeStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

var _ verification.CodeStore = (*CodeStore)(nil)
