package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNonceExists  = errors.New("nonce already issued")
	ErrNonceUnknown = errors.New("nonce unknown or already used")
)

// NonceStore tracks server-issued sign-in nonces. A nonce is written once when
// the challenge is issued and consumed atomically when the signature comes
// back, so a statement can never be replayed.
type NonceStore struct {
	ttl time.Duration
}

// NewNonceStore creates a nonce store whose entries expire after ttl.
func NewNonceStore(ttl time.Duration) *NonceStore {
	return &NonceStore{ttl: ttl}
}

func nonceKey(chain, address, nonce string) string {
	return fmt.Sprintf("auth:nonce:%s:%s:%s", chain, address, nonce)
}

// Issue records a freshly generated nonce for the given wallet.
func (s *NonceStore) Issue(ctx context.Context, chain, address, nonce string) error {
	ok, err := SetNX(ctx, nonceKey(chain, address, nonce), "1", s.ttl)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNonceExists
	}
	return nil
}

// Consume removes the nonce. It fails when the nonce was never issued, has
// expired, or was already consumed by a concurrent request.
func (s *NonceStore) Consume(ctx context.Context, chain, address, nonce string) error {
	_, err := GetDel(ctx, nonceKey(chain, address, nonce))
	if errors.Is(err, redis.Nil) {
		return ErrNonceUnknown
	}
	return err
}
