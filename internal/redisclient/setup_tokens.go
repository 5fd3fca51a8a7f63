package redisclient

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrTokenNotFound = errors.New("setup token not found or expired")
	ErrTokenUsed     = errors.New("setup token has already been used")
)

const (
	setupTokenPrefix = "setup:token:"

	tokenStateIssued = "issued"
	tokenStateUsed   = "used"
)

// SetupTokenStore keeps one-time admin registration tokens in Redis, keyed by
// the SHA-256 of the token so the raw value never touches storage. Expiry is
// delegated to the key TTL; a consumed token keeps its key (marked used) for
// the remaining TTL so reuse is reported as "used" rather than "invalid".
type SetupTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSetupTokenStore(client *redis.Client, ttl time.Duration) *SetupTokenStore {
	return &SetupTokenStore{client: client, ttl: ttl}
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return setupTokenPrefix + hex.EncodeToString(sum[:])
}

// Issue stores a fresh token and returns its expiry time.
func (s *SetupTokenStore) Issue(ctx context.Context, token string) (time.Time, error) {
	if err := s.client.Set(ctx, tokenKey(token), tokenStateIssued, s.ttl).Err(); err != nil {
		return time.Time{}, fmt.Errorf("store setup token: %w", err)
	}
	return time.Now().Add(s.ttl), nil
}

// Validate checks a token without consuming it.
func (s *SetupTokenStore) Validate(ctx context.Context, token string) error {
	state, err := s.client.Get(ctx, tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrTokenNotFound
	}
	if err != nil {
		return fmt.Errorf("load setup token: %w", err)
	}
	if state == tokenStateUsed {
		return ErrTokenUsed
	}
	return nil
}

// Consume atomically marks an issued token as used. The compare is done in a
// script so two concurrent registrations cannot both spend the same token.
var consumeScript = redis.NewScript(`
local state = redis.call("GET", KEYS[1])
if state == false then
  return "missing"
end
if state == "used" then
  return "used"
end
local ttl = redis.call("TTL", KEYS[1])
if ttl > 0 then
  redis.call("SET", KEYS[1], "used", "EX", ttl)
else
  redis.call("SET", KEYS[1], "used")
end
return "ok"
`)

func (s *SetupTokenStore) Consume(ctx context.Context, token string) error {
	res, err := consumeScript.Run(ctx, s.client, []string{tokenKey(token)}).Text()
	if err != nil {
		return fmt.Errorf("consume setup token: %w", err)
	}
	switch res {
	case "ok":
		return nil
	case "used":
		return ErrTokenUsed
	default:
		return ErrTokenNotFound
	}
}

// Clear deletes every setup token, issued or used. Development-mode reset
// only; returns the number of keys removed.
func (s *SetupTokenStore) Clear(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, setupTokenPrefix+"*", 100).Result()
		if err != nil {
			return removed, fmt.Errorf("scan setup tokens: %w", err)
		}
		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("delete setup tokens: %w", err)
			}
			removed += int(n)
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

// CountValid returns the number of issued, unconsumed tokens.
func (s *SetupTokenStore) CountValid(ctx context.Context) (int, error) {
	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, setupTokenPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("scan setup tokens: %w", err)
		}
		for _, key := range keys {
			state, err := s.client.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return 0, fmt.Errorf("load setup token: %w", err)
			}
			if state == tokenStateIssued {
				count++
			}
		}
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}
