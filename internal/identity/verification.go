package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"startosedge/internal/utils"

	"github.com/redis/go-redis/v9"
)

var ErrTokenInvalid = errors.New("identity: verification token invalid or expired")

const (
	verifyPrefix = "verify:"
	verifyTTL    = 24 * time.Hour
)

// VerificationStore issues and consumes one-shot email verification
// tokens. Tokens are opaque, expire on their own and are deleted on
// first use.
type VerificationStore struct {
	client *redis.Client
}

func NewVerificationStore(client *redis.Client) *VerificationStore {
	return &VerificationStore{client: client}
}

func (v *VerificationStore) Issue(ctx context.Context, userID string) (string, error) {
	token := utils.RandomToken(32)
	err := v.client.Set(ctx, verifyPrefix+token, userID, verifyTTL).Err()
	if err != nil {
		return "", fmt.Errorf("identity: issue verification token: %w", err)
	}
	return token, nil
}

// Consume resolves the token to a user id and invalidates it.
func (v *VerificationStore) Consume(ctx context.Context, token string) (string, error) {
	key := verifyPrefix + token

	userID, err := v.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrTokenInvalid
	}
	if err != nil {
		return "", fmt.Errorf("identity: consume verification token: %w", err)
	}

	if err := v.client.Del(ctx, key).Err(); err != nil {
		return "", fmt.Errorf("identity: consume verification token: %w", err)
	}
	return userID, nil
}
