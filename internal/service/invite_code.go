package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	inviteCodeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeLength      = 6
	inviteCodeMaxAttempts = 10
)

var errInviteCodeCollision = errors.New("invite code collision")

// randomInviteCode генерирует 6-символьный код из 36-символьного алфавита
func randomInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		buf[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// generateInviteCode подбирает свободный код, повторяя генерацию при
// коллизии до 10 раз. Исчерпание попыток - явная retryable-ошибка,
// а не тихое продолжение с возможным дублем.
func generateInviteCode(ctx context.Context, exists func(ctx context.Context, code string) (bool, error)) (string, error) {
	var code string

	backoff := retry.WithMaxRetries(inviteCodeMaxAttempts-1, retry.NewConstant(time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		candidate, err := randomInviteCode()
		if err != nil {
			return err
		}

		taken, err := exists(ctx, candidate)
		if err != nil {
			return err
		}
		if taken {
			return retry.RetryableError(errInviteCodeCollision)
		}

		code = candidate
		return nil
	})

	if err != nil {
		if errors.Is(err, errInviteCodeCollision) {
			return "", ErrInviteCodeExhausted
		}
		return "", err
	}

	return code, nil
}
