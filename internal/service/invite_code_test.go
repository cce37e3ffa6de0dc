package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomInviteCodeShape(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code, err := randomInviteCode()
		require.NoError(t, err)
		assert.Len(t, code, inviteCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(inviteCodeAlphabet, r), "unexpected rune %q", r)
		}
		seen[code] = struct{}{}
	}
	// 50 кодов из 36^6 вариантов практически не коллидируют
	assert.Greater(t, len(seen), 45)
}

func TestGenerateInviteCodeFirstTry(t *testing.T) {
	calls := 0
	code, err := generateInviteCode(context.Background(), func(_ context.Context, _ string) (bool, error) {
		calls++
		return false, nil
	})

	require.NoError(t, err)
	assert.Len(t, code, inviteCodeLength)
	assert.Equal(t, 1, calls)
}

func TestGenerateInviteCodeRetriesOnCollision(t *testing.T) {
	calls := 0
	code, err := generateInviteCode(context.Background(), func(_ context.Context, _ string) (bool, error) {
		calls++
		return calls < 3, nil
	})

	require.NoError(t, err)
	assert.NotEmpty(t, code)
	assert.Equal(t, 3, calls)
}

func TestGenerateInviteCodeExhaustion(t *testing.T) {
	calls := 0
	_, err := generateInviteCode(context.Background(), func(_ context.Context, _ string) (bool, error) {
		calls++
		return true, nil
	})

	assert.ErrorIs(t, err, ErrInviteCodeExhausted)
	assert.Equal(t, inviteCodeMaxAttempts, calls)
}
