package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ricknaldos/buzentry-main-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhoneRepo_ClaimResolveRelease(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewPhoneRepo(client)
	ctx := context.Background()

	claimed, err := repo.Claim(ctx, "+15551234567", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, claimed)

	owner, err := repo.Resolve(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", owner)

	require.NoError(t, repo.Release(ctx, "+15551234567"))
	_, err = repo.Resolve(ctx, "+15551234567")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPhoneRepo_SecondClaimLoses(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewPhoneRepo(client)
	ctx := context.Background()

	claimed, err := repo.Claim(ctx, "+15551234567", "alice@example.com")
	require.NoError(t, err)
	require.True(t, claimed)

	claimed, err = repo.Claim(ctx, "+15551234567", "bob@example.com")
	require.NoError(t, err)
	assert.False(t, claimed)

	// The loser's claim must not have clobbered the winner's entry.
	owner, err := repo.Resolve(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", owner)
}

func TestPhoneRepo_ResolveMissing(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewPhoneRepo(client)

	_, err := repo.Resolve(context.Background(), "+15550000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPhoneRepo_ReleaseIdempotent(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewPhoneRepo(client)
	ctx := context.Background()

	require.NoError(t, repo.Release(ctx, "+15551234567"))
	require.NoError(t, repo.Release(ctx, "+15551234567"))
}

func TestPhoneRepo_RacingClaimsHaveOneWinner(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewPhoneRepo(client)
	ctx := context.Background()

	const claimants = 8
	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			claimed, err := repo.Claim(ctx, "+15551234567", string(rune('a'+i))+"@example.com")
			require.NoError(t, err)
			if claimed {
				atomic.AddInt32(&wins, 1)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}
