package fakeuserrepo_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vidtube/vidtube-server/users"
	fakeuserrepo "github.com/vidtube/vidtube-server/users/repofake"
)

func TestFakeUserRepo_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := fakeuserrepo.NewFakeUserRepo()

	u := &users.User{Username: "Alice", Email: "Alice@Example.com", FullName: "Alice A"}
	require.NoError(t, repo.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	byName, err := repo.GetByUsernameOrEmail(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, byName.ID)

	byEmail, err := repo.GetByUsernameOrEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	_, err = repo.GetByUsernameOrEmail(ctx, "bob")
	require.ErrorIs(t, err, users.ErrNotFound)

	err = repo.Create(ctx, &users.User{Username: "alice", Email: "other@example.com"})
	require.ErrorIs(t, err, users.ErrAlreadyExists)

	exists, err := repo.ExistsByUsernameOrEmail(ctx, "someone", "alice@example.com")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestFakeUserRepo_SwapRefreshToken(t *testing.T) {
	ctx := context.Background()
	repo := fakeuserrepo.NewFakeUserRepo()
	u := &users.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, repo.Create(ctx, u))

	require.ErrorIs(t, repo.SwapRefreshToken(ctx, u.ID, "", "next"), users.ErrRefreshTokenMismatch)

	require.NoError(t, repo.SetRefreshToken(ctx, u.ID, "first"))
	require.NoError(t, repo.SwapRefreshToken(ctx, u.ID, "first", "second"))
	require.ErrorIs(t, repo.SwapRefreshToken(ctx, u.ID, "first", "third"), users.ErrRefreshTokenMismatch)
	require.ErrorIs(t, repo.SwapRefreshToken(ctx, "missing", "second", "third"), users.ErrNotFound)

	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "second", stored.RefreshToken)
}

func TestFakeUserRepo_ConcurrentSwapHasOneWinner(t *testing.T) {
	ctx := context.Background()
	repo := fakeuserrepo.NewFakeUserRepo()
	u := &users.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, repo.Create(ctx, u))
	require.NoError(t, repo.SetRefreshToken(ctx, u.ID, "stale"))

	const racers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := repo.SwapRefreshToken(ctx, u.ID, "stale", "next"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	require.Equal(t, 1, wins)
}

func TestFakeUserRepo_UpdateAccount(t *testing.T) {
	ctx := context.Background()
	repo := fakeuserrepo.NewFakeUserRepo()
	alice := &users.User{Username: "alice", Email: "alice@example.com", FullName: "Alice"}
	bob := &users.User{Username: "bob", Email: "bob@example.com", FullName: "Bob"}
	require.NoError(t, repo.Create(ctx, alice))
	require.NoError(t, repo.Create(ctx, bob))

	updated, err := repo.UpdateAccount(ctx, alice.ID, users.AccountUpdate{FullName: "Alice B", Email: "ALICE.B@example.com"})
	require.NoError(t, err)
	require.Equal(t, "Alice B", updated.FullName)
	require.Equal(t, "alice.b@example.com", updated.Email)

	_, err = repo.GetByUsernameOrEmail(ctx, "alice@example.com")
	require.ErrorIs(t, err, users.ErrNotFound)

	_, err = repo.UpdateAccount(ctx, alice.ID, users.AccountUpdate{Email: "bob@example.com"})
	require.ErrorIs(t, err, users.ErrAlreadyExists)

	_, err = repo.UpdateAccount(ctx, "missing", users.AccountUpdate{FullName: "x"})
	require.ErrorIs(t, err, users.ErrNotFound)
}
