package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/IceCubeQq/YouGileTasksNexaBot/internal/model"
)

var testDBCounter int64

func newTestRepo(t *testing.T) *UserRepository {
	t.Helper()
	n := atomic.AddInt64(&testDBCounter, 1)
	db, err := NewDB(fmt.Sprintf("file:usertest%d?mode=memory&cache=shared", n))
	require.NoError(t, err)
	return NewUserRepository(db)
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, 42)
	require.NoError(t, err)
	require.EqualValues(t, 42, first.TelegramID)
	require.False(t, first.IsLinked())

	second, err := repo.GetOrCreate(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, first.TelegramID, second.TelegramID)

	var count int64
	require.NoError(t, repo.db.Model(&model.User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestFindByTelegramIDNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.FindByTelegramID(context.Background(), 99)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSetYougileCredentials(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.SetYougileCredentials(ctx, 1, "alice@corp.io", "yg-1")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetOrCreate(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, repo.SetYougileCredentials(ctx, 1, "alice@corp.io", "yg-1"))

	user, err := repo.FindByTelegramID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "alice@corp.io", user.YougileEmail)
	require.Equal(t, "yg-1", user.YougileID)
	require.True(t, user.IsLinked())

	// An empty external id must not erase the stored one.
	require.NoError(t, repo.SetYougileCredentials(ctx, 1, "alice@corp.io", ""))
	user, err = repo.FindByTelegramID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "yg-1", user.YougileID)
}

func TestSetDefaultColumn(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.ErrorIs(t, repo.SetDefaultColumn(ctx, 7, "col-1"), gorm.ErrRecordNotFound)

	_, err := repo.GetOrCreate(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, repo.SetDefaultColumn(ctx, 7, "col-1"))

	user, err := repo.FindByTelegramID(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "col-1", user.DefaultColumnID)
	require.True(t, user.HasDefaultColumn())
}

func TestFindYougileIDByUsername(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, 10)
	require.NoError(t, err)
	require.NoError(t, repo.SetTelegramUsername(ctx, 10, "alice"))
	require.NoError(t, repo.SetYougileCredentials(ctx, 10, "alice@corp.io", "yg-alice"))

	withAt, err := repo.FindYougileIDByUsername(ctx, "@alice")
	require.NoError(t, err)
	bare, err := repo.FindYougileIDByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "yg-alice", withAt)
	require.Equal(t, withAt, bare)

	_, err = repo.FindYougileIDByUsername(ctx, "nobody")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindYougileIDByUsernameUnlinked(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, 11)
	require.NoError(t, err)
	require.NoError(t, repo.SetTelegramUsername(ctx, 11, "bob"))

	id, err := repo.FindYougileIDByUsername(ctx, "bob")
	require.NoError(t, err)
	require.Empty(t, id)
}
