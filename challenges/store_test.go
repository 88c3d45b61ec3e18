package challenges

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cipherdrop/cipherdrop/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Challenge{}))
	return NewStore(db)
}

func TestStoreCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ch := &models.Challenge{Token: "11111111-2222-3333-4444-555555555555", Answer: "abc234"}
	require.NoError(t, store.Create(ctx, ch))
	assert.False(t, ch.CreatedAt.IsZero())

	got, err := store.Get(ctx, ch.Token)
	require.NoError(t, err)
	assert.Equal(t, "abc234", got.Answer)
}

func TestStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ch := &models.Challenge{Token: "11111111-2222-3333-4444-555555555555", Answer: "abc234"}
	require.NoError(t, store.Create(ctx, ch))

	require.NoError(t, store.Delete(ctx, ch.Token))
	_, err := store.Get(ctx, ch.Token)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting again is fine
	assert.NoError(t, store.Delete(ctx, ch.Token))
}

func TestStoreDeleteExpiredCounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	for i, age := range []time.Duration{20 * time.Minute, 15 * time.Minute, 11 * time.Minute} {
		ch := &models.Challenge{
			Token:     "old-" + string(rune('a'+i)),
			Answer:    "stale1",
			CreatedAt: now.Add(-age),
		}
		require.NoError(t, store.Create(ctx, ch))
	}
	for i := 0; i < 2; i++ {
		ch := &models.Challenge{
			Token:     "new-" + string(rune('a'+i)),
			Answer:    "fresh1",
			CreatedAt: now,
		}
		require.NoError(t, store.Create(ctx, ch))
	}

	removed, remaining, err := store.DeleteExpired(ctx, now.Add(-10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.Equal(t, int64(2), remaining)

	// a second sweep finds nothing new
	removed, remaining, err = store.DeleteExpired(ctx, now.Add(-10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
	assert.Equal(t, int64(2), remaining)
}
