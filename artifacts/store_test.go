package artifacts

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

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Artifact{}))
	return db
}

func TestCreateAndFind(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	artifact := &models.Artifact{
		Identifier:  "aabbccddeeff00112233445566778899",
		DisplayName: "report.zip",
		TOTPSecret:  "JBSWY3DPEHPK3PXP",
	}
	require.NoError(t, store.Create(ctx, artifact))
	assert.False(t, artifact.CreatedAt.IsZero(), "BeforeCreate sets the timestamp")

	got, err := store.FindByIdentifier(ctx, "aabbccddeeff00112233445566778899")
	require.NoError(t, err)
	assert.Equal(t, "report.zip", got.DisplayName)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", got.TOTPSecret)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, 5*time.Second)
}

func TestCreateDuplicateIdentifier(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	first := &models.Artifact{
		Identifier:  "aabbccddeeff00112233445566778899",
		DisplayName: "first.zip",
		TOTPSecret:  "SECRETONE",
	}
	require.NoError(t, store.Create(ctx, first))

	second := &models.Artifact{
		Identifier:  "aabbccddeeff00112233445566778899",
		DisplayName: "second.zip",
		TOTPSecret:  "SECRETTWO",
	}
	err := store.Create(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)

	// the original row is untouched
	got, err := store.FindByIdentifier(ctx, "aabbccddeeff00112233445566778899")
	require.NoError(t, err)
	assert.Equal(t, "first.zip", got.DisplayName)
}

func TestFindMissingIdentifier(t *testing.T) {
	store := NewStore(newTestDB(t))

	_, err := store.FindByIdentifier(context.Background(), "00000000000000000000000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}
