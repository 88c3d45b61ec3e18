// Package artifacts owns the metadata records behind stored uploads and the
// identifier namespace that addresses them.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cipherdrop/cipherdrop/models"
	"gorm.io/gorm"
)

var (
	// ErrConflict reports an identifier collision on insert. Callers are
	// expected to retry with a fresh identifier, never to ignore it.
	ErrConflict = errors.New("artifact identifier already exists")
	// ErrNotFound reports a missing artifact record.
	ErrNotFound = errors.New("artifact not found")
)

// Store persists artifact metadata rows.
type Store struct {
	db *gorm.DB
}

// NewStore wraps the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts the record. A duplicate identifier surfaces as ErrConflict.
func (s *Store) Create(ctx context.Context, artifact *models.Artifact) error {
	if err := s.db.WithContext(ctx).Create(artifact).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

// FindByIdentifier loads one record or ErrNotFound.
func (s *Store) FindByIdentifier(ctx context.Context, id string) (*models.Artifact, error) {
	var artifact models.Artifact
	err := s.db.WithContext(ctx).First(&artifact, "identifier = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load artifact: %w", err)
	}
	return &artifact, nil
}

// isDuplicateKey matches gorm's translated sentinel plus the raw driver
// messages for setups where translation is unavailable.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
