// Package challenges mints, renders, and accounts for the visual puzzles
// that gate uploads. A challenge is a one-time pairing of an opaque token
// with an expected answer; it dies on its first verification attempt.
package challenges

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cipherdrop/cipherdrop/models"
	"gorm.io/gorm"
)

// ErrNotFound reports an absent token: never issued, already consumed,
// or swept. Callers cannot tell these apart.
var ErrNotFound = errors.New("challenge not found")

// Store persists outstanding challenges.
type Store struct {
	db *gorm.DB
}

// NewStore wraps the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts a freshly minted challenge.
func (s *Store) Create(ctx context.Context, ch *models.Challenge) error {
	if err := s.db.WithContext(ctx).Create(ch).Error; err != nil {
		return fmt.Errorf("insert challenge: %w", err)
	}
	return nil
}

// Get loads the challenge behind token or ErrNotFound.
func (s *Store) Get(ctx context.Context, token string) (*models.Challenge, error) {
	var ch models.Challenge
	err := s.db.WithContext(ctx).First(&ch, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load challenge: %w", err)
	}
	return &ch, nil
}

// Delete removes the token. Deleting an absent token is not an error, which
// lets the sweep and the request path interleave freely.
func (s *Store) Delete(ctx context.Context, token string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Challenge{}, "token = ?", token).Error; err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	return nil
}

// DeleteExpired removes every challenge created before cutoff and reports
// how many rows went and how many remain.
func (s *Store) DeleteExpired(ctx context.Context, cutoff time.Time) (removed, remaining int64, err error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.Challenge{})
	if res.Error != nil {
		return 0, 0, fmt.Errorf("sweep challenges: %w", res.Error)
	}
	if err := s.db.WithContext(ctx).Model(&models.Challenge{}).Count(&remaining).Error; err != nil {
		return res.RowsAffected, 0, fmt.Errorf("count challenges: %w", err)
	}
	return res.RowsAffected, remaining, nil
}
