package models

import (
	"time"

	"gorm.io/gorm"
)

// Challenge is one outstanding visual captcha: an opaque token mapped to the
// answer the client must echo back. A row is removed on its first
// verification attempt, right or wrong, and swept once it outlives the
// configured validity window.
type Challenge struct {
	Token     string    `gorm:"primaryKey;size:36" json:"token"`
	Answer    string    `gorm:"size:16;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hook ensures the timestamp is set even when not provided.
func (c *Challenge) BeforeCreate(tx *gorm.DB) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	return nil
}

// Expired reports whether the challenge has outlived ttl as of now. A
// challenge exactly at the boundary is still valid.
func (c *Challenge) Expired(now time.Time, ttl time.Duration) bool {
	return now.After(c.CreatedAt.Add(ttl))
}
