package models

import (
	"time"

	"gorm.io/gorm"
)

// Artifact is the metadata row for one stored upload. The encrypted payload
// lives in blob storage under the same identifier; only the display name and
// the rotating-code secret live here. No uploader identity is recorded.
type Artifact struct {
	Identifier  string    `gorm:"primaryKey;size:32" json:"identifier"`
	DisplayName string    `gorm:"size:255;not null" json:"display_name"`
	TOTPSecret  string    `gorm:"size:128;not null" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate hook ensures the timestamp is set even when not provided.
func (a *Artifact) BeforeCreate(tx *gorm.DB) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return nil
}
