package model

import "time"

// Thumbnail is a subordinate object: its lifecycle is driven entirely by
// the file it previews. It is destroyed exactly when its file is purged.
type Thumbnail struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	FileID   string `gorm:"uniqueIndex;not null" json:"-"`
	OwnerID  string `gorm:"index;not null" json:"-"`
	FolderID string `gorm:"not null" json:"-"`

	StorageName string `gorm:"uniqueIndex;not null" json:"-"`
	IV          string `gorm:"not null" json:"-"`
	AuthTag     string `gorm:"not null" json:"-"`

	MimeType  string `gorm:"not null;default:image/png" json:"mime_type"`
	SizeBytes int64  `gorm:"not null" json:"size"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
