// Package model defines database models
package model

import "time"

// File categories. Thumbnails don't get their own category, they
// always live under the thumbnails folder of their owner.
const (
	TypeImage    = "image"
	TypeVideo    = "video"
	TypeDocument = "document"
	TypeOther    = "other"
)

type File struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	OwnerID string `gorm:"index;not null" json:"-"`

	// Folder the ciphertext lives under. Set once at upload and
	// never changed, the on-disk path is derived from it
	FolderID string `gorm:"not null" json:"-"`

	// Original file name before turning it into an opaque storage name
	OriginalName string `json:"name"`

	// Random on-disk object name. Avoids file name conflicts and leaks
	// nothing about the content
	StorageName string `gorm:"uniqueIndex;not null" json:"-"`

	// AES-256-GCM envelope, hex encoded. Kept out of band so the
	// ciphertext on disk is exactly as long as the plaintext
	IV      string `gorm:"not null" json:"-"`
	AuthTag string `gorm:"not null" json:"-"`

	MimeType string `gorm:"not null" json:"mime_type"`
	FileType string `gorm:"not null" json:"file_type"`

	// Plaintext length. Quota accounting uses this, not the on-disk size
	SizeBytes int64 `gorm:"not null" json:"size"`

	IsFavorite bool `gorm:"not null;default:false" json:"is_favorite"`
	IsHidden   bool `gorm:"not null;default:false" json:"-"`
	IsDeleted  bool `gorm:"not null;default:false" json:"is_deleted"`

	// Set after the subordinate thumbnail row is committed, stays nil
	// when thumbnail generation failed or never applied
	ThumbnailID *string `gorm:"type:uuid" json:"thumbnail_id,omitempty"`

	UploadedAt time.Time `gorm:"not null" json:"uploaded_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
