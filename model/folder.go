package model

import "time"

// Folder types. Every owner gets exactly these four at provisioning
// time, they map 1:1 to physical directories and are never deleted.
const (
	FolderPhotos     = "photos"
	FolderVideos     = "videos"
	FolderThumbnails = "thumbnails"
	FolderFiles      = "files"
)

type Folder struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	OwnerUserID string `gorm:"index;not null" json:"-"`

	// Display name ("My Photos"), not used for storage layout
	Name string `gorm:"not null" json:"name"`

	// Storage layout key, one of the Folder* constants
	FolderType string `gorm:"not null" json:"folder_type"`

	CreatedAt time.Time `json:"created_at"`
}
