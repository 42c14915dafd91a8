package model

import "time"

type User struct {
	ID       string `gorm:"primaryKey;type:uuid"`
	Username string `gorm:"uniqueIndex;not null"`

	// Denormalized running total of uploaded plaintext bytes. Kept for
	// cheap pre-flight checks only, quota reports always recompute
	// usage from the files and thumbnails tables
	StorageUsedBytes int64 `gorm:"not null;default:0"`

	CreatedAt time.Time

	Folders    []Folder    `gorm:"foreignKey:OwnerUserID"`
	Files      []File      `gorm:"foreignKey:OwnerID"`
	Thumbnails []Thumbnail `gorm:"foreignKey:OwnerID"`
}
