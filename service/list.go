package service

import (
	"errors"
	"fmt"
	"time"

	"bitwise74/drive-api/model"

	"gorm.io/gorm"
)

// ListOptions narrows a listing. The zero value lists the owner's
// active files, Deleted flips to the recycle-bin view.
type ListOptions struct {
	Deleted       bool
	FavoritesOnly bool
}

// List returns the owner's file descriptors, newest first. Plaintext
// never leaves Retrieve, listings carry metadata only.
func (f *Files) List(ownerID string, opts ListOptions) ([]model.File, error) {
	q := f.DB.
		Where("owner_id = ? AND is_deleted = ? AND is_hidden = ?", ownerID, opts.Deleted, false)

	if opts.FavoritesOnly {
		q = q.Where("is_favorite = ?", true)
	}

	var files []model.File

	err := q.
		Order("uploaded_at DESC").
		Find(&files).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list files, %w", err)
	}

	return files, nil
}

// SetFavorite flips the favorite flag on an owned, non-deleted file.
func (f *Files) SetFavorite(fileID, ownerID string, favorite bool) error {
	res := f.DB.
		Model(model.File{}).
		Where("id = ? AND owner_id = ? AND is_deleted = ?", fileID, ownerID, false).
		Updates(map[string]any{
			"is_favorite": favorite,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update file, %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// IsDeleted reports whether an owned file currently sits in the
// recycle bin.
func (f *Files) IsDeleted(fileID, ownerID string) (bool, error) {
	var file model.File

	err := f.DB.
		Select("is_deleted").
		Where("id = ? AND owner_id = ?", fileID, ownerID).
		First(&file).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound
		}

		return false, fmt.Errorf("failed to look up file, %w", err)
	}

	return file.IsDeleted, nil
}
