package service

import (
	"context"
	"fmt"
	"time"

	"bitwise74/drive-api/model"

	"gorm.io/gorm"
)

// BatchResult reports which ids a batch operation actually touched.
// Ids that didn't match the ownership and state preconditions are
// reported, not errored, the rest of the batch goes through.
type BatchResult struct {
	Affected []string `json:"affected"`
	Skipped  []string `json:"skipped,omitempty"`
}

func skipped(requested, affected []string) []string {
	matched := make(map[string]bool, len(affected))
	for _, id := range affected {
		matched[id] = true
	}

	var out []string
	for _, id := range requested {
		if !matched[id] {
			out = append(out, id)
		}
	}

	return out
}

// SoftDeleteMany soft-deletes every active owned file in ids within a
// single transaction.
func (f *Files) SoftDeleteMany(ctx context.Context, fileIDs []string, ownerID string) (*BatchResult, error) {
	return f.setDeletedMany(fileIDs, ownerID, true)
}

// RestoreMany restores every soft-deleted owned file in ids within a
// single transaction.
func (f *Files) RestoreMany(ctx context.Context, fileIDs []string, ownerID string) (*BatchResult, error) {
	return f.setDeletedMany(fileIDs, ownerID, false)
}

func (f *Files) setDeletedMany(fileIDs []string, ownerID string, deleted bool) (*BatchResult, error) {
	if len(fileIDs) == 0 {
		return nil, ErrInvalidInput
	}

	var matched []string

	err := f.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.
			Model(model.File{}).
			Where("id IN ? AND owner_id = ? AND is_deleted = ?", fileIDs, ownerID, !deleted).
			Pluck("id", &matched).
			Error
		if err != nil {
			return err
		}

		if len(matched) == 0 {
			return nil
		}

		return tx.
			Model(model.File{}).
			Where("id IN ?", matched).
			Updates(map[string]any{
				"is_deleted": deleted,
				"updated_at": time.Now(),
			}).
			Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update file states, %w", err)
	}

	return &BatchResult{
		Affected: matched,
		Skipped:  skipped(fileIDs, matched),
	}, nil
}

// PermanentDeleteMany purges every soft-deleted owned file in ids. Disk
// removal stays best-effort per object, the metadata rows of all
// matched files and their thumbnails go in one transaction.
func (f *Files) PermanentDeleteMany(ctx context.Context, fileIDs []string, ownerID string) (*BatchResult, error) {
	if len(fileIDs) == 0 {
		return nil, ErrInvalidInput
	}

	user, err := f.user(ownerID)
	if err != nil {
		return nil, err
	}

	var files []model.File

	err = f.DB.
		Where("id IN ? AND owner_id = ? AND is_deleted = ?", fileIDs, ownerID, true).
		Find(&files).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up files, %w", err)
	}

	if len(files) == 0 {
		return &BatchResult{Skipped: fileIDs}, nil
	}

	matched := make([]string, 0, len(files))
	var freed int64

	thumbsByFile := make(map[string]*model.Thumbnail, len(files))
	{
		ids := make([]string, 0, len(files))
		for _, file := range files {
			ids = append(ids, file.ID)
		}

		var thumbs []model.Thumbnail

		err := f.DB.
			Where("file_id IN ?", ids).
			Find(&thumbs).
			Error
		if err != nil {
			return nil, fmt.Errorf("failed to look up thumbnails, %w", err)
		}

		for i := range thumbs {
			thumbsByFile[thumbs[i].FileID] = &thumbs[i]
		}
	}

	for i := range files {
		f.removeFromDisk(ctx, user.Username, &files[i], thumbsByFile[files[i].ID])

		matched = append(matched, files[i].ID)
		freed += files[i].SizeBytes
	}

	err = f.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Thumbnail{}, "file_id IN ?", matched).Error; err != nil {
			return err
		}

		return tx.Delete(&model.File{}, "id IN ?", matched).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete file records, %w", err)
	}

	f.releaseStorage(ownerID, freed)

	return &BatchResult{
		Affected: matched,
		Skipped:  skipped(fileIDs, matched),
	}, nil
}
