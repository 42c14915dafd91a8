package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitwise74/drive-api/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SoftDelete moves an active file into the recycle bin. The file keeps
// its ciphertext and keeps counting toward quota until it's purged.
func (f *Files) SoftDelete(ctx context.Context, fileID, ownerID string) error {
	return f.setDeleted(fileID, ownerID, true)
}

// Restore brings a soft-deleted file back. Inverse of SoftDelete.
func (f *Files) Restore(ctx context.Context, fileID, ownerID string) error {
	return f.setDeleted(fileID, ownerID, false)
}

// setDeleted flips the soft-delete flag with the state precondition in
// the WHERE clause. Two concurrent transitions race at that clause and
// the loser sees zero affected rows, which surfaces as a precondition
// error instead of corrupting state.
func (f *Files) setDeleted(fileID, ownerID string, deleted bool) error {
	res := f.DB.
		Model(model.File{}).
		Where("id = ? AND owner_id = ? AND is_deleted = ?", fileID, ownerID, !deleted).
		Updates(map[string]any{
			"is_deleted": deleted,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update file state, %w", res.Error)
	}

	if res.RowsAffected == 0 {
		var count int64

		err := f.DB.
			Model(model.File{}).
			Where("id = ? AND owner_id = ?", fileID, ownerID).
			Count(&count).
			Error
		if err != nil {
			return fmt.Errorf("failed to check file state, %w", err)
		}

		if count == 0 {
			return ErrNotFound
		}

		return ErrPreconditionFailed
	}

	return nil
}

// PermanentDelete destroys a soft-deleted file for good: ciphertext,
// thumbnail and both metadata rows. Files must go through the recycle
// bin first, purging an active file is refused.
//
// Disk removal is best-effort and never blocks the metadata removal. A
// leaked ciphertext nobody references is inert, a metadata row whose
// bytes are gone would resurrect a deleted file in listings.
func (f *Files) PermanentDelete(ctx context.Context, fileID, ownerID string) error {
	var file model.File

	err := f.DB.
		Where("id = ? AND owner_id = ?", fileID, ownerID).
		First(&file).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("failed to look up file, %w", err)
	}

	if !file.IsDeleted {
		return ErrPreconditionFailed
	}

	user, err := f.user(ownerID)
	if err != nil {
		return err
	}

	var thumb *model.Thumbnail
	{
		var row model.Thumbnail

		err := f.DB.
			Where("file_id = ?", file.ID).
			First(&row).
			Error
		if err == nil {
			thumb = &row
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up thumbnail, %w", err)
		}
	}

	f.removeFromDisk(ctx, user.Username, &file, thumb)

	err = f.DB.Transaction(func(tx *gorm.DB) error {
		if thumb != nil {
			if err := tx.Delete(&model.Thumbnail{}, "id = ?", thumb.ID).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&model.File{}, "id = ?", file.ID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete file records, %w", err)
	}

	f.releaseStorage(ownerID, file.SizeBytes)

	return nil
}

// removeFromDisk deletes the ciphertext objects, logging failures as
// warnings instead of aborting.
func (f *Files) removeFromDisk(ctx context.Context, username string, file *model.File, thumb *model.Thumbnail) {
	folderType, err := f.folderType(file.FolderID)
	if err != nil {
		zap.L().Warn("Failed to resolve folder for purge", zap.String("fileID", file.ID), zap.Error(err))
	} else if err := f.Store.Remove(ctx, username, folderType, file.StorageName); err != nil {
		zap.L().Warn("Failed to delete ciphertext from storage",
			zap.String("fileID", file.ID),
			zap.Error(err))
	}

	if thumb == nil {
		return
	}

	thumbFolder, err := f.folderType(thumb.FolderID)
	if err != nil {
		zap.L().Warn("Failed to resolve thumbnail folder for purge", zap.String("fileID", file.ID), zap.Error(err))
		return
	}

	if err := f.Store.Remove(ctx, username, thumbFolder, thumb.StorageName); err != nil {
		zap.L().Warn("Failed to delete thumbnail ciphertext from storage",
			zap.String("fileID", file.ID),
			zap.Error(err))
	}
}

// releaseStorage decrements the cached usage counter, clamped at zero.
// The counter is a convenience only, quota reports never trust it.
func (f *Files) releaseStorage(ownerID string, bytes int64) {
	var u model.User

	err := f.DB.
		Where("id = ?", ownerID).
		First(&u).
		Error
	if err != nil {
		zap.L().Warn("Failed to load user for counter update", zap.Error(err))
		return
	}

	used := u.StorageUsedBytes - bytes
	if used < 0 {
		used = 0
	}

	err = f.DB.
		Model(model.User{}).
		Where("id = ?", ownerID).
		Update("storage_used_bytes", used).
		Error
	if err != nil {
		zap.L().Warn("Failed to decrement cached storage counter", zap.Error(err))
	}
}
