package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"bitwise74/drive-api/model"
	"bitwise74/drive-api/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UploadResult is what the upload endpoint hands back to the client.
type UploadResult struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"name"`
	MimeType     string    `json:"mime_type"`
	FileType     string    `json:"file_type"`
	SizeBytes    int64     `json:"size"`
	HasThumbnail bool      `json:"has_thumbnail"`
	ThumbnailID  *string   `json:"thumbnail_id,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Ingest turns an uploaded byte buffer into a durable encrypted object.
//
// The primary object is committed (ciphertext on disk plus metadata
// row) before any thumbnail work starts, so a preview failure can never
// take the upload down with it. The object is discoverable from the
// moment its row exists, a ciphertext write that never got its row is
// inert and invisible to every query.
func (f *Files) Ingest(ctx context.Context, ownerID, originalName, declaredMIME string, data []byte) (*UploadResult, error) {
	if len(data) == 0 || originalName == "" {
		return nil, ErrInvalidInput
	}

	user, err := f.user(ownerID)
	if err != nil {
		return nil, err
	}

	if f.LimitBytes > 0 {
		used, err := f.totalBytes(ownerID)
		if err != nil {
			return nil, err
		}

		if used+int64(len(data)) > f.LimitBytes {
			return nil, ErrQuotaExceeded
		}
	}

	mime, fileType := Classify(declaredMIME, data)

	folders, err := f.folders(ownerID)
	if err != nil {
		return nil, err
	}
	folder := folders[folderFor(fileType)]

	ciphertext, iv, tag, err := f.Engine.Encrypt(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt file, %w", err)
	}

	storageName := storage.NewObjectName()

	if err := f.Store.Write(ctx, user.Username, folder.FolderType, storageName, ciphertext); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStorageUnavailable, err)
	}

	now := time.Now()
	file := model.File{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		FolderID:     folder.ID,
		OriginalName: originalName,
		StorageName:  storageName,
		IV:           hex.EncodeToString(iv),
		AuthTag:      hex.EncodeToString(tag),
		MimeType:     mime,
		FileType:     fileType,
		SizeBytes:    int64(len(data)),
		UploadedAt:   now,
		UpdatedAt:    now,
	}

	err = f.DB.
		Create(&file).
		Error
	if err != nil {
		// The row never made it, so the ciphertext must not stay behind
		if rmErr := f.Store.Remove(ctx, user.Username, folder.FolderType, storageName); rmErr != nil {
			zap.L().Warn("Failed to clean up ciphertext after aborted upload",
				zap.String("storageName", storageName),
				zap.Error(rmErr))
		}

		return nil, fmt.Errorf("failed to save file record, %w", err)
	}

	err = f.DB.
		Model(model.User{}).
		Where("id = ?", ownerID).
		Update("storage_used_bytes", gorm.Expr("storage_used_bytes + ?", file.SizeBytes)).
		Error
	if err != nil {
		zap.L().Warn("Failed to increment cached storage counter", zap.Error(err))
	}

	res := &UploadResult{
		ID:           file.ID,
		OriginalName: file.OriginalName,
		MimeType:     file.MimeType,
		FileType:     file.FileType,
		SizeBytes:    file.SizeBytes,
		UploadedAt:   file.UploadedAt,
	}

	if fileType != model.TypeImage && fileType != model.TypeVideo {
		return res, nil
	}

	// Thumbnails are generated from the original plaintext, never the
	// ciphertext. Whatever goes wrong past this point the upload has
	// already succeeded, so failures are logged and swallowed.
	thumbID, err := f.attachThumbnail(ctx, user, folders[model.FolderThumbnails], &file, data)
	if err != nil {
		zap.L().Warn("Thumbnail generation failed, keeping file without preview",
			zap.String("fileID", file.ID),
			zap.Error(err))

		return res, nil
	}

	res.HasThumbnail = true
	res.ThumbnailID = &thumbID

	return res, nil
}

func (f *Files) attachThumbnail(ctx context.Context, user *model.User, thumbFolder model.Folder, file *model.File, plaintext []byte) (string, error) {
	preview, err := f.Thumbs.Generate(plaintext, file.FileType)
	if err != nil {
		return "", err
	}

	ciphertext, iv, tag, err := f.Engine.Encrypt(preview)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt thumbnail, %w", err)
	}

	storageName := storage.NewObjectName()

	if err := f.Store.Write(ctx, user.Username, thumbFolder.FolderType, storageName, ciphertext); err != nil {
		return "", fmt.Errorf("failed to write thumbnail, %w", err)
	}

	thumb := model.Thumbnail{
		ID:          uuid.NewString(),
		FileID:      file.ID,
		OwnerID:     file.OwnerID,
		FolderID:    thumbFolder.ID,
		StorageName: storageName,
		IV:          hex.EncodeToString(iv),
		AuthTag:     hex.EncodeToString(tag),
		MimeType:    ThumbMimeType,
		SizeBytes:   int64(len(preview)),
		CreatedAt:   time.Now(),
	}

	// Row creation and the back-reference update commit together so a
	// crash can't leave a thumbnail row no file points at
	err = f.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&thumb).Error; err != nil {
			return err
		}

		return tx.
			Model(model.File{}).
			Where("id = ?", file.ID).
			Update("thumbnail_id", thumb.ID).
			Error
	})
	if err != nil {
		if rmErr := f.Store.Remove(ctx, user.Username, thumbFolder.FolderType, storageName); rmErr != nil {
			zap.L().Warn("Failed to clean up thumbnail ciphertext", zap.Error(rmErr))
		}

		return "", fmt.Errorf("failed to save thumbnail record, %w", err)
	}

	return thumb.ID, nil
}
