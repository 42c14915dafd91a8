package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"

	"bitwise74/drive-api/model"

	"gorm.io/gorm"
)

// Retrieve looks up an object by id, enforces ownership, reads the
// ciphertext and returns the verified plaintext with its MIME type.
// Primary files and thumbnails share this contract, thumbnail ids
// resolve the same way file ids do.
//
// A missing row, an owner mismatch and a missing disk object all come
// back as ErrNotFound. A failed tag check comes back as
// security.ErrIntegrityCheckFailed, which is deliberately distinct:
// it means the bytes exist but can't be trusted.
func (f *Files) Retrieve(ctx context.Context, objectID, ownerID string) ([]byte, string, error) {
	var (
		storageName string
		ivHex       string
		tagHex      string
		mime        string
		folderID    string
	)

	var file model.File
	err := f.DB.
		Where("id = ? AND owner_id = ?", objectID, ownerID).
		First(&file).
		Error
	switch {
	case err == nil:
		storageName, ivHex, tagHex, mime, folderID = file.StorageName, file.IV, file.AuthTag, file.MimeType, file.FolderID
	case errors.Is(err, gorm.ErrRecordNotFound):
		var thumb model.Thumbnail
		err := f.DB.
			Where("id = ? AND owner_id = ?", objectID, ownerID).
			First(&thumb).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "", ErrNotFound
			}

			return nil, "", fmt.Errorf("failed to look up object, %w", err)
		}

		storageName, ivHex, tagHex, mime, folderID = thumb.StorageName, thumb.IV, thumb.AuthTag, thumb.MimeType, thumb.FolderID
	default:
		return nil, "", fmt.Errorf("failed to look up object, %w", err)
	}

	user, err := f.user(ownerID)
	if err != nil {
		return nil, "", err
	}

	folderType, err := f.folderType(folderID)
	if err != nil {
		return nil, "", err
	}

	ciphertext, err := f.Store.Read(ctx, user.Username, folderType, storageName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", ErrNotFound
		}

		return nil, "", fmt.Errorf("%w: %s", ErrStorageUnavailable, err)
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return nil, "", fmt.Errorf("malformed IV in metadata, %w", err)
	}

	tag, err := hex.DecodeString(tagHex)
	if err != nil {
		return nil, "", fmt.Errorf("malformed auth tag in metadata, %w", err)
	}

	plaintext, err := f.Engine.Decrypt(ciphertext, iv, tag)
	if err != nil {
		return nil, "", err
	}

	return plaintext, mime, nil
}

// RetrieveThumbnail resolves a file id to its thumbnail's plaintext.
// Returns ErrNotFound when the file has no preview.
func (f *Files) RetrieveThumbnail(ctx context.Context, fileID, ownerID string) ([]byte, string, error) {
	var file model.File

	err := f.DB.
		Where("id = ? AND owner_id = ?", fileID, ownerID).
		First(&file).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNotFound
		}

		return nil, "", fmt.Errorf("failed to look up file, %w", err)
	}

	if file.ThumbnailID == nil {
		return nil, "", ErrNotFound
	}

	return f.Retrieve(ctx, *file.ThumbnailID, ownerID)
}
