package service

import (
	"errors"
	"fmt"

	"bitwise74/drive-api/model"
	"bitwise74/drive-api/security"
	"bitwise74/drive-api/storage"

	"gorm.io/gorm"
)

// Files is the storage engine facade. Every operation is scoped by the
// owner's id, there is no way to reach another owner's objects through
// this type.
type Files struct {
	DB     *gorm.DB
	Engine *security.Engine
	Store  storage.Backend
	Thumbs *Thumbnailer

	// LimitBytes is the owner's plan quota, injected by the caller.
	// Zero means unlimited
	LimitBytes int64
}

func NewFiles(db *gorm.DB, engine *security.Engine, store storage.Backend, thumbs *Thumbnailer, limitBytes int64) *Files {
	return &Files{
		DB:         db,
		Engine:     engine,
		Store:      store,
		Thumbs:     thumbs,
		LimitBytes: limitBytes,
	}
}

func (f *Files) user(ownerID string) (*model.User, error) {
	var u model.User

	err := f.DB.
		Where("id = ?", ownerID).
		First(&u).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to load user, %w", err)
	}

	return &u, nil
}

// folders returns the owner's folder rows keyed by folder type. All
// four must exist, a missing one means provisioning never ran and is a
// configuration problem rather than something a retry can fix.
func (f *Files) folders(ownerID string) (map[string]model.Folder, error) {
	var rows []model.Folder

	err := f.DB.
		Where("owner_user_id = ?", ownerID).
		Find(&rows).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to load folders, %w", err)
	}

	out := make(map[string]model.Folder, len(rows))
	for _, r := range rows {
		out[r.FolderType] = r
	}

	for _, ft := range storage.FolderTypes {
		if _, ok := out[ft]; !ok {
			return nil, fmt.Errorf("%w: owner folders are not provisioned", ErrStorageUnavailable)
		}
	}

	return out, nil
}

func (f *Files) folderType(folderID string) (string, error) {
	var folder model.Folder

	err := f.DB.
		Where("id = ?", folderID).
		First(&folder).
		Error
	if err != nil {
		return "", fmt.Errorf("failed to load folder, %w", err)
	}

	return folder.FolderType, nil
}
