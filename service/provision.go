package service

import (
	"context"
	"fmt"
	"time"

	"bitwise74/drive-api/model"
	"bitwise74/drive-api/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var folderDisplayNames = map[string]string{
	model.FolderPhotos:     "My Photos",
	model.FolderVideos:     "My Videos",
	model.FolderThumbnails: "My Thumbnails",
	model.FolderFiles:      "My Files",
}

// ProvisionOwner creates the owner's user row, the four fixed folder
// rows and their physical directories. Called once by the account
// creation glue, safe to call again.
func (f *Files) ProvisionOwner(ctx context.Context, ownerID, username string) error {
	user := model.User{
		ID:        ownerID,
		Username:  username,
		CreatedAt: time.Now(),
	}

	err := f.DB.
		FirstOrCreate(&user, model.User{ID: ownerID}).
		Error
	if err != nil {
		return fmt.Errorf("failed to create user record, %w", err)
	}

	if err := f.Store.Provision(ctx, user.Username); err != nil {
		return fmt.Errorf("%w: %s", ErrStorageUnavailable, err)
	}

	for _, ft := range storage.FolderTypes {
		folder := model.Folder{
			ID:          uuid.NewString(),
			OwnerUserID: ownerID,
			Name:        folderDisplayNames[ft],
			FolderType:  ft,
			CreatedAt:   time.Now(),
		}

		err := f.DB.
			Where("owner_user_id = ? AND folder_type = ?", ownerID, ft).
			FirstOrCreate(&folder).
			Error
		if err != nil {
			return fmt.Errorf("failed to create folder record, %w", err)
		}
	}

	zap.L().Debug("Owner provisioned", zap.String("userID", ownerID))

	return nil
}
