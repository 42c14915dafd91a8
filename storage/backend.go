// Package storage maps (owner, folder) pairs onto physical object
// stores and hands out opaque object names. Metadata is the source of
// truth for existence, so removal of an already absent object is
// always a no-op here, never an error.
package storage

import (
	"context"

	"bitwise74/drive-api/model"

	"github.com/google/uuid"
)

// Folder types an owner is provisioned with.
var FolderTypes = []string{
	model.FolderPhotos,
	model.FolderVideos,
	model.FolderThumbnails,
	model.FolderFiles,
}

// Backend stores raw ciphertext blobs under <owner>/<folderType>/<name>.
type Backend interface {
	// Provision prepares the four fixed folders for an owner. Idempotent.
	Provision(ctx context.Context, username string) error

	Write(ctx context.Context, username, folderType, name string, data []byte) error

	// Read returns the stored bytes. A missing object surfaces as an
	// error matching fs.ErrNotExist regardless of the backend.
	Read(ctx context.Context, username, folderType, name string) ([]byte, error)

	// Remove deletes the object, treating "already gone" as success.
	Remove(ctx context.Context, username, folderType, name string) error
}

// NewObjectName generates a collision-resistant on-disk object name.
// The fixed extension keeps desktop indexers from sniffing ciphertext.
func NewObjectName() string {
	return uuid.NewString() + ".dat"
}
