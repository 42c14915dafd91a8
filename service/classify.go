package service

import (
	"strings"

	"bitwise74/drive-api/model"

	"github.com/gabriel-vasile/mimetype"
)

var documentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.ms-powerpoint":                                             true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"application/rtf":          true,
	"application/vnd.oasis.opendocument.text": true,
}

// Classify determines the MIME type and category of an upload. The
// declared type is only trusted when it says something, browsers send
// application/octet-stream for anything they don't recognize, so in
// that case the content itself is sniffed.
func Classify(declaredMIME string, data []byte) (mime, fileType string) {
	mime = strings.ToLower(strings.TrimSpace(declaredMIME))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}

	if mime == "" || mime == "application/octet-stream" {
		mime = mimetype.Detect(data).String()
		if i := strings.Index(mime, ";"); i >= 0 {
			mime = strings.TrimSpace(mime[:i])
		}
	}

	switch {
	case strings.HasPrefix(mime, "image/"):
		fileType = model.TypeImage
	case strings.HasPrefix(mime, "video/"):
		fileType = model.TypeVideo
	case strings.HasPrefix(mime, "text/"), documentTypes[mime]:
		fileType = model.TypeDocument
	default:
		fileType = model.TypeOther
	}

	return mime, fileType
}

// folderFor maps a file category onto the folder its ciphertext is
// stored under. Documents and unknown types share the files folder.
func folderFor(fileType string) string {
	switch fileType {
	case model.TypeImage:
		return model.FolderPhotos
	case model.TypeVideo:
		return model.FolderVideos
	default:
		return model.FolderFiles
	}
}
