// Package media issues presigned PUT URLs against S3-compatible object
// storage so clients upload course assets directly, bypassing the API.
package media

import (
	"path"
	"strings"
)

// Kind groups uploads by what they are used for; each kind has its own
// extension allow-list.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindFile  Kind = "file"
)

var allowedExtensions = map[Kind][]string{
	KindImage: {".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"},
	KindVideo: {".mp4", ".webm", ".mov"},
	KindFile:  {".pdf", ".zip", ".txt", ".md", ".csv", ".pptx", ".docx", ".xlsx"},
}

// Allowed reports whether the filename's extension is acceptable for the
// kind. Matching is case-insensitive.
func Allowed(kind Kind, filename string) bool {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		return false
	}
	for _, allowed := range allowedExtensions[kind] {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Upload is a granted presigned upload.
type Upload struct {
	// Key is the object key the client must upload to.
	Key string `json:"key"`

	// UploadURL is the presigned PUT URL, valid for a short window.
	UploadURL string `json:"upload_url"`

	// PublicURL is where the object will be readable after upload.
	PublicURL string `json:"public_url"`
}

const (
	FieldKind     = "kind"
	FieldFilename = "filename"
)
