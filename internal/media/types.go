package media

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Kind is the broad media type used by galleries.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".webm": {},
	".m4v":  {},
}

// Asset is a media library entry. Uploaded assets carry the bucket key they
// were written under; externally hosted assets have no StorageKey.
type Asset struct {
	bun.BaseModel `bun:"table:media_assets,alias:ma" json:"-"`

	RowID      uuid.UUID `bun:"id,pk,type:uuid" json:"-"`
	ID         string    `bun:"asset_id,notnull,unique" json:"id"`
	StorageKey string    `bun:"storage_key" json:"storageKey,omitempty"`
	URL        string    `bun:"url,notnull" json:"url"`
	Name       string    `bun:"name" json:"name"`
	Kind       Kind      `bun:"kind,notnull" json:"type"`
	MimeType   string    `bun:"mime_type" json:"mimeType,omitempty"`
	Size       int64     `bun:"size" json:"size,omitempty"`
	Tags       []string  `bun:"tags,type:jsonb" json:"tags"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// External reports whether the asset points at a URL the bucket does not own.
func (a Asset) External() bool {
	return a.StorageKey == ""
}

func (a Asset) Clone() Asset {
	out := a
	if a.Tags != nil {
		out.Tags = append([]string(nil), a.Tags...)
	}
	return out
}

// CloneAll deep-copies a slice of assets.
func CloneAll(items []Asset) []Asset {
	if items == nil {
		return nil
	}
	out := make([]Asset, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

// InferKind classifies by MIME type first and falls back to the file
// extension of name. Anything unrecognised is an image.
func InferKind(mimeType, name string) Kind {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(mimeType, "video/"):
		return KindVideo
	case strings.HasPrefix(mimeType, "image/"):
		return KindImage
	}

	clean := strings.ToLower(name)
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	if _, ok := videoExtensions[path.Ext(clean)]; ok {
		return KindVideo
	}
	return KindImage
}
