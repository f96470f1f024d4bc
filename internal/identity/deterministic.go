package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-estate"

// ExternalMediaPrefix marks asset ids issued for externally hosted URLs.
const ExternalMediaPrefix = "ext_"

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ListingUUID is the row key backing the listing identified by id.
func ListingUUID(id string) uuid.UUID {
	return UUID(namespace + ":listing:" + strings.TrimSpace(id))
}

// MediaUUID is the row key backing the media asset identified by id.
func MediaUUID(id string) uuid.UUID {
	return UUID(namespace + ":media:" + strings.TrimSpace(id))
}

// AdminUserUUID is the row key for the staff account with the given email.
func AdminUserUUID(email string) uuid.UUID {
	return UUID(namespace + ":admin_user:" + strings.ToLower(strings.TrimSpace(email)))
}

// ExternalMediaID returns a stable asset id for an externally hosted URL so
// registering the same URL twice yields the same record.
func ExternalMediaID(url string) string {
	return ExternalMediaPrefix + strings.ReplaceAll(UUID(namespace+":external_media:"+strings.TrimSpace(url)).String(), "-", "")
}
