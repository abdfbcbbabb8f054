package articles

import (
	"encoding/base64"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// EncodeID renders an article id as 22 URL-safe base64 characters.
func EncodeID(id uuid.UUID) string {
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// MakeSlug derives an article slug: the encoded id, a dash, and the normalized title.
// The id prefix keeps slugs unique when titles collide. A title that normalizes to nothing
// yields the bare id.
func MakeSlug(id uuid.UUID, title string) string {
	prefix := EncodeID(id)
	text := slug.Make(title)
	if text == "" {
		return prefix
	}
	return prefix + "-" + text
}
