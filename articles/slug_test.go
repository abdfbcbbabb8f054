package articles

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeID(t *testing.T) {
	id := uuid.New()

	encoded := EncodeID(id)

	assert.Len(t, encoded, 22)
	decoded, err := base64.RawURLEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, id[:], decoded)
}

func TestMakeSlug(t *testing.T) {
	id := uuid.New()
	prefix := EncodeID(id)

	assert.Equal(t, prefix+"-my-topic", MakeSlug(id, "My Topic"))
	assert.Equal(t, prefix+"-hello-world", MakeSlug(id, "Hello, World!"))
	assert.Equal(t, prefix, MakeSlug(id, "!!!"))
}

func TestMakeSlug_SameTitleDifferentArticles(t *testing.T) {
	a := MakeSlug(uuid.New(), "Same Title")
	b := MakeSlug(uuid.New(), "Same Title")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "-same-title"))
	assert.True(t, strings.HasSuffix(b, "-same-title"))
}

func TestMakeSlug_Deterministic(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, MakeSlug(id, "Go Concurrency Patterns"), MakeSlug(id, "Go Concurrency Patterns"))
}
