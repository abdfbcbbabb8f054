package articles

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_JSON(t *testing.T) {
	ts := Timestamp(time.Date(2024, 1, 2, 3, 4, 5, 678_000_000, time.UTC))

	b, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-01-02T03:04:05.678Z"`, string(b))

	var back Timestamp
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, time.Time(ts).Equal(time.Time(back)))

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &back))
}

func TestArticleView_JSONShape(t *testing.T) {
	view := ArticleView{
		Slug:    "abc-my-topic",
		Title:   "My Topic",
		TagList: []string{"rust"},
		Author:  AuthorView{Username: "alice"},
	}

	b, err := json.Marshal(ArticleResponse{Article: view})
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	article := decoded["article"]
	for _, key := range []string{"slug", "title", "description", "body", "tagList", "createdAt", "updatedAt", "favorited", "favoritesCount", "author"} {
		assert.Contains(t, article, key)
	}
	author := article["author"].(map[string]any)
	assert.Equal(t, "alice", author["username"])
	assert.Contains(t, author, "bio")
	assert.Equal(t, false, author["following"])
}

func TestPage_Normalize(t *testing.T) {
	assert.Equal(t, Page{Limit: DefaultLimit}, Page{}.Normalize())
	assert.Equal(t, Page{Limit: MaxLimit, Offset: 5}, Page{Limit: 1000, Offset: 5}.Normalize())
	assert.Equal(t, Page{Limit: 10}, Page{Limit: 10, Offset: -3}.Normalize())
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"rust", "web"}, NormalizeTags([]string{" rust ", "web", "rust", "  "}))
	assert.Empty(t, NormalizeTags(nil))
}
