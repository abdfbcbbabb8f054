// Package articles is the article aggregate: it assembles denormalized article views
// (article + author + tags + favorite count + viewer-relative flags) from the normalized
// tables, and owns every write that touches an article, its tags or its favorites.
package articles

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the wire format of every timestamp in article and comment responses.
// Stored values are naive; they are formatted as-is without any timezone conversion.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp formats a time.Time with TimestampLayout in JSON.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(TimestampLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	*t = Timestamp(parsed)
	return nil
}

// String returns the formatted timestamp.
func (t Timestamp) String() string {
	return time.Time(t).Format(TimestampLayout)
}

// Article is a row of the articles table. Field order matches articleColumns.
type Article struct {
	ID          uuid.UUID
	AuthorID    uuid.UUID
	Slug        string
	Title       string
	Description string
	Body        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ArticleTag is a row of the article_tags table.
type ArticleTag struct {
	ArticleID uuid.UUID `json:"articleId"`
	TagName   string    `json:"tagName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthorView is the public profile of an author as seen by the viewer.
type AuthorView struct {
	Username  string  `json:"username" example:"alice"`
	Bio       *string `json:"bio" example:"I write about Go"`
	Following bool    `json:"following" example:"false"`
}

// ArticleView is the aggregate read model of one article.
type ArticleView struct {
	Slug           string     `json:"slug" example:"Aq3JmX0kS5SxT2sOCk1yGA-my-topic"`
	Title          string     `json:"title" example:"My Topic"`
	Description    string     `json:"description" example:"What this article is about"`
	Body           string     `json:"body" example:"Full text"`
	TagList        []string   `json:"tagList" example:"rust,web"`
	CreatedAt      Timestamp  `json:"createdAt" swaggertype:"string" example:"2024-01-02T03:04:05.678Z"`
	UpdatedAt      Timestamp  `json:"updatedAt" swaggertype:"string" example:"2024-01-02T03:04:05.678Z"`
	Favorited      bool       `json:"favorited" example:"false"`
	FavoritesCount int64      `json:"favoritesCount" example:"0"`
	Author         AuthorView `json:"author"`
}

// ArticleListView is an ordered list of views. ArticlesCount always equals len(Articles).
type ArticleListView struct {
	Articles      []ArticleView `json:"articles"`
	ArticlesCount int           `json:"articlesCount" example:"1"`
}

// ArticleResponse wraps a single view: {"article": {...}}.
type ArticleResponse struct {
	Article ArticleView `json:"article"`
}

// TagsResponse lists every tag in use.
type TagsResponse struct {
	Tags []string `json:"tags" example:"rust,web"`
}

// NewArticle holds the fields of an article to create.
type NewArticle struct {
	Title       string   `json:"title" validate:"required,notblank" example:"My Topic"`
	Description string   `json:"description" validate:"required,notblank" example:"What this article is about"`
	Body        string   `json:"body" validate:"required,notblank" example:"Full text"`
	TagList     []string `json:"tagList" validate:"required,min=1,dive,notblank" example:"rust,web"`
}

// CreateArticleRequest represents the create payload: {"article": {...}}.
type CreateArticleRequest struct {
	Article NewArticle `json:"article"`
}

// ArticleChanges holds a partial update. Nil fields are left unchanged; a non-nil TagList
// replaces the whole tag set.
type ArticleChanges struct {
	Title       *string   `json:"title,omitempty" validate:"omitnil,notblank" example:"A Better Title"`
	Description *string   `json:"description,omitempty" validate:"omitnil,notblank"`
	Body        *string   `json:"body,omitempty" validate:"omitnil,notblank"`
	TagList     *[]string `json:"tagList,omitempty" validate:"omitnil,min=1,dive,notblank"`
}

// UpdateArticleRequest represents the update payload: {"article": {...}}.
type UpdateArticleRequest struct {
	Article ArticleChanges `json:"article"`
}

// Paging defaults and bounds for list endpoints.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page selects a window of a list ordered newest first.
type Page struct {
	Limit  int
	Offset int
}

// Normalize applies the default limit, caps it at MaxLimit and clamps a negative offset to 0.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// ListFilter narrows ListArticles. Nil filters are ignored.
type ListFilter struct {
	Tag       *string
	Author    *string
	Favorited *string
	Page
}
