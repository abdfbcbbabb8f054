// Package comments is responsible for all functionalities related to article comments:
// listing the comments of an article, adding one, and deleting one's own comments.
// It follows the modular structure seen in other parts of the application (e.g., `auth`, `articles`).
package comments

import (
	"github.com/devactivity/dasar-actix-web/articles"
)

// Comment is a single comment as returned to API clients.
// The author is rendered exactly like the author of an article, including the
// viewer-relative `following` flag.
type Comment struct {
	ID        int32               `json:"id" example:"1"`
	CreatedAt articles.Timestamp  `json:"createdAt" swaggertype:"string" example:"2024-01-02T03:04:05.678Z"`
	UpdatedAt articles.Timestamp  `json:"updatedAt" swaggertype:"string" example:"2024-01-02T03:04:05.678Z"`
	Body      string              `json:"body" example:"Great article!"`
	Author    articles.AuthorView `json:"author"`
}

// NewComment is the body of a comment to add.
type NewComment struct {
	// `notblank` rejects bodies made only of whitespace; the size limit is checked by the service.
	Body string `json:"body" validate:"required,notblank" example:"Great article!"`
}

// NewCommentRequest is the envelope of the add payload: {"comment": {...}}.
type NewCommentRequest struct {
	Comment NewComment `json:"comment"`
}

// CommentResponse wraps a single comment: {"comment": {...}}.
type CommentResponse struct {
	Comment Comment `json:"comment"`
}

// CommentsResponse wraps the comments of an article: {"comments": [...]}.
type CommentsResponse struct {
	Comments []Comment `json:"comments"`
}
