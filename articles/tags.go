package articles

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/devactivity/dasar-actix-web/apperror"
	"github.com/devactivity/dasar-actix-web/db"
)

// NormalizeTags trims every tag, drops empty ones and removes duplicates, keeping the first
// occurrence order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// ReplaceTags atomically replaces the tag set of articleID and returns the inserted rows.
// Concurrent replacements of the same article are serialized, so the final set is exactly
// one caller's input and never a mix.
func (s *ArticleService) ReplaceTags(ctx context.Context, articleID uuid.UUID, tags []string) ([]ArticleTag, error) {
	var inserted []ArticleTag
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		inserted, err = replaceTags(ctx, tx, articleID, tags)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

func replaceTags(ctx context.Context, tx pgx.Tx, articleID uuid.UUID, tags []string) ([]ArticleTag, error) {
	// Row lock on the article serializes replacements; a second caller waits here until the
	// first commits and then replaces the committed set.
	var locked uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM articles WHERE id = $1 FOR UPDATE`, articleID).Scan(&locked)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperror.NewNotFoundError("article not found", nil)
		}
		return nil, db.WrapError("failed to lock article", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
		return nil, db.WrapError("failed to clear article tags", err)
	}

	names := NormalizeTags(tags)
	if len(names) == 0 {
		return []ArticleTag{}, nil
	}

	// One statement for the whole set: `unnest` expands the text[] parameter into rows, and
	// pgx encodes the Go []string as a PostgreSQL array.
	rows, err := tx.Query(ctx,
		`INSERT INTO article_tags (article_id, tag_name)
		 SELECT $1::uuid, unnest($2::text[])
		 ON CONFLICT (article_id, tag_name) DO NOTHING
		 RETURNING article_id, tag_name, created_at, updated_at`,
		articleID, names,
	)
	if err != nil {
		return nil, db.WrapError("failed to insert article tags", err)
	}
	// `RowToStructByPos` fills ArticleTag fields in declaration order from the RETURNING columns.
	inserted, err := pgx.CollectRows(rows, pgx.RowToStructByPos[ArticleTag])
	if err != nil {
		return nil, db.WrapError("failed to insert article tags", err)
	}
	return inserted, nil
}

// ListTags returns every distinct tag in use, sorted.
func (s *ArticleService) ListTags(ctx context.Context) ([]string, error) {
	var tags []string
	err := s.db.WithConn(ctx, func(q db.Querier) error {
		rows, err := q.Query(ctx, `SELECT DISTINCT tag_name FROM article_tags ORDER BY tag_name`)
		if err != nil {
			return db.WrapError("failed to list tags", err)
		}
		tags, err = pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return db.WrapError("failed to list tags", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}
