// Package search maintains the incremental vector index over
// published knowledge-base articles.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/odontoprint/gapheal/internal/domain"
)

// Embedder defines the interface for generating embeddings
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PgVectorIndexer embeds a published article and upserts its vector
// into the content_embeddings table. Callers treat indexing as
// best-effort: a failed upsert never affects the publish itself.
type PgVectorIndexer struct {
	db       execer
	embedder Embedder
}

func NewPgVectorIndexer(pool *pgxpool.Pool, embedder Embedder) *PgVectorIndexer {
	return &PgVectorIndexer{db: pool, embedder: embedder}
}

// IndexContent re-indexes one article incrementally.
func (ix *PgVectorIndexer) IndexContent(ctx context.Context, content *domain.PublishedContent) error {
	embedding, err := ix.embedder.GenerateEmbedding(ctx, buildContentText(content))
	if err != nil {
		return fmt.Errorf("failed to embed content %s: %w", content.ID, err)
	}

	_, err = ix.db.Exec(ctx,
		`INSERT INTO content_embeddings (content_id, embedding, indexed_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (content_id) DO UPDATE SET embedding = $2, indexed_at = $3`,
		content.ID, pgvector.NewVector(embedding), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert content embedding: %w", err)
	}

	return nil
}

func buildContentText(c *domain.PublishedContent) string {
	var parts []string

	if c.Title != "" {
		parts = append(parts, c.Title)
	}
	if c.Excerpt != "" {
		parts = append(parts, c.Excerpt)
	}
	for _, faq := range c.FAQs {
		parts = append(parts, faq.Question+"\n"+faq.Answer)
	}
	if len(c.Keywords) > 0 {
		parts = append(parts, strings.Join(c.Keywords, ", "))
	}

	return strings.Join(parts, "\n\n")
}
