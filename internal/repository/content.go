package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/odontoprint/gapheal/internal/domain"
)

// ContentRepository persists published knowledge-base FAQ articles.
type ContentRepository struct {
	db dbtx
}

func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{db: pool}
}

func NewContentRepositoryWithTx(tx pgx.Tx) *ContentRepository {
	return &ContentRepository{db: tx}
}

func (r *ContentRepository) Create(ctx context.Context, c *domain.PublishedContent) error {
	faqs, err := json.Marshal(c.FAQs)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO published_contents (id, slug, title, excerpt, faqs, keywords, category_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Slug, c.Title, c.Excerpt, faqs, c.Keywords, c.CategoryID, c.CreatedAt,
	)
	return err
}

func (r *ContentRepository) GetBySlug(ctx context.Context, slug string) (*domain.PublishedContent, error) {
	var c domain.PublishedContent
	var faqs []byte
	err := r.db.QueryRow(ctx,
		`SELECT id, slug, title, excerpt, faqs, keywords, category_id, created_at
		 FROM published_contents WHERE slug = $1`,
		slug,
	).Scan(&c.ID, &c.Slug, &c.Title, &c.Excerpt, &faqs, &c.Keywords, &c.CategoryID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContentNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(faqs, &c.FAQs); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContentRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM published_contents WHERE slug = $1)`,
		slug,
	).Scan(&exists)
	return exists, err
}
