package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/odontoprint/gapheal/internal/domain"
)

// DraftRepository persists FAQ drafts and their review lifecycle.
type DraftRepository struct {
	db dbtx
}

func NewDraftRepository(pool *pgxpool.Pool) *DraftRepository {
	return &DraftRepository{db: pool}
}

func NewDraftRepositoryWithTx(tx pgx.Tx) *DraftRepository {
	return &DraftRepository{db: tx}
}

func (r *DraftRepository) Create(ctx context.Context, d *domain.Draft) error {
	faqs, err := json.Marshal(d.FAQs)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO drafts
			(id, title, excerpt, faqs, keywords, gap_ids, source_questions, status, category_id, published_content_id, created_at, reviewed_at, reviewed_by)
		 VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		d.ID, d.Title, d.Excerpt, faqs, d.Keywords, d.GapIDs, d.SourceQuestions,
		d.Status, d.CategoryID, d.PublishedContentID, d.CreatedAt, d.ReviewedAt, nullableString(d.ReviewedBy),
	)
	return err
}

func (r *DraftRepository) GetByID(ctx context.Context, id string) (*domain.Draft, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, title, excerpt, faqs, keywords, gap_ids, source_questions, status, category_id, published_content_id, created_at, reviewed_at, reviewed_by
		 FROM drafts WHERE id = $1`,
		id,
	)
	d, err := scanDraftRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, err
	}
	return d, nil
}

// List returns all drafts, most recent first.
func (r *DraftRepository) List(ctx context.Context) ([]*domain.Draft, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, excerpt, faqs, keywords, gap_ids, source_questions, status, category_id, published_content_id, created_at, reviewed_at, reviewed_by
		 FROM drafts ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []*domain.Draft
	for rows.Next() {
		d, err := scanDraftRow(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// MarkApproved flips a draft to approved only if it is still a draft.
// The compare-and-swap guards against two concurrent approvals of the
// same draft: the loser gets zero rows and a conflict error, rolling
// back its transaction.
func (r *DraftRepository) MarkApproved(ctx context.Context, id, contentID, reviewedBy string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE drafts
		 SET status = $1, published_content_id = $2, reviewed_at = $3, reviewed_by = $4
		 WHERE id = $5 AND status = $6`,
		domain.DraftStatusApproved, contentID, time.Now().UTC(), nullableString(reviewedBy),
		id, domain.DraftStatusDraft,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDraftReviewConflict
	}
	return nil
}

// MarkRejected flips a draft to rejected only if it is still a draft.
func (r *DraftRepository) MarkRejected(ctx context.Context, id, reviewedBy string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE drafts
		 SET status = $1, reviewed_at = $2, reviewed_by = $3
		 WHERE id = $4 AND status = $5`,
		domain.DraftStatusRejected, time.Now().UTC(), nullableString(reviewedBy),
		id, domain.DraftStatusDraft,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDraftAlreadyReviewed
	}
	return nil
}

func scanDraftRow(row pgx.Row) (*domain.Draft, error) {
	var d domain.Draft
	var faqs []byte
	var reviewedBy *string

	err := row.Scan(&d.ID, &d.Title, &d.Excerpt, &faqs, &d.Keywords, &d.GapIDs, &d.SourceQuestions,
		&d.Status, &d.CategoryID, &d.PublishedContentID, &d.CreatedAt, &d.ReviewedAt, &reviewedBy)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(faqs, &d.FAQs); err != nil {
		return nil, err
	}
	if reviewedBy != nil {
		d.ReviewedBy = *reviewedBy
	}
	return &d, nil
}
