package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/odontoprint/gapheal/internal/domain"
)

// GapRepository persists knowledge gaps mined from the assistant's
// question log. Gaps are created by the log-mining process; this
// service only reads pending gaps and flips them to resolved.
type GapRepository struct {
	db dbtx
}

func NewGapRepository(pool *pgxpool.Pool) *GapRepository {
	return &GapRepository{db: pool}
}

func NewGapRepositoryWithTx(tx pgx.Tx) *GapRepository {
	return &GapRepository{db: tx}
}

func (r *GapRepository) Create(ctx context.Context, g *domain.Gap) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO gaps (id, question, frequency, status, resolution_note, created_at, last_seen_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		g.ID, g.Question, g.Frequency, g.Status, g.ResolutionNote, g.CreatedAt, g.LastSeenAt,
	)
	return err
}

func (r *GapRepository) GetByID(ctx context.Context, id string) (*domain.Gap, error) {
	var g domain.Gap
	err := r.db.QueryRow(ctx,
		`SELECT id, question, frequency, status, resolution_note, created_at, last_seen_at
		 FROM gaps WHERE id = $1`,
		id,
	).Scan(&g.ID, &g.Question, &g.Frequency, &g.Status, &g.ResolutionNote, &g.CreatedAt, &g.LastSeenAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGapNotFound
		}
		return nil, err
	}
	return &g, nil
}

// ListPending returns pending gaps ordered by descending frequency,
// then insertion order. The clusterer depends on this ordering: the
// most frequently asked question becomes a cluster centroid first.
func (r *GapRepository) ListPending(ctx context.Context) ([]*domain.Gap, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, question, frequency, status, resolution_note, created_at, last_seen_at
		 FROM gaps WHERE status = $1
		 ORDER BY frequency DESC, created_at ASC, id ASC`,
		domain.GapStatusPending,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGapRows(rows)
}

// ResolveBatch marks every listed gap resolved with the given note.
func (r *GapRepository) ResolveBatch(ctx context.Context, ids []string, note string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.db.Exec(ctx,
		`UPDATE gaps SET status = $1, resolution_note = $2, last_seen_at = $3
		 WHERE id = ANY($4)`,
		domain.GapStatusResolved, note, time.Now().UTC(), ids,
	)
	return err
}

func scanGapRows(rows pgx.Rows) ([]*domain.Gap, error) {
	var gaps []*domain.Gap
	for rows.Next() {
		var g domain.Gap
		if err := rows.Scan(&g.ID, &g.Question, &g.Frequency, &g.Status, &g.ResolutionNote, &g.CreatedAt, &g.LastSeenAt); err != nil {
			return nil, err
		}
		gaps = append(gaps, &g)
	}
	return gaps, rows.Err()
}
