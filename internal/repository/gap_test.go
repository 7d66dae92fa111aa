//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/odontoprint/gapheal/internal/domain"
	"github.com/odontoprint/gapheal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingGap(question string, frequency int32, createdAt time.Time) *domain.Gap {
	return domain.NewGap(uuid.NewString(), question, frequency, domain.GapStatusPending, createdAt)
}

func TestGapRepository_Create(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewGapRepository(pool)

	gap := newPendingGap("Qual resina usar para guias cirúrgicos?", 4, time.Now().UTC().Truncate(time.Microsecond))

	err := repo.Create(ctx, gap)
	require.NoError(t, err)

	retrieved, err := repo.GetByID(ctx, gap.ID)
	require.NoError(t, err)
	assert.Equal(t, gap.ID, retrieved.ID)
	assert.Equal(t, gap.Question, retrieved.Question)
	assert.Equal(t, gap.Frequency, retrieved.Frequency)
	assert.Equal(t, domain.GapStatusPending, retrieved.Status)
	assert.Nil(t, retrieved.ResolutionNote)
}

func TestGapRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewGapRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrGapNotFound)
}

func TestGapRepository_ListPending_Ordering(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewGapRepository(pool)

	base := time.Now().UTC().Truncate(time.Microsecond)
	older := newPendingGap("Qual o prazo de validade das resinas?", 3, base.Add(-2*time.Hour))
	newer := newPendingGap("Como calibrar a impressora?", 3, base.Add(-1*time.Hour))
	top := newPendingGap("Resina biocompatível serve para placas?", 9, base)

	resolved := domain.NewGap(uuid.NewString(), "Como faço login?", 20, domain.GapStatusResolved, base)

	for _, g := range []*domain.Gap{newer, older, top, resolved} {
		require.NoError(t, repo.Create(ctx, g))
	}

	pending, err := repo.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)

	// Highest frequency first, oldest first among ties.
	assert.Equal(t, top.ID, pending[0].ID)
	assert.Equal(t, older.ID, pending[1].ID)
	assert.Equal(t, newer.ID, pending[2].ID)
}

func TestGapRepository_ListPending_Empty(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewGapRepository(pool)

	pending, err := repo.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestGapRepository_ResolveBatch(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewGapRepository(pool)

	base := time.Now().UTC().Truncate(time.Microsecond)
	first := newPendingGap("Quais resinas são compatíveis com a Anycubic?", 5, base)
	second := newPendingGap("Resinas da linha dental funcionam na Anycubic?", 2, base)
	untouched := newPendingGap("Como rastrear meu pedido?", 1, base)

	for _, g := range []*domain.Gap{first, second, untouched} {
		require.NoError(t, repo.Create(ctx, g))
	}

	note := "Respondido pela FAQ publicada em /faq/resinas-compativeis-faq-auto"
	err := repo.ResolveBatch(ctx, []string{first.ID, second.ID}, note)
	require.NoError(t, err)

	for _, id := range []string{first.ID, second.ID} {
		g, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.GapStatusResolved, g.Status)
		require.NotNil(t, g.ResolutionNote)
		assert.Equal(t, note, *g.ResolutionNote)
	}

	g, err := repo.GetByID(ctx, untouched.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.GapStatusPending, g.Status)
	assert.Nil(t, g.ResolutionNote)
}

func TestGapRepository_ResolveBatch_EmptyIDs(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewGapRepository(pool)

	err := repo.ResolveBatch(ctx, nil, "nota")
	assert.NoError(t, err)
}
