package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/odontoprint/gapheal/internal/domain"
	"github.com/odontoprint/gapheal/internal/metrics"
	"github.com/odontoprint/gapheal/internal/telemetry"
)

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// GapRepositoryInterface defines the repository interface for gap persistence
type GapRepositoryInterface interface {
	ListPending(ctx context.Context) ([]*domain.Gap, error)
	ResolveBatch(ctx context.Context, ids []string, note string) error
}

// DraftRepositoryInterface defines the repository interface for draft persistence
type DraftRepositoryInterface interface {
	Create(ctx context.Context, d *domain.Draft) error
	GetByID(ctx context.Context, id string) (*domain.Draft, error)
	List(ctx context.Context) ([]*domain.Draft, error)
	MarkApproved(ctx context.Context, id, contentID, reviewedBy string) error
	MarkRejected(ctx context.Context, id, reviewedBy string) error
}

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// DraftGeneratorInterface defines the interface for FAQ draft generation
type DraftGeneratorInterface interface {
	Generate(ctx context.Context, cluster domain.Cluster) (*GenerationResult, error)
}

// ArtifactStore archives raw generation responses for audit. It is
// optional and always best-effort.
type ArtifactStore interface {
	PutGenerationArtifact(ctx context.Context, runID string, clusterIndex int, raw string) error
}

// HealReport summarizes one heal run.
type HealReport struct {
	DraftsCreated       int `json:"drafts_created"`
	GapsAnalyzed        int `json:"gaps_analyzed"`
	NoiseFiltered       int `json:"noise_filtered"`
	ClustersFound       int `json:"clusters_found"`
	EmbeddingsGenerated int `json:"embeddings_generated"`
}

// HealingService runs the knowledge-gap healing batch: pending gaps
// are filtered, embedded, clustered and turned into FAQ drafts. The
// run is strictly sequential; failures of one gap or one cluster are
// contained and the run continues.
type HealingService struct {
	gapRepo   GapRepositoryInterface
	draftRepo DraftRepositoryInterface
	embedder  EmbeddingClient
	noise     *NoiseFilter
	clusterer *GapClusterer
	generator DraftGeneratorInterface
	artifacts ArtifactStore
	uuidGen   UUIDGenerator
}

// NewHealingService creates a new HealingService instance
func NewHealingService(
	gapRepo GapRepositoryInterface,
	draftRepo DraftRepositoryInterface,
	embedder EmbeddingClient,
	noise *NoiseFilter,
	clusterer *GapClusterer,
	generator DraftGeneratorInterface,
) *HealingService {
	return &HealingService{
		gapRepo:   gapRepo,
		draftRepo: draftRepo,
		embedder:  embedder,
		noise:     noise,
		clusterer: clusterer,
		generator: generator,
		uuidGen:   &DefaultUUIDGenerator{},
	}
}

// WithArtifactStore enables best-effort archival of raw generation
// responses.
func (s *HealingService) WithArtifactStore(store ArtifactStore) *HealingService {
	s.artifacts = store
	return s
}

// Heal executes one generate run and returns its report. Gaps stay
// pending throughout; only new drafts are created.
func (s *HealingService) Heal(ctx context.Context) (*HealReport, error) {
	ctx, span := telemetry.StartSpan(ctx, "HealingService.Heal", telemetry.SpanAttributes{
		Operation: "heal",
	})
	defer span.End()

	runID := s.uuidGen.NewString()
	report := &HealReport{}

	gaps, err := s.gapRepo.ListPending(ctx)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to list pending gaps", err)
	}
	report.GapsAnalyzed = len(gaps)

	var substantive []*domain.Gap
	for _, gap := range gaps {
		if s.noise.IsNoise(gap.Question) {
			report.NoiseFiltered++
			continue
		}
		substantive = append(substantive, gap)
	}
	metrics.NoiseFiltered.Add(float64(report.NoiseFiltered))

	embedded := make([]domain.EmbeddedGap, 0, len(substantive))
	for _, gap := range substantive {
		vector, err := s.embedder.GenerateEmbedding(ctx, gap.Question)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			log.Printf("heal run %s: skipping gap %s, embedding failed: %v", runID, gap.ID, err)
			continue
		}
		embedded = append(embedded, domain.EmbeddedGap{Gap: gap, Vector: vector})
		report.EmbeddingsGenerated++
	}

	clusters := s.clusterer.Cluster(embedded)
	report.ClustersFound = len(clusters)

	for i, cluster := range clusters {
		result, err := s.generator.Generate(ctx, cluster)
		if result != nil && result.RawResponse != "" {
			s.archive(ctx, runID, i, result.RawResponse)
		}
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			metrics.GenerationFailures.Inc()
			log.Printf("heal run %s: skipping cluster %d (%d gaps): %v", runID, i, cluster.Size(), err)
			continue
		}

		if err := s.draftRepo.Create(ctx, result.Draft); err != nil {
			log.Printf("heal run %s: failed to persist draft for cluster %d: %v", runID, i, err)
			continue
		}
		metrics.DraftsCreated.Inc()
		report.DraftsCreated++
	}

	log.Printf("heal run %s: %d gaps analyzed, %d noise, %d embedded, %d clusters, %d drafts",
		runID, report.GapsAnalyzed, report.NoiseFiltered, report.EmbeddingsGenerated,
		report.ClustersFound, report.DraftsCreated)

	return report, nil
}

func (s *HealingService) archive(ctx context.Context, runID string, clusterIndex int, raw string) {
	if s.artifacts == nil {
		return
	}
	if err := s.artifacts.PutGenerationArtifact(ctx, runID, clusterIndex, raw); err != nil {
		log.Printf("heal run %s: failed to archive cluster %d response: %v", runID, clusterIndex, err)
	}
}
