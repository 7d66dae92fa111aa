package service

import (
	"context"

	"github.com/odontoprint/gapheal/internal/domain"
	"github.com/odontoprint/gapheal/internal/metrics"
	"github.com/odontoprint/gapheal/internal/telemetry"
)

// ApproveInput represents the input for approving a draft. Override
// fields default to the draft's own values when empty.
type ApproveInput struct {
	DraftID    string
	Title      string
	Excerpt    string
	FAQs       []domain.FAQ
	Keywords   []string
	CategoryID *string
	ReviewedBy string
}

// ApproveOutput carries the result of a successful approval.
type ApproveOutput struct {
	ContentID string
	Slug      string
}

// ReviewService drives the draft review workflow: draft -> approved or
// draft -> rejected, both terminal. Approval publishes the draft into
// the knowledge base; rejection has no side effects beyond the status
// flip.
type ReviewService struct {
	draftRepo DraftRepositoryInterface
	txRunner  TxRunner
	publisher *Publisher
	indexer   SearchIndexer
}

// NewReviewService creates a new ReviewService instance
func NewReviewService(draftRepo DraftRepositoryInterface, txRunner TxRunner, publisher *Publisher, indexer SearchIndexer) *ReviewService {
	return &ReviewService{
		draftRepo: draftRepo,
		txRunner:  txRunner,
		publisher: publisher,
		indexer:   indexer,
	}
}

// ListDrafts returns all drafts, most recent first.
func (s *ReviewService) ListDrafts(ctx context.Context) ([]*domain.Draft, error) {
	return s.draftRepo.List(ctx)
}

// Approve publishes a draft and flips it to approved. All durable
// writes (article creation, gap resolution, status flip) happen in one
// transaction, with the status flip as a compare-and-swap last. If the
// publish fails or the swap loses to a concurrent review, the whole
// transaction rolls back and the draft remains a draft, so the
// operation is safely retryable. Re-indexing happens best-effort after
// commit.
func (s *ReviewService) Approve(ctx context.Context, input ApproveInput) (*ApproveOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "ReviewService.Approve", telemetry.SpanAttributes{
		DraftID:   input.DraftID,
		Operation: "approve",
	})
	defer span.End()

	if input.DraftID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "draft_id is required")
	}

	draft, err := s.draftRepo.GetByID(ctx, input.DraftID)
	if err != nil {
		return nil, err
	}

	if !draft.IsReviewable() {
		return nil, domain.ErrDraftAlreadyReviewed
	}

	publish := PublishInput{
		Draft:      draft,
		Title:      draft.Title,
		Excerpt:    draft.Excerpt,
		FAQs:       draft.FAQs,
		Keywords:   draft.Keywords,
		CategoryID: draft.CategoryID,
	}
	if input.Title != "" {
		publish.Title = input.Title
	}
	if input.Excerpt != "" {
		publish.Excerpt = input.Excerpt
	}
	if len(input.FAQs) > 0 {
		publish.FAQs = input.FAQs
	}
	if len(input.Keywords) > 0 {
		publish.Keywords = input.Keywords
	}
	if input.CategoryID != nil {
		publish.CategoryID = input.CategoryID
	}

	var content *domain.PublishedContent
	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		content, err = s.publisher.Publish(ctx, repos.Contents(), repos.Gaps(), publish)
		if err != nil {
			return err
		}
		return repos.Drafts().MarkApproved(ctx, draft.ID, content.ID, input.ReviewedBy)
	})
	if err != nil {
		return nil, err
	}

	metrics.DraftsApproved.Inc()
	s.publisher.NotifyIndexer(ctx, s.indexer, content)

	return &ApproveOutput{ContentID: content.ID, Slug: content.Slug}, nil
}

// Reject flips a draft to rejected. It never mutates any gap.
func (s *ReviewService) Reject(ctx context.Context, draftID, reviewedBy string) error {
	ctx, span := telemetry.StartSpan(ctx, "ReviewService.Reject", telemetry.SpanAttributes{
		DraftID:   draftID,
		Operation: "reject",
	})
	defer span.End()

	if draftID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "draft_id is required")
	}

	draft, err := s.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		return err
	}

	if !draft.IsReviewable() {
		return domain.ErrDraftAlreadyReviewed
	}

	if err := s.draftRepo.MarkRejected(ctx, draftID, reviewedBy); err != nil {
		return err
	}

	metrics.DraftsRejected.Inc()
	return nil
}
