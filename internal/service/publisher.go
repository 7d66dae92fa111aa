package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/odontoprint/gapheal/internal/domain"
)

const (
	// slugSuffix marks auto-generated FAQ articles in the knowledge base.
	slugSuffix = "-faq-auto"
	// maxSlugAttempts bounds collision resolution with numeric suffixes.
	maxSlugAttempts = 25
)

// ContentRepositoryInterface defines the repository interface for
// knowledge-base articles
type ContentRepositoryInterface interface {
	Create(ctx context.Context, c *domain.PublishedContent) error
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// SearchIndexer re-indexes a published article incrementally. Failures
// are logged and swallowed: indexing never rolls back a publish.
type SearchIndexer interface {
	IndexContent(ctx context.Context, content *domain.PublishedContent) error
}

// PublishInput carries the effective (override-resolved) fields of a
// draft being approved.
type PublishInput struct {
	Draft      *domain.Draft
	Title      string
	Excerpt    string
	FAQs       []domain.FAQ
	Keywords   []string
	CategoryID *string
}

// Publisher turns an approved draft into a permanent knowledge-base
// article and resolves its source gaps. Publish performs the durable
// writes; the caller runs it inside a transaction and flips the draft
// status as the final write of the same transaction.
type Publisher struct {
	uuidGen UUIDGenerator
}

// NewPublisher creates a new Publisher instance
func NewPublisher() *Publisher {
	return &Publisher{uuidGen: &DefaultUUIDGenerator{}}
}

// NewPublisherWithUUIDGen creates a Publisher with a custom UUID
// generator (for testing)
func NewPublisherWithUUIDGen(uuidGen UUIDGenerator) *Publisher {
	return &Publisher{uuidGen: uuidGen}
}

// Publish creates the knowledge-base article under a collision-free
// slug and marks every source gap resolved with a note referencing the
// slug.
func (p *Publisher) Publish(ctx context.Context, contents ContentRepositoryInterface, gaps GapRepositoryInterface, input PublishInput) (*domain.PublishedContent, error) {
	slug, err := p.resolveSlug(ctx, contents, input.Title)
	if err != nil {
		return nil, err
	}

	content := &domain.PublishedContent{
		ID:         p.uuidGen.NewString(),
		Slug:       slug,
		Title:      input.Title,
		Excerpt:    input.Excerpt,
		FAQs:       input.FAQs,
		Keywords:   input.Keywords,
		CategoryID: input.CategoryID,
		CreatedAt:  time.Now().UTC(),
	}

	if err := domain.ValidatePublishedContent(content); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid published content", err)
	}

	if err := contents.Create(ctx, content); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to create published content", err)
	}

	note := fmt.Sprintf("Respondido pela FAQ publicada em /faq/%s", slug)
	if err := gaps.ResolveBatch(ctx, input.Draft.GapIDs, note); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to resolve source gaps", err)
	}

	return content, nil
}

// NotifyIndexer triggers incremental re-indexing of the new article.
// Best-effort: errors are logged, never surfaced.
func (p *Publisher) NotifyIndexer(ctx context.Context, indexer SearchIndexer, content *domain.PublishedContent) {
	if indexer == nil {
		return
	}
	if err := indexer.IndexContent(ctx, content); err != nil {
		log.Printf("reindex notification failed for content %s (%s): %v", content.ID, content.Slug, err)
	}
}

// resolveSlug computes a URL-safe slug from the title and resolves
// collisions with a numeric suffix, starting at 2.
func (p *Publisher) resolveSlug(ctx context.Context, contents ContentRepositoryInterface, title string) (string, error) {
	base := Slugify(title) + slugSuffix

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		candidate := base
		if attempt > 1 {
			candidate = fmt.Sprintf("%s-%d", base, attempt)
		}

		exists, err := contents.SlugExists(ctx, candidate)
		if err != nil {
			return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to check slug", err)
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", domain.ErrSlugExhausted
}

// accentFolds maps the accented characters common in Portuguese
// titles to their ASCII equivalents.
var accentFolds = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n',
}

// Slugify lowercases the title, folds accents and collapses everything
// that is not alphanumeric into single hyphens.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true

	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if folded, ok := accentFolds[r]; ok {
			r = folded
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	return strings.Trim(b.String(), "-")
}
