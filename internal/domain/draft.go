package domain

import (
	"fmt"
	"time"
)

// DraftStatus represents the review state of an FAQ draft
type DraftStatus string

const (
	DraftStatusDraft    DraftStatus = "draft"
	DraftStatusApproved DraftStatus = "approved"
	DraftStatusRejected DraftStatus = "rejected"
)

// FAQ is a single question/answer pair inside a draft
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Draft represents a generated FAQ proposal derived from one cluster
// of semantically similar gaps. A draft is owned by this service for
// its entire lifecycle. Approved and rejected are terminal states.
type Draft struct {
	ID                 string
	Title              string
	Excerpt            string
	FAQs               []FAQ
	Keywords           []string
	GapIDs             []string
	SourceQuestions    []string
	Status             DraftStatus
	CategoryID         *string
	PublishedContentID *string
	CreatedAt          time.Time
	ReviewedAt         *time.Time
	ReviewedBy         string
}

// NewDraft creates a new Draft in the initial draft status
func NewDraft(id, title, excerpt string, faqs []FAQ, keywords, gapIDs, sourceQuestions []string, createdAt time.Time) *Draft {
	return &Draft{
		ID:              id,
		Title:           title,
		Excerpt:         excerpt,
		FAQs:            faqs,
		Keywords:        keywords,
		GapIDs:          gapIDs,
		SourceQuestions: sourceQuestions,
		Status:          DraftStatusDraft,
		CreatedAt:       createdAt,
	}
}

// IsReviewable returns true if the draft can still be approved or rejected
func (d *Draft) IsReviewable() bool {
	return d.Status == DraftStatusDraft
}

// ValidateDraft validates a Draft instance
func ValidateDraft(d *Draft) error {
	if d == nil {
		return fmt.Errorf("draft cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("draft ID is required")
	}

	if d.Title == "" {
		return fmt.Errorf("draft Title is required")
	}

	if len(d.FAQs) == 0 {
		return fmt.Errorf("draft must contain at least one FAQ")
	}

	for i, faq := range d.FAQs {
		if faq.Question == "" {
			return fmt.Errorf("draft FAQ %d is missing a question", i)
		}
		if faq.Answer == "" {
			return fmt.Errorf("draft FAQ %d is missing an answer", i)
		}
	}

	if len(d.GapIDs) == 0 {
		return fmt.Errorf("draft must reference at least one gap")
	}

	if !isValidDraftStatus(d.Status) {
		return fmt.Errorf("draft Status is invalid: %s", d.Status)
	}

	return nil
}

// isValidDraftStatus checks if a DraftStatus is valid
func isValidDraftStatus(s DraftStatus) bool {
	switch s {
	case DraftStatusDraft, DraftStatusApproved, DraftStatusRejected:
		return true
	}
	return false
}
