package domain

import (
	"fmt"
	"time"
)

// PublishedContent is a knowledge-base FAQ article created from an
// approved draft.
type PublishedContent struct {
	ID         string
	Slug       string
	Title      string
	Excerpt    string
	FAQs       []FAQ
	Keywords   []string
	CategoryID *string
	CreatedAt  time.Time
}

// ValidatePublishedContent validates a PublishedContent instance
func ValidatePublishedContent(c *PublishedContent) error {
	if c == nil {
		return fmt.Errorf("published content cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("published content ID is required")
	}

	if c.Slug == "" {
		return fmt.Errorf("published content Slug is required")
	}

	if c.Title == "" {
		return fmt.Errorf("published content Title is required")
	}

	if len(c.FAQs) == 0 {
		return fmt.Errorf("published content must contain at least one FAQ")
	}

	return nil
}
