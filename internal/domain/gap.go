package domain

import (
	"fmt"
	"time"
)

// GapStatus represents the resolution state of a knowledge gap
type GapStatus string

const (
	GapStatusPending  GapStatus = "pending"
	GapStatusResolved GapStatus = "resolved"
)

// Gap represents a user question the assistant could not answer
// satisfactorily. Gaps are created by the log-mining process; this
// service only flips Status to resolved, never deletes.
type Gap struct {
	ID             string
	Question       string
	Frequency      int32
	Status         GapStatus
	ResolutionNote *string
	CreatedAt      time.Time
	LastSeenAt     time.Time
}

// NewGap creates a new Gap instance
func NewGap(id, question string, frequency int32, status GapStatus, createdAt time.Time) *Gap {
	return &Gap{
		ID:         id,
		Question:   question,
		Frequency:  frequency,
		Status:     status,
		CreatedAt:  createdAt,
		LastSeenAt: createdAt,
	}
}

// IsResolved returns true if the gap has been resolved
func (g *Gap) IsResolved() bool {
	return g.Status == GapStatusResolved
}

// ValidateGap validates a Gap instance
func ValidateGap(g *Gap) error {
	if g == nil {
		return fmt.Errorf("gap cannot be nil")
	}

	if g.ID == "" {
		return fmt.Errorf("gap ID is required")
	}

	if g.Question == "" {
		return fmt.Errorf("gap Question is required")
	}

	if g.Frequency < 1 {
		return fmt.Errorf("gap Frequency must be at least 1")
	}

	if !isValidGapStatus(g.Status) {
		return fmt.Errorf("gap Status is invalid: %s", g.Status)
	}

	return nil
}

// isValidGapStatus checks if a GapStatus is valid
func isValidGapStatus(s GapStatus) bool {
	switch s {
	case GapStatusPending, GapStatusResolved:
		return true
	}
	return false
}
