package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/odontoprint/gapheal/internal/service"
)

// HealRunner defines the interface for running a healing pass
type HealRunner interface {
	Heal(ctx context.Context) (*service.HealReport, error)
}

// HealWorker runs periodic healing passes over pending gaps
type HealWorker struct {
	healer HealRunner
}

// NewHealWorker creates a new HealWorker instance
func NewHealWorker(healer HealRunner) *HealWorker {
	return &HealWorker{healer: healer}
}

// ProcessJobs implements the JobProcessor interface
func (w *HealWorker) ProcessJobs(ctx context.Context) error {
	report, err := w.healer.Heal(ctx)
	if err != nil {
		return fmt.Errorf("healing pass failed: %w", err)
	}

	if report.GapsAnalyzed == 0 {
		return nil
	}

	log.Printf("Healing pass done: %d gaps analyzed, %d noise, %d clusters, %d drafts created",
		report.GapsAnalyzed, report.NoiseFiltered, report.ClustersFound, report.DraftsCreated)
	return nil
}
