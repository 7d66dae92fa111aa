package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odontoprint/gapheal/internal/config"
	"github.com/odontoprint/gapheal/internal/repository"
)

// GenerateCmd returns the generate command, a one-shot healing pass
// without the HTTP server.
func GenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run one gap-healing pass",
		Long:  "Mine pending gaps, cluster them and create FAQ drafts for review",
		RunE:  runGenerate,
	}

	cmd.Flags().StringP("output", "", "text", "Output format (text or json)")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	outputFormat, _ := cmd.Flags().GetString("output")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("OPENAI_API_KEY is required for generation")
	}

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	gapRepo := repository.NewGapRepository(pool)
	draftRepo := repository.NewDraftRepository(pool)

	healingSvc, _, err := buildHealingService(ctx, cfg, pool, gapRepo, draftRepo)
	if err != nil {
		return err
	}

	report, err := healingSvc.Heal(ctx)
	if err != nil {
		return fmt.Errorf("healing pass failed: %w", err)
	}

	if outputFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Gaps analyzed: %d\n", report.GapsAnalyzed)
		fmt.Printf("Noise filtered: %d\n", report.NoiseFiltered)
		fmt.Printf("Clusters found: %d\n", report.ClustersFound)
		fmt.Printf("Embeddings generated: %d\n", report.EmbeddingsGenerated)
		fmt.Printf("Drafts created: %d\n", report.DraftsCreated)
	}

	return nil
}
