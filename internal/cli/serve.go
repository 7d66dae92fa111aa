package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	openailib "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/odontoprint/gapheal/internal/api/handlers"
	"github.com/odontoprint/gapheal/internal/config"
	"github.com/odontoprint/gapheal/internal/database"
	"github.com/odontoprint/gapheal/internal/domain"
	"github.com/odontoprint/gapheal/internal/jobs"
	"github.com/odontoprint/gapheal/internal/openai"
	"github.com/odontoprint/gapheal/internal/repository"
	"github.com/odontoprint/gapheal/internal/search"
	"github.com/odontoprint/gapheal/internal/server"
	"github.com/odontoprint/gapheal/internal/service"
	"github.com/odontoprint/gapheal/internal/storage"
	"github.com/odontoprint/gapheal/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the gapheal API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	gapRepo := repository.NewGapRepository(pool)
	draftRepo := repository.NewDraftRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(apiKeyRepo, uuidGen)

	if cfg.InitAPIKeyName != "" {
		if err := bootstrapInitialKey(ctx, cfg.InitAPIKeyName, apiKeyRepo, authSvc); err != nil {
			return fmt.Errorf("failed to bootstrap initial API key: %w", err)
		}
	}

	healingSvc, searchIndexer, err := buildHealingService(ctx, cfg, pool, gapRepo, draftRepo)
	if err != nil {
		return err
	}

	publisher := service.NewPublisher()
	reviewSvc := service.NewReviewService(draftRepo, txRunner, publisher, searchIndexer)

	var healer handlers.HealingRunner = healingSvc
	if healingSvc == nil {
		healer = &noOpHealer{}
	}
	healingHandler := handlers.NewHealingHandler(healer, reviewSvc)

	var healWorker *jobs.Worker
	if healingSvc != nil && cfg.HealInterval > 0 {
		healWorker = jobs.NewWorker(jobs.NewHealWorker(healingSvc), cfg.HealInterval)
		go healWorker.Start(ctx)
		log.Printf("heal worker started (interval: %v)", cfg.HealInterval)
	}

	router := server.NewRouter(server.RouterConfig{
		AuthValidator:  authSvc,
		HealingHandler: healingHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if healWorker != nil {
		healWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// buildHealingService wires the full pipeline when an OpenAI key is
// configured. Without one the generate action is unavailable but the
// review actions keep working.
func buildHealingService(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, gapRepo *repository.GapRepository, draftRepo *repository.DraftRepository) (*service.HealingService, service.SearchIndexer, error) {
	if !cfg.HasOpenAI() {
		log.Println("OPENAI_API_KEY not set: generate action disabled")
		return nil, nil, nil
	}

	client := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      openailib.EmbeddingModel(cfg.EmbeddingModel),
		ChatModel:           cfg.ChatModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		CallInterval:        cfg.ProviderDelay,
		MaxRetries:          cfg.ProviderMaxRetries,
	})

	noise := service.NewNoiseFilter(noiseConfig(cfg))
	clusterer := service.NewGapClusterer(cfg.SimilarityThreshold)
	generator := service.NewDraftGenerator(client)

	healingSvc := service.NewHealingService(gapRepo, draftRepo, client, noise, clusterer, generator)

	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		healingSvc = healingSvc.WithArtifactStore(s3Client)
	}

	indexer := search.NewPgVectorIndexer(pool, client)
	return healingSvc, indexer, nil
}

func noiseConfig(cfg *config.Config) service.NoiseFilterConfig {
	nc := service.DefaultNoiseFilterConfig()
	if cfg.MinQuestionLength > 0 {
		nc.MinQuestionLength = cfg.MinQuestionLength
	}
	return nc
}

func bootstrapInitialKey(ctx context.Context, name string, apiKeyRepo *repository.APIKeyRepository, authSvc *service.AuthService) error {
	keys, err := apiKeyRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list existing keys: %w", err)
	}
	for _, key := range keys {
		if key.Name == name && !key.IsRevoked() {
			log.Printf("bootstrap: API key '%s' already exists (id: %s)", name, key.ID)
			return nil
		}
	}

	plaintext, err := authSvc.CreateAPIKey(ctx, name, domain.APIKeyRoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}
	log.Printf("bootstrap: created admin API key '%s'", name)
	log.Printf("bootstrap: token (shown once): %s", plaintext)
	return nil
}

type noOpHealer struct{}

func (h *noOpHealer) Heal(ctx context.Context) (*service.HealReport, error) {
	return nil, fmt.Errorf("healing not configured: OPENAI_API_KEY required")
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, err
	}

	return pool, nil
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
