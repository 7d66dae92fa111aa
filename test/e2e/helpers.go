//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/odontoprint/gapheal/internal/api/handlers"
	"github.com/odontoprint/gapheal/internal/domain"
	"github.com/odontoprint/gapheal/internal/repository"
	"github.com/odontoprint/gapheal/internal/search"
	"github.com/odontoprint/gapheal/internal/server"
	"github.com/odontoprint/gapheal/internal/service"
	"github.com/odontoprint/gapheal/internal/testutil"
)

const embeddingDims = 1536

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	GapRepo      *repository.GapRepository
	AdminToken   string
	ViewerToken  string
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with a database
// container and an in-process server. The OpenAI provider is replaced
// by deterministic stubs so runs are reproducible and offline.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, port)

	env := &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		GapRepo:      repository.NewGapRepository(pool),
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}

	return env
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// Bootstrap mints an admin and a viewer API key for testing
func (e *E2ETestEnv) Bootstrap() {
	authSvc := service.NewAuthService(repository.NewAPIKeyRepository(e.Pool), &service.DefaultUUIDGenerator{})

	adminToken, err := authSvc.CreateAPIKey(e.Ctx, "e2e-admin-key", domain.APIKeyRoleAdmin)
	if err != nil {
		e.T.Fatalf("failed to create admin key: %v", err)
	}
	e.AdminToken = adminToken

	viewerToken, err := authSvc.CreateAPIKey(e.Ctx, "e2e-viewer-key", domain.APIKeyRoleViewer)
	if err != nil {
		e.T.Fatalf("failed to create viewer key: %v", err)
	}
	e.ViewerToken = viewerToken
}

// SeedGap inserts a pending gap directly into the database
func (e *E2ETestEnv) SeedGap(question string, frequency int32) *domain.Gap {
	gap := domain.NewGap(uuid.NewString(), question, frequency, domain.GapStatusPending, time.Now().UTC().Truncate(time.Microsecond))
	if err := e.GapRepo.Create(e.Ctx, gap); err != nil {
		e.T.Fatalf("failed to seed gap: %v", err)
	}
	return gap
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path, authToken string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, authToken)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}, authToken string) (*APIResponse, error) {
	return e.doRequest("POST", path, body, authToken)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, authToken string) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// startServer starts the HTTP server with all handlers
func startServer(t *testing.T, pool *pgxpool.Pool, port int) (string, func()) {
	gapRepo := repository.NewGapRepository(pool)
	draftRepo := repository.NewDraftRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(apiKeyRepo, uuidGen)

	embedder := &topicEmbedder{}
	healer := service.NewHealingService(
		gapRepo,
		draftRepo,
		embedder,
		service.NewNoiseFilter(service.NoiseFilterConfig{}),
		service.NewGapClusterer(0),
		&templateGenerator{},
	)

	indexer := search.NewPgVectorIndexer(pool, embedder)
	reviewSvc := service.NewReviewService(draftRepo, txRunner, service.NewPublisher(), indexer)

	healingHandler := handlers.NewHealingHandler(healer, reviewSvc)

	router := server.NewRouter(server.RouterConfig{
		AuthValidator:  authSvc,
		HealingHandler: healingHandler,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// topics maps a question keyword to a dedicated embedding dimension,
// so questions about the same topic get identical vectors and
// questions about different topics are orthogonal.
var topics = []struct {
	keyword   string
	dimension int
}{
	{"guia", 0},
	{"calibr", 1},
	{"armazen", 2},
}

// topicEmbedder is a deterministic stand-in for the embedding provider
type topicEmbedder struct{}

func (e *topicEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	v := make([]float32, embeddingDims)
	lower := strings.ToLower(text)
	for _, topic := range topics {
		if strings.Contains(lower, topic.keyword) {
			v[topic.dimension] = 1
			return v, nil
		}
	}
	v[len(topics)] = 1
	return v, nil
}

// templateGenerator is a deterministic stand-in for the LLM generator
type templateGenerator struct{}

func (g *templateGenerator) Generate(ctx context.Context, cluster domain.Cluster) (*service.GenerationResult, error) {
	centroid := cluster.Centroid.Gap.Question

	faqs := make([]domain.FAQ, 0, cluster.Size())
	for _, question := range cluster.Questions() {
		faqs = append(faqs, domain.FAQ{
			Question: question,
			Answer:   "Resposta gerada para: " + question,
		})
	}

	draft := domain.NewDraft(
		uuid.NewString(),
		centroid,
		"FAQ sobre "+centroid,
		faqs,
		[]string{"resina", "impressão 3d"},
		cluster.GapIDs(),
		cluster.Questions(),
		time.Now().UTC(),
	)

	raw, err := json.Marshal(faqs)
	if err != nil {
		return nil, err
	}

	return &service.GenerationResult{Draft: draft, RawResponse: string(raw)}, nil
}
