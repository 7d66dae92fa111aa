package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/odontoprint/gapheal/internal/domain"
)

// MockGapRepository is a mock implementation of GapRepositoryInterface
type MockGapRepository struct {
	mock.Mock
}

func (m *MockGapRepository) ListPending(ctx context.Context) ([]*domain.Gap, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Gap), args.Error(1)
}

func (m *MockGapRepository) ResolveBatch(ctx context.Context, ids []string, note string) error {
	args := m.Called(ctx, ids, note)
	return args.Error(0)
}

// MockDraftRepository is a mock implementation of DraftRepositoryInterface
type MockDraftRepository struct {
	mock.Mock
}

func (m *MockDraftRepository) Create(ctx context.Context, d *domain.Draft) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDraftRepository) GetByID(ctx context.Context, id string) (*domain.Draft, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func (m *MockDraftRepository) List(ctx context.Context) ([]*domain.Draft, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Draft), args.Error(1)
}

func (m *MockDraftRepository) MarkApproved(ctx context.Context, id, contentID, reviewedBy string) error {
	args := m.Called(ctx, id, contentID, reviewedBy)
	return args.Error(0)
}

func (m *MockDraftRepository) MarkRejected(ctx context.Context, id, reviewedBy string) error {
	args := m.Called(ctx, id, reviewedBy)
	return args.Error(0)
}

// MockContentRepository is a mock implementation of ContentRepositoryInterface
type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) Create(ctx context.Context, c *domain.PublishedContent) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContentRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

// MockEmbeddingClient is a mock implementation of EmbeddingClient
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockChatClient is a mock implementation of ChatClient
type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) GenerateCompletion(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

// MockDraftGenerator is a mock implementation of DraftGeneratorInterface
type MockDraftGenerator struct {
	mock.Mock
}

func (m *MockDraftGenerator) Generate(ctx context.Context, cluster domain.Cluster) (*GenerationResult, error) {
	args := m.Called(ctx, cluster)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*GenerationResult), args.Error(1)
}

// MockSearchIndexer is a mock implementation of SearchIndexer
type MockSearchIndexer struct {
	mock.Mock
}

func (m *MockSearchIndexer) IndexContent(ctx context.Context, content *domain.PublishedContent) error {
	args := m.Called(ctx, content)
	return args.Error(0)
}

// MockArtifactStore is a mock implementation of ArtifactStore
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) PutGenerationArtifact(ctx context.Context, runID string, clusterIndex int, raw string) error {
	args := m.Called(ctx, runID, clusterIndex, raw)
	return args.Error(0)
}

// MockAPIKeyRepository is a mock implementation of APIKeyRepository
type MockAPIKeyRepository struct {
	mock.Mock
}

func (m *MockAPIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) GetByHash(ctx context.Context, hash string) (*domain.APIKey, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) Revoke(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUUIDGenerator returns a fixed sequence of IDs
type MockUUIDGenerator struct {
	callCount int
	uuids     []string
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	if m.callCount < len(m.uuids) {
		id := m.uuids[m.callCount]
		m.callCount++
		return id
	}
	return "default-uuid"
}

type testTxRepos struct {
	drafts   DraftRepositoryInterface
	gaps     GapRepositoryInterface
	contents ContentRepositoryInterface
}

func (t *testTxRepos) Drafts() DraftRepositoryInterface {
	return t.drafts
}

func (t *testTxRepos) Gaps() GapRepositoryInterface {
	return t.gaps
}

func (t *testTxRepos) Contents() ContentRepositoryInterface {
	return t.contents
}

// testTxRunner runs the transaction body without a real transaction.
// An error from the body stands in for a rollback.
type testTxRunner struct {
	repos  TxRepositories
	called bool
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	return fn(t.repos)
}
