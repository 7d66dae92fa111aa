package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.AdaEmbeddingV2
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from ada-002
	DefaultEmbeddingDimensions = 1536
	// DefaultChatModel is the model used for FAQ draft generation
	DefaultChatModel = openai.GPT4oMini
	// DefaultCallInterval is the minimum delay between successive API
	// calls. This is a deliberate throughput cap to stay under provider
	// rate limits.
	DefaultCallInterval = 100 * time.Millisecond
	// DefaultMaxRetries bounds retries of a failed call before the
	// failure is surfaced.
	DefaultMaxRetries = 3
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
	// ErrEmptyCompletion is returned when the chat API returns no choices
	ErrEmptyCompletion = errors.New("no completion choices returned")
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// ChatAPI defines the interface for chat completions
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, system, user string) (string, error)
}

// Client wraps the OpenAI API with pacing and bounded retry. Calls are
// issued sequentially; the pacer enforces a minimum delay between
// successive calls of the same kind.
type Client struct {
	embedAPI   EmbeddingAPI
	chatAPI    ChatAPI
	dimensions int
	embedPacer *rate.Limiter
	chatPacer  *rate.Limiter
	maxRetries uint64
}

// OpenAIAdapter implements EmbeddingAPI and ChatAPI against the real
// OpenAI API.
type OpenAIAdapter struct {
	client     *openai.Client
	embedModel openai.EmbeddingModel
	chatModel  string
}

func NewOpenAIAdapter(apiKey string, embedModel openai.EmbeddingModel, chatModel string) *OpenAIAdapter {
	if embedModel == "" {
		embedModel = DefaultEmbeddingModel
	}
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	return &OpenAIAdapter{
		client:     openai.NewClient(apiKey),
		embedModel: embedModel,
		chatModel:  chatModel,
	}
}

// CreateEmbeddings calls the OpenAI API to create embeddings
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: a.embedModel,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

// CreateChatCompletion calls the OpenAI chat API requesting a JSON
// object response.
func (a *OpenAIAdapter) CreateChatCompletion(ctx context.Context, system, user string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	return resp.Choices[0].Message.Content, nil
}

type Config struct {
	APIKey              string
	EmbeddingModel      openai.EmbeddingModel
	ChatModel           string
	EmbeddingDimensions int
	CallInterval        time.Duration
	MaxRetries          int
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	adapter := NewOpenAIAdapter(cfg.APIKey, cfg.EmbeddingModel, cfg.ChatModel)
	return newClient(adapter, adapter, cfg)
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

func newClient(embedAPI EmbeddingAPI, chatAPI ChatAPI, cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	interval := cfg.CallInterval
	if interval <= 0 {
		interval = DefaultCallInterval
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = DefaultMaxRetries
	}
	return &Client{
		embedAPI:   embedAPI,
		chatAPI:    chatAPI,
		dimensions: dimensions,
		embedPacer: rate.NewLimiter(rate.Every(interval), 1),
		chatPacer:  rate.NewLimiter(rate.Every(interval), 1),
		maxRetries: uint64(retries),
	}
}

// GenerateEmbedding generates an embedding for the given text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	if err := c.embedPacer.Wait(ctx); err != nil {
		return nil, err
	}

	embedding, err := retryCall(ctx, c.maxRetries, func() ([]float32, error) {
		return c.embedAPI.CreateEmbeddings(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(embedding) != c.dimensions {
		return nil, ErrWrongDimensions
	}

	return embedding, nil
}

// GenerateCompletion generates a chat completion for the given system
// instruction and user prompt, returning the raw response text.
func (c *Client) GenerateCompletion(ctx context.Context, system, user string) (string, error) {
	if user == "" {
		return "", ErrEmptyText
	}

	if err := c.chatPacer.Wait(ctx); err != nil {
		return "", err
	}

	content, err := retryCall(ctx, c.maxRetries, func() (string, error) {
		return c.chatAPI.CreateChatCompletion(ctx, system, user)
	})
	if err != nil {
		return "", fmt.Errorf("failed to create completion: %w", err)
	}

	return content, nil
}

// retryCall retries op with exponential backoff. Only transient
// failures are retried: rate limits, 5xx responses and transport
// errors. 4xx validation failures surface immediately.
func retryCall[T any](ctx context.Context, maxRetries uint64, op func() (T, error)) (T, error) {
	wrapped := func() (T, error) {
		result, err := op()
		if err != nil && !isRetryable(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries),
		ctx,
	)
	return backoff.RetryWithData(wrapped, policy)
}

func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Transport-level failures (timeouts, connection resets) are
	// worth retrying.
	return true
}
