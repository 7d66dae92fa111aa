package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL"`
	ChatModel           string `envconfig:"CHAT_MODEL"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`

	// Pipeline policy. The defaults are behavioral contracts: change
	// them only as a product decision.
	SimilarityThreshold float64       `envconfig:"SIMILARITY_THRESHOLD" default:"0.75"`
	MinQuestionLength   int           `envconfig:"MIN_QUESTION_LENGTH" default:"10"`
	ProviderDelay       time.Duration `envconfig:"PROVIDER_DELAY" default:"100ms"`
	ProviderMaxRetries  int           `envconfig:"PROVIDER_MAX_RETRIES" default:"3"`

	// HealInterval enables periodic heal runs; 0 disables them.
	HealInterval time.Duration `envconfig:"HEAL_INTERVAL" default:"0"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"gapheal-artifacts"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Bootstrap: create an initial admin API key on startup
	InitAPIKeyName string `envconfig:"INIT_API_KEY_NAME"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("GAPHEAL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
