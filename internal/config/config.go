// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm/logger"

	"github.com/iyunix/go-ragchat/internal/database"
	"github.com/iyunix/go-ragchat/internal/services/ai"
	"github.com/iyunix/go-ragchat/internal/services/chat"
	"github.com/iyunix/go-ragchat/internal/services/ingest"
	"github.com/iyunix/go-ragchat/internal/services/memory"
	"github.com/iyunix/go-ragchat/internal/services/vectorstore"
)

type Config struct {
	Environment string
	LogLevel    string
	ServerPort  string

	// Database
	DBDriver    string
	DatabaseDSN string

	// Model endpoints (OpenAI-compatible, Ollama by default)
	LLMBaseURL       string
	LLMAPIKey        string
	ChatModel        string
	EmbeddingBaseURL string
	EmbeddingAPIKey  string
	EmbeddingModel   string
	LLMTemperature   float64
	LLMTopP          float64
	LLMTimeout       time.Duration

	// Vector index
	VectorStore       string
	PineconeAPIKey    string
	PineconeIndexHost string
	PineconeNamespace string

	// Interaction
	RAGEnabled              bool
	RetrievalTopK           int
	SystemPrompt            string
	RetainUserTurnOnFailure bool

	// Conversation memory
	MemoryMaxMessages  int
	MemoryWindowPolicy string
	MemoryClearEnabled bool

	// Ingestion
	KnowledgeBaseDir   string
	ChunkSize          int
	WatchKnowledgeBase bool
	IngestFailFast     bool

	RateLimitPerMinute int
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if !isProduction(env) {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		Environment: env,
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),

		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DatabaseDSN: getEnv("DATABASE_DSN", "ragchat.db"),

		LLMBaseURL:       getEnv("LLM_BASE_URL", "http://localhost:11434/v1"),
		LLMAPIKey:        getEnv("LLM_API_KEY", "ollama"),
		ChatModel:        getEnv("CHAT_MODEL", "gemma3:4b-it-q4_K_M"),
		EmbeddingBaseURL: getEnv("EMBEDDING_BASE_URL", ""),
		EmbeddingAPIKey:  getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		LLMTemperature:   getEnvAsFloat("LLM_TEMPERATURE", 0.1),
		LLMTopP:          getEnvAsFloat("LLM_TOP_P", 0.9),
		LLMTimeout:       getEnvAsDuration("LLM_TIMEOUT", 5*time.Minute),

		VectorStore:       getEnv("VECTOR_STORE", vectorstore.BackendMemory),
		PineconeAPIKey:    getEnv("PINECONE_API_KEY", ""),
		PineconeIndexHost: getEnv("PINECONE_INDEX_HOST", ""),
		PineconeNamespace: getEnv("PINECONE_NAMESPACE", ""),

		RAGEnabled:              getEnvAsBool("RAG_ENABLED", false),
		RetrievalTopK:           getEnvAsInt("RAG_TOPK", 4),
		SystemPrompt:            getEnv("SYSTEM_PROMPT", ""),
		RetainUserTurnOnFailure: getEnvAsBool("RETAIN_USER_TURN_ON_FAILURE", false),

		MemoryMaxMessages:  getEnvAsInt("MEMORY_MAX_MESSAGES", 12),
		MemoryWindowPolicy: getEnv("MEMORY_WINDOW_POLICY", memory.WindowOldest),
		MemoryClearEnabled: getEnvAsBool("MEMORY_CLEAR_ENABLED", false),

		KnowledgeBaseDir:   getEnv("KNOWLEDGE_BASE_DIR", "knowledgebase"),
		ChunkSize:          getEnvAsInt("CHUNK_SIZE", 500),
		WatchKnowledgeBase: getEnvAsBool("WATCH_KNOWLEDGE_BASE", false),
		IngestFailFast:     getEnvAsBool("INGEST_FAIL_FAST", false),

		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	// Validation for production environments
	if isProduction(env) {
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid production configuration: %v", err)
		}
	}

	return cfg
}

// Validate checks the settings every component needs before start-up.
func (c *Config) Validate() error {
	missing := []string{}
	if c.DatabaseDSN == "" {
		missing = append(missing, "DATABASE_DSN")
	}
	if c.LLMBaseURL == "" {
		missing = append(missing, "LLM_BASE_URL")
	}
	if c.ChatModel == "" {
		missing = append(missing, "CHAT_MODEL")
	}
	if strings.EqualFold(c.VectorStore, vectorstore.BackendPinecone) {
		if c.PineconeAPIKey == "" {
			missing = append(missing, "PINECONE_API_KEY")
		}
		if c.PineconeIndexHost == "" {
			missing = append(missing, "PINECONE_INDEX_HOST")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return isProduction(c.Environment)
}

func (c *Config) Database() database.Config {
	level := logger.Warn
	if strings.EqualFold(c.LogLevel, "DEBUG") {
		level = logger.Info
	}
	return database.Config{Driver: c.DBDriver, DSN: c.DatabaseDSN, LogLevel: level}
}

func (c *Config) AI() *ai.Config {
	cfg := ai.DefaultConfig()
	cfg.LLMBaseURL = c.LLMBaseURL
	cfg.LLMKey = c.LLMAPIKey
	cfg.ChatModel = c.ChatModel
	cfg.EmbeddingBaseURL = c.EmbeddingBaseURL
	cfg.EmbeddingKey = c.EmbeddingAPIKey
	cfg.EmbeddingModel = c.EmbeddingModel
	cfg.Temperature = float32(c.LLMTemperature)
	cfg.TopP = float32(c.LLMTopP)
	cfg.Timeout = c.LLMTimeout
	return cfg
}

func (c *Config) VectorStoreConfig() *vectorstore.Config {
	cfg := vectorstore.DefaultConfig()
	cfg.Backend = strings.ToLower(c.VectorStore)
	cfg.APIKey = c.PineconeAPIKey
	cfg.IndexHost = c.PineconeIndexHost
	cfg.Namespace = c.PineconeNamespace
	return cfg
}

func (c *Config) Memory() *memory.Config {
	cfg := memory.DefaultConfig()
	cfg.MaxMessages = c.MemoryMaxMessages
	cfg.WindowPolicy = strings.ToLower(c.MemoryWindowPolicy)
	cfg.ClearEnabled = c.MemoryClearEnabled
	return cfg
}

func (c *Config) Chat() *chat.Config {
	cfg := chat.DefaultConfig()
	cfg.RAGEnabled = c.RAGEnabled
	cfg.RetrievalTopK = c.RetrievalTopK
	cfg.SystemPrompt = c.SystemPrompt
	cfg.RetainUserTurnOnFailure = c.RetainUserTurnOnFailure
	cfg.ModelTimeout = c.LLMTimeout
	return cfg
}

func (c *Config) Ingest() *ingest.Config {
	cfg := ingest.DefaultConfig()
	cfg.Dir = c.KnowledgeBaseDir
	cfg.ChunkSize = c.ChunkSize
	cfg.Watch = c.WatchKnowledgeBase
	cfg.FailFast = c.IngestFailFast
	return cfg
}

func isProduction(env string) bool {
	return strings.ToLower(env) == "production"
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as bool. Using default value.", key)
		return defaultValue
	}
	return boolValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as float. Using default value.", key)
		return defaultValue
	}
	return floatValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
		return defaultValue
	}
	return d
}
