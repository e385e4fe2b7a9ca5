package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for Pathfinder
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Corpus    CorpusConfig    `mapstructure:"corpus"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Translate TranslateConfig `mapstructure:"translate"`
	Whisper   WhisperConfig   `mapstructure:"whisper"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// AdminConfig holds admin authentication configuration
type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// CorpusConfig holds vector-store and corpus configuration
type CorpusConfig struct {
	DBPath         string `mapstructure:"db_path"`
	Collection     string `mapstructure:"collection"`
	DataPath       string `mapstructure:"data_path"`
	ChunkSize      int    `mapstructure:"chunk_size"`
	ChunkOverlap   int    `mapstructure:"chunk_overlap"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	OllamaURL      string `mapstructure:"ollama_url"`
}

// LLMConfig holds language-model backend configuration
type LLMConfig struct {
	DefaultModel  string `mapstructure:"default_model"`
	GeminiAPIKey  string `mapstructure:"gemini_api_key"`
	GeminiModel   string `mapstructure:"gemini_model"`
	MistralAPIKey string `mapstructure:"mistral_api_key"`
	MistralModel  string `mapstructure:"mistral_model"`
	OllamaURL     string `mapstructure:"ollama_url"`
}

// TranslateConfig holds translation service configuration
type TranslateConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// WhisperConfig holds speech-to-text service configuration
type WhisperConfig struct {
	URL string `mapstructure:"url"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("PATHFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("admin.api_key", "")

	v.SetDefault("database.path", "./data/pathfinder.db")

	v.SetDefault("corpus.db_path", "./data/chromem")
	v.SetDefault("corpus.collection", "jobs")
	v.SetDefault("corpus.data_path", "./ground_truth/processed_job.json")
	v.SetDefault("corpus.chunk_size", 1000)
	v.SetDefault("corpus.chunk_overlap", 200)
	v.SetDefault("corpus.embedding_model", "all-minilm:l6-v2")
	v.SetDefault("corpus.ollama_url", "http://localhost:11434/api")

	v.SetDefault("llm.default_model", "llama3.2")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.gemini_model", "gemini-1.5-flash")
	v.SetDefault("llm.mistral_api_key", "")
	v.SetDefault("llm.mistral_model", "ft:ministral-3b-latest:9b8fa9c6:20250902:e97f6b36")
	v.SetDefault("llm.ollama_url", "http://localhost:11434")

	v.SetDefault("translate.api_key", "")

	v.SetDefault("whisper.url", "http://localhost:8178")
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
