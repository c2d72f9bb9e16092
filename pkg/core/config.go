package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/memvault/memvault-go/pkg/memory"
)

// Config contains the complete configuration for a memvault client.
//
// It names the scope roots (each holding one four-store instance), the
// optional embedding provider used to refresh the vector cache, and the log
// level.
type Config struct {
	// ProjectRoot is the project-scope root directory.
	ProjectRoot string `json:"project_root"`

	// LocalRoot is the machine-local scope root directory.
	LocalRoot string `json:"local_root"`

	// GlobalRoot is the user-global scope root directory.
	GlobalRoot string `json:"global_root"`

	// EnterpriseRoot is the organization scope root directory (optional).
	EnterpriseRoot string `json:"enterprise_root,omitempty"`

	// Embedder configures the optional embedding provider.
	Embedder EmbedderConfig `json:"embedder"`

	// LogLevel sets the client log level (debug, info, warn, error).
	// Empty disables logging.
	LogLevel string `json:"log_level,omitempty"`
}

// EmbedderConfig contains configuration for the embedding provider.
//
// Supported providers: openai. An empty or "none" provider disables the
// embedding cache refresh path; every operation still works without it.
type EmbedderConfig struct {
	// Provider is the embedding provider name.
	Provider string `json:"provider"`

	// APIKey is the API key for the provider.
	APIKey string `json:"api_key"`

	// Model is the embedding model name.
	Model string `json:"model,omitempty"`

	// BaseURL overrides the provider endpoint (optional).
	BaseURL string `json:"base_url,omitempty"`

	// Dimensions is the vector dimension (optional, provider default).
	Dimensions int `json:"dimensions,omitempty"`
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function searches for a .env file (up to 5 directory levels up) before
// reading the environment.
//
// Supported variables:
//   - MEMVAULT_PROJECT_ROOT, MEMVAULT_LOCAL_ROOT, MEMVAULT_GLOBAL_ROOT,
//     MEMVAULT_ENTERPRISE_ROOT
//   - EMBEDDING_PROVIDER, EMBEDDING_API_KEY, EMBEDDING_MODEL,
//     EMBEDDING_BASE_URL, EMBEDDING_DIMS
//   - MEMVAULT_LOG_LEVEL
func LoadConfigFromEnv() (*Config, error) {
	if envPath, found := FindEnvFile(); found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	home, _ := os.UserHomeDir()

	dims, _ := strconv.Atoi(os.Getenv("EMBEDDING_DIMS"))

	config := &Config{
		ProjectRoot:    getEnvOrDefault("MEMVAULT_PROJECT_ROOT", filepath.Join(".", ".memvault")),
		LocalRoot:      getEnvOrDefault("MEMVAULT_LOCAL_ROOT", filepath.Join(home, ".memvault", "local")),
		GlobalRoot:     getEnvOrDefault("MEMVAULT_GLOBAL_ROOT", filepath.Join(home, ".memvault", "global")),
		EnterpriseRoot: os.Getenv("MEMVAULT_ENTERPRISE_ROOT"),
		Embedder: EmbedderConfig{
			Provider:   os.Getenv("EMBEDDING_PROVIDER"),
			APIKey:     os.Getenv("EMBEDDING_API_KEY"),
			Model:      os.Getenv("EMBEDDING_MODEL"),
			BaseURL:    os.Getenv("EMBEDDING_BASE_URL"),
			Dimensions: dims,
		},
		LogLevel: os.Getenv("MEMVAULT_LOG_LEVEL"),
	}

	return config, nil
}

// LoadConfigFromEnvFile loads configuration after loading a specific .env file.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromJSON loads configuration from a JSON file.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewMemoryError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewMemoryError("LoadConfigFromJSON", err)
	}
	return &config, nil
}

// Validate checks that the configuration is usable: at least one scope root
// must be set and the embedder provider, when named, must be known.
func (c *Config) Validate() error {
	if c.ProjectRoot == "" && c.LocalRoot == "" && c.GlobalRoot == "" && c.EnterpriseRoot == "" {
		return NewMemoryError("Validate", ErrInvalidConfig)
	}
	switch c.Embedder.Provider {
	case "", "none", "openai":
	default:
		return NewMemoryError("Validate", ErrInvalidConfig)
	}
	return nil
}

// RootFor returns the scope root directory for a scope.
func (c *Config) RootFor(scope memory.Scope) (string, error) {
	var root string
	switch scope {
	case memory.ScopeProject:
		root = c.ProjectRoot
	case memory.ScopeLocal:
		root = c.LocalRoot
	case memory.ScopeGlobal:
		root = c.GlobalRoot
	case memory.ScopeEnterprise:
		root = c.EnterpriseRoot
	default:
		return "", NewMemoryError("RootFor", ErrInvalidInput)
	}
	if root == "" {
		return "", NewMemoryError("RootFor", ErrInvalidConfig)
	}
	return root, nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FindEnvFile searches for a .env or .env.example file in the current
// directory and up to 5 directory levels above it.
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
