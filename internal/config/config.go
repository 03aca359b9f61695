// Package config provides application configuration management using koanf
package config

import (
	"crypto/tls"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Blob     BlobConfig     `koanf:"blob"`
	Index    IndexConfig    `koanf:"index"`
	App      AppConfig      `koanf:"app"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string    `koanf:"host"`
	Port         int       `koanf:"port"`
	ReadTimeout  int       `koanf:"read_timeout"`  // seconds
	WriteTimeout int       `koanf:"write_timeout"` // seconds
	TLS          TLSConfig `koanf:"tls"`
}

// TLSConfig holds TLS/HTTPS configuration
type TLSConfig struct {
	Enabled  bool   `koanf:"enabled"`
	CertFile string `koanf:"cert_file"`
	KeyFile  string `koanf:"key_file"`
	MinTLS   string `koanf:"min_version"` // "1.2" or "1.3"
}

// DatabaseConfig holds the record store configuration
type DatabaseConfig struct {
	Path       string           `koanf:"path"`
	Encryption EncryptionConfig `koanf:"encryption"`
}

// EncryptionConfig holds database encryption settings
type EncryptionConfig struct {
	Enabled bool   `koanf:"enabled"`
	Key     string `koanf:"key"`
}

// BlobConfig holds object-storage configuration
type BlobConfig struct {
	// Backend selects the implementation: "s3" or "local"
	Backend       string `koanf:"backend"`
	Endpoint      string `koanf:"endpoint"`
	AccessKey     string `koanf:"access_key"`
	SecretKey     string `koanf:"secret_key"`
	Bucket        string `koanf:"bucket"`
	UseSSL        bool   `koanf:"use_ssl"`
	PublicBaseURL string `koanf:"public_base_url"`
	// LocalDir is the storage directory for the "local" backend
	LocalDir string `koanf:"local_dir"`
}

// IndexConfig holds the index pipeline caps
type IndexConfig struct {
	MaxStoredText  int   `koanf:"max_stored_text"`
	SnippetLength  int   `koanf:"snippet_length"`
	DefaultTopK    int   `koanf:"default_top_k"`
	MaxTopK        int   `koanf:"max_top_k"`
	CandidateLimit int   `koanf:"candidate_limit"`
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
}

// AppConfig holds general application settings
type AppConfig struct {
	Environment string `koanf:"environment"` // "development", "staging", "production"
	LogLevel    string `koanf:"log_level"`   // "debug", "info", "warn", "error"
	LogFormat   string `koanf:"log_format"`  // "text" or "json"
}

// Load loads configuration from multiple sources with precedence:
// 1. config.yaml (if exists)
// 2. config.json (if exists)
// 3. Environment variables (highest precedence, .env honored)
func Load() (*Config, error) {
	// Populate the environment from a .env file when present
	_ = godotenv.Load()

	k := koanf.New(".")

	setDefaults(k)
	loadConfigFiles(k)

	if err := k.Load(env.Provider(".", env.Opt{}), nil); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(k *koanf.Koanf) {
	defaults := map[string]interface{}{
		// Server defaults
		"server.host":            "localhost",
		"server.port":            8080,
		"server.read_timeout":    30,
		"server.write_timeout":   30,
		"server.tls.enabled":     false,
		"server.tls.min_version": "1.3",

		// Database defaults
		"database.path":               "documents.db",
		"database.encryption.enabled": false,

		// Blob store defaults
		"blob.backend":   "local",
		"blob.bucket":    "documents",
		"blob.use_ssl":   false,
		"blob.local_dir": "./blobs",

		// Index pipeline defaults
		"index.max_stored_text":  20000,
		"index.snippet_length":   800,
		"index.default_top_k":    2,
		"index.max_top_k":        50,
		"index.candidate_limit":  2000,
		"index.max_upload_bytes": 10 << 20,

		// App defaults
		"app.environment": "development",
		"app.log_level":   "info",
		"app.log_format":  "text",
	}

	for key, value := range defaults {
		_ = k.Set(key, value) // Ignore error for setting defaults
	}
}

// loadConfigFiles loads configuration from files
func loadConfigFiles(k *koanf.Koanf) {
	if _, err := os.Stat("config.yaml"); err == nil {
		if err := k.Load(file.Provider("config.yaml"), yaml.Parser()); err != nil {
			log.Printf("Warning: failed to load config.yaml: %v", err)
		}
	}

	if _, err := os.Stat("config.json"); err == nil {
		if err := k.Load(file.Provider("config.json"), json.Parser()); err != nil {
			log.Printf("Warning: failed to load config.json: %v", err)
		}
	}
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Server.TLS.Enabled {
		if cfg.Server.TLS.CertFile == "" {
			return fmt.Errorf("TLS cert file is required when TLS is enabled")
		}
		if cfg.Server.TLS.KeyFile == "" {
			return fmt.Errorf("TLS key file is required when TLS is enabled")
		}

		if _, err := os.Stat(cfg.Server.TLS.CertFile); os.IsNotExist(err) {
			return fmt.Errorf("TLS cert file does not exist: %s", cfg.Server.TLS.CertFile)
		}
		if _, err := os.Stat(cfg.Server.TLS.KeyFile); os.IsNotExist(err) {
			return fmt.Errorf("TLS key file does not exist: %s", cfg.Server.TLS.KeyFile)
		}
	}

	if cfg.Database.Encryption.Enabled && cfg.Database.Encryption.Key == "" {
		return fmt.Errorf("database encryption key is required when encryption is enabled")
	}

	switch cfg.Blob.Backend {
	case "local":
		if cfg.Blob.LocalDir == "" {
			return fmt.Errorf("blob local_dir is required for the local backend")
		}
	case "s3":
		if cfg.Blob.Endpoint == "" {
			return fmt.Errorf("blob endpoint is required for the s3 backend")
		}
		if cfg.Blob.Bucket == "" {
			return fmt.Errorf("blob bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown blob backend: %s", cfg.Blob.Backend)
	}

	if cfg.Index.MaxStoredText <= 0 || cfg.Index.SnippetLength <= 0 ||
		cfg.Index.DefaultTopK <= 0 || cfg.Index.MaxTopK <= 0 ||
		cfg.Index.CandidateLimit <= 0 || cfg.Index.MaxUploadBytes <= 0 {
		return fmt.Errorf("index caps must all be positive")
	}
	if cfg.Index.DefaultTopK > cfg.Index.MaxTopK {
		return fmt.Errorf("index default_top_k must not exceed max_top_k")
	}

	return nil
}

// GetTLSConfig returns a TLS configuration based on the config
func (c *Config) GetTLSConfig() *tls.Config {
	if !c.Server.TLS.Enabled {
		return nil
	}

	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12, // Set default minimum version
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
		},
	}

	switch c.Server.TLS.MinTLS {
	case "1.2":
		tlsConfig.MinVersion = tls.VersionTLS12
	case "1.3":
		tlsConfig.MinVersion = tls.VersionTLS13
	default:
		tlsConfig.MinVersion = tls.VersionTLS13
	}

	return tlsConfig
}

// GetDatabaseDSN returns the database connection string with encryption if enabled
func (c *Config) GetDatabaseDSN() string {
	if c.Database.Encryption.Enabled {
		// SQLCipher format
		return fmt.Sprintf("%s?_pragma_key=%s&_pragma_cipher_page_size=4096",
			c.Database.Path, c.Database.Encryption.Key)
	}
	return c.Database.Path
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
