package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/pbarbosa/finbot/internal/common"
	"github.com/pbarbosa/finbot/internal/llm"
)

// LoadLLMConfig loads the language model configuration. Precedence:
// 1. Viper configuration (from config file or FINBOT_ env vars)
// 2. Direct environment variables (GEMINI_API_KEY)
// 3. Default values
func LoadLLMConfig() (llm.Config, error) {
	cfg := llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      viper.GetString("llm.api_key"),
		Model:       viper.GetString("llm.model"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
	}

	if timeout := viper.GetString("llm.timeout"); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil {
			return llm.Config{}, fmt.Errorf("%w: llm.timeout %q: %v", common.ErrInvalidConfig, timeout, err)
		}
		cfg.Timeout = parsed
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return llm.Config{}, fmt.Errorf("%w: set llm.api_key or GEMINI_API_KEY", common.ErrMissingConfig)
	}

	return cfg, nil
}

// DatabasePath resolves the SQLite database location, creating the parent
// directory when needed.
func DatabasePath() (string, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/finbot/finbot.db"
	}
	dbPath = ExpandPath(dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return "", fmt.Errorf("creating database directory: %w", err)
	}
	return dbPath, nil
}

// AttachmentsDir resolves where receipt documents are stored, creating it
// when needed.
func AttachmentsDir() (string, error) {
	dir := viper.GetString("attachments.dir")
	if dir == "" {
		dir = "$HOME/.local/share/finbot/attachments"
	}
	dir = ExpandPath(dir)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating attachments directory: %w", err)
	}
	return dir, nil
}
