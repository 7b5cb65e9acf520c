// Package config loads and saves the gencalc configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/codefionn/gencalc/internal/assistant"
	"github.com/codefionn/gencalc/internal/calc"
	"github.com/codefionn/gencalc/internal/calculator"
	"github.com/codefionn/gencalc/internal/consts"
	"github.com/codefionn/gencalc/internal/history"
	"github.com/codefionn/gencalc/internal/provider"
	"github.com/codefionn/gencalc/internal/secrets"
	"github.com/codefionn/gencalc/internal/securemem"
)

// Environment variables overriding file values.
const (
	EnvLogLevel   = "GENCALC_LOG_LEVEL"
	EnvLogPath    = "GENCALC_LOG_PATH"
	EnvAIProvider = "GENCALC_AI_PROVIDER"
	EnvAIModel    = "GENCALC_AI_MODEL"
	EnvServerAddr = "GENCALC_SERVER_ADDR"
)

// AIConfig selects the assistant's provider and model.
type AIConfig struct {
	Provider    string                   `json:"provider"`
	Model       string                   `json:"model"`
	APIKey      string                   `json:"api_key,omitempty"`
	Temperature float64                  `json:"temperature"`
	MaxTokens   int                      `json:"max_tokens,omitempty"`
	RateLimit   provider.RateLimitConfig `json:"rate_limit"`
}

// ServerConfig holds settings for `gencalc serve`.
type ServerConfig struct {
	Addr string `json:"addr"`
}

// SecretsSettings keeps track of password-protection state.
type SecretsSettings struct {
	PasswordSet bool   `json:"password_set,omitempty"`
	Verifier    string `json:"verifier,omitempty"`
}

// Config represents application configuration
type Config struct {
	AngleMode         calc.AngleMode  `json:"angle_mode"`
	Mode              string          `json:"mode"`
	HistoryLimit      int             `json:"history_limit"`
	LogLevel          string          `json:"log_level"` // debug, info, warn, error, none
	LogPath           string          `json:"log_path,omitempty"`
	AI                AIConfig        `json:"ai"`
	Server            ServerConfig    `json:"server"`
	DisableAnimations bool            `json:"disable_animations"`
	Secrets           SecretsSettings `json:"secrets,omitempty"`

	secretsPassword string
}

func defaultConfigDir() string {
	homeDir, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		if appData := strings.TrimSpace(os.Getenv("APPDATA")); appData != "" {
			return filepath.Join(appData, consts.AppName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", consts.AppName)
	default:
		if configHome := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); configHome != "" {
			return filepath.Join(configHome, consts.AppName)
		}
		return filepath.Join(homeDir, ".config", consts.AppName)
	}
}

func defaultStateDir() string {
	homeDir, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		if localAppData := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); localAppData != "" {
			return filepath.Join(localAppData, consts.AppName)
		}
		return filepath.Join(homeDir, "AppData", "Local", consts.AppName)
	case "linux":
		if stateHome := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); stateHome != "" {
			return filepath.Join(stateHome, consts.AppName)
		}
		return filepath.Join(homeDir, ".local", "state", consts.AppName)
	default:
		return defaultConfigDir()
	}
}

// GetConfigPath returns the default config path
func GetConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.json")
}

// DefaultLogPath returns the log file used when none is configured.
func DefaultLogPath() string {
	return filepath.Join(defaultStateDir(), consts.AppName+".log")
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		AngleMode:    calc.Radians,
		Mode:         calculator.ModeStandard.String(),
		HistoryLimit: history.DefaultLimit,
		LogLevel:     "info",
		LogPath:      DefaultLogPath(),
		AI: AIConfig{
			Provider:    string(provider.Google),
			Model:       provider.DefaultModel(provider.Google),
			Temperature: assistant.DefaultTemperature,
			MaxTokens:   consts.DefaultMaxTokens,
			RateLimit: provider.RateLimitConfig{
				RequestsPerMinute: consts.DefaultRequestsPerMinute,
			},
		},
		Server: ServerConfig{Addr: consts.DefaultServerAddr},
	}
}

// Load overlays the file at path on DefaultConfig and applies environment
// overrides. A missing file yields the defaults. Encrypted fields stay
// encrypted until ApplySecretsPassword is called.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		EnvLogLevel:   &c.LogLevel,
		EnvLogPath:    &c.LogPath,
		EnvAIProvider: &c.AI.Provider,
		EnvAIModel:    &c.AI.Model,
		EnvServerAddr: &c.Server.Addr,
	}
	for env, field := range overrides {
		if value := strings.TrimSpace(os.Getenv(env)); value != "" {
			*field = value
		}
	}
}

func (c *Config) fillDefaults() {
	defaults := DefaultConfig()
	if c.Mode == "" {
		c.Mode = defaults.Mode
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = defaults.HistoryLimit
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.LogPath == "" {
		c.LogPath = defaults.LogPath
	}
	if c.AI.Provider == "" {
		c.AI.Provider = defaults.AI.Provider
	}
	if c.AI.Model == "" {
		if name, err := provider.Canonical(c.AI.Provider); err == nil {
			c.AI.Model = provider.DefaultModel(name)
		}
	}
	if c.AI.MaxTokens <= 0 {
		c.AI.MaxTokens = defaults.AI.MaxTokens
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	if _, err := calculator.ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := provider.Canonical(c.AI.Provider); err != nil {
		return err
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature %v out of range [0, 2]", c.AI.Temperature)
	}
	return nil
}

// StartMode returns the calculator mode the TUI opens in.
func (c *Config) StartMode() calculator.Mode {
	mode, _ := calculator.ParseMode(c.Mode)
	return mode
}

// Save writes the configuration to path with owner-only permissions. The API
// key is encrypted with the active secrets password.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := c.marshalWithEncryptedSecrets()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) marshalWithEncryptedSecrets() ([]byte, error) {
	out := *c

	var err error
	if !secrets.IsEncrypted(out.AI.APIKey) {
		out.AI.APIKey, err = secrets.EncryptString(out.AI.APIKey, c.secretsPassword)
		if err != nil {
			return nil, err
		}
	}

	out.Secrets.Verifier = ""
	if out.Secrets.PasswordSet {
		out.Secrets.Verifier, err = secrets.NewVerifier(c.secretsPassword)
		if err != nil {
			return nil, err
		}
	}

	return json.MarshalIndent(&out, "", "  ")
}

// NeedsPassword reports whether a secrets password must be supplied before
// the API key can be used.
func (c *Config) NeedsPassword() bool {
	return c.Secrets.PasswordSet
}

// ApplySecretsPassword checks password against the stored verifier, decrypts
// the API key and moves it into the process keyring.
func (c *Config) ApplySecretsPassword(password string) error {
	if c.Secrets.PasswordSet {
		if err := secrets.CheckVerifier(c.Secrets.Verifier, password); err != nil {
			return err
		}
	}

	plain, _, err := secrets.DecryptString(c.AI.APIKey, password)
	if err != nil {
		return fmt.Errorf("decrypt ai.api_key: %w", err)
	}
	c.AI.APIKey = plain
	c.secretsPassword = password

	if name, err := provider.Canonical(c.AI.Provider); err == nil {
		securemem.Global().Set(string(name), plain)
	}
	return nil
}

// SecretsPassword returns the active secrets password (empty string by default).
func (c *Config) SecretsPassword() string {
	return c.secretsPassword
}

// UpdateSecretsPassword switches the password used by the next Save.
func (c *Config) UpdateSecretsPassword(password string) {
	c.Secrets.PasswordSet = password != ""
	c.secretsPassword = password
}

// ProviderSettings returns the settings used to build the assistant's client.
// The key comes from the keyring when ApplySecretsPassword stored one there.
func (c *Config) ProviderSettings() provider.Settings {
	key := c.AI.APIKey
	if secrets.IsEncrypted(key) {
		key = ""
	}
	if name, err := provider.Canonical(c.AI.Provider); err == nil {
		if stored := securemem.Global().Reveal(string(name)); stored != "" {
			key = stored
		}
	}

	rateLimit := c.AI.RateLimit
	return provider.Settings{
		Provider:  c.AI.Provider,
		APIKey:    key,
		Model:     c.AI.Model,
		RateLimit: &rateLimit,
	}
}

// AssistantOptions returns the solver options derived from the AI section.
func (c *Config) AssistantOptions() []assistant.Option {
	return []assistant.Option{
		assistant.WithTemperature(c.AI.Temperature),
		assistant.WithMaxTokens(c.AI.MaxTokens),
	}
}
