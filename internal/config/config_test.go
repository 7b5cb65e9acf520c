package config

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/codefionn/gencalc/internal/calc"
	"github.com/codefionn/gencalc/internal/calculator"
	"github.com/codefionn/gencalc/internal/secrets"
	"github.com/codefionn/gencalc/internal/securemem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{EnvLogLevel, EnvLogPath, EnvAIProvider, EnvAIModel, EnvServerAddr} {
		t.Setenv(env, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, calc.Radians, cfg.AngleMode)
	assert.Equal(t, "standard", cfg.Mode)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, "google", cfg.AI.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
	assert.InDelta(t, 0.1, cfg.AI.Temperature, 1e-9)
	assert.Equal(t, "localhost:8937", cfg.Server.Addr)
	assert.NotEmpty(t, cfg.LogPath)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().AI, cfg.AI)
	assert.Equal(t, calculator.ModeStandard, cfg.StartMode())
}

func TestLoadOverlaysFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"angle_mode":"deg","mode":"scientific","history_limit":10,"ai":{"provider":"anthropic"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, calc.Degrees, cfg.AngleMode)
	assert.Equal(t, calculator.ModeScientific, cfg.StartMode())
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, "anthropic", cfg.AI.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.AI.Model, "model falls back to the provider default")
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "localhost:8937", cfg.Server.Addr)
}

func TestLoadFillsNonPositiveLimits(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"history_limit":0,"ai":{"max_tokens":-5}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, 1024, cfg.AI.MaxTokens)
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"mode":`},
		{"unknown mode", `{"mode":"graphing"}`},
		{"unknown angle mode", `{"angle_mode":"grad"}`},
		{"unknown provider", `{"ai":{"provider":"nope"}}`},
		{"temperature out of range", `{"ai":{"temperature":3}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			writeFile(t, path, tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvAIProvider, "openai")
	t.Setenv(EnvAIModel, "gpt-4.1")
	t.Setenv(EnvServerAddr, ":9000")

	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"log_level":"warn","ai":{"provider":"google","model":"gemini-2.5-pro"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "gpt-4.1", cfg.AI.Model)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestSaveEncryptsAPIKeyWithPassword(t *testing.T) {
	clearEnv(t)
	t.Cleanup(securemem.Global().Clear)

	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.AI.APIKey = "gm-secret"
	cfg.UpdateSecretsPassword("pw")
	require.NoError(t, cfg.Save(path))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "gm-secret")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.NeedsPassword())
	assert.True(t, secrets.IsEncrypted(loaded.AI.APIKey))
	assert.Empty(t, loaded.ProviderSettings().APIKey, "encrypted key is not handed out")

	err = loaded.ApplySecretsPassword("wrong")
	assert.ErrorIs(t, err, secrets.ErrInvalidPassword)

	require.NoError(t, loaded.ApplySecretsPassword("pw"))
	assert.Equal(t, "gm-secret", loaded.AI.APIKey)
	assert.Equal(t, "gm-secret", securemem.Global().Reveal("google"))
	assert.Equal(t, "gm-secret", loaded.ProviderSettings().APIKey)
}

func TestSaveWithoutPassword(t *testing.T) {
	clearEnv(t)
	t.Cleanup(securemem.Global().Clear)

	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.AI.APIKey = "plain-key"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.False(t, loaded.NeedsPassword())
	require.NoError(t, loaded.ApplySecretsPassword(""))
	assert.Equal(t, "plain-key", loaded.AI.APIKey)
}

func TestProviderSettings(t *testing.T) {
	t.Cleanup(securemem.Global().Clear)

	cfg := DefaultConfig()
	cfg.AI.Provider = "claude"
	cfg.AI.Model = "claude-sonnet-4-5"
	cfg.AI.APIKey = "from-file"
	cfg.AI.RateLimit.TokensPerMinute = 1000

	settings := cfg.ProviderSettings()
	assert.Equal(t, "claude", settings.Provider)
	assert.Equal(t, "claude-sonnet-4-5", settings.Model)
	assert.Equal(t, "from-file", settings.APIKey)
	require.NotNil(t, settings.RateLimit)
	assert.Equal(t, 1000, settings.RateLimit.TokensPerMinute)

	securemem.Global().Set("anthropic", "from-keyring")
	assert.Equal(t, "from-keyring", cfg.ProviderSettings().APIKey)
}

func TestAssistantOptions(t *testing.T) {
	assert.Len(t, DefaultConfig().AssistantOptions(), 2)
}

func TestGetConfigPathHonorsXDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG_CONFIG_HOME is not used on Windows")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "gencalc", "config.json"), GetConfigPath())
}

func TestWatchReloadsOnWrite(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"angle_mode":"rad"}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, path, 20*time.Millisecond, func(cfg *Config) {
			reloaded <- cfg
		})
	}()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, `{"angle_mode":"deg"}`)

	select {
	case cfg := <-reloaded:
		assert.Equal(t, calc.Degrees, cfg.AngleMode)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchIgnoresInvalidContent(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	go func() {
		_ = watch(ctx, path, 20*time.Millisecond, func(cfg *Config) {
			reloaded <- cfg
		})
	}()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, `{"mode":`)

	select {
	case <-reloaded:
		t.Fatal("invalid config must not be delivered")
	case <-time.After(300 * time.Millisecond):
	}
}
