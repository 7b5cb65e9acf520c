package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/codefionn/gencalc/internal/assistant"
	"github.com/codefionn/gencalc/internal/calc"
	"github.com/codefionn/gencalc/internal/config"
	"github.com/codefionn/gencalc/internal/logger"
	"github.com/codefionn/gencalc/internal/provider"
	"github.com/codefionn/gencalc/internal/secrets"
	"github.com/codefionn/gencalc/internal/securemem"
	"golang.org/x/term"
)

const maxPasswordAttempts = 3

// environment is the state shared by every command after startup.
type environment struct {
	cfg        *config.Config
	configPath string
	password   string
	solver     *assistant.Solver
}

func configPath() string {
	if strings.TrimSpace(configFile) != "" {
		return configFile
	}
	return config.GetConfigPath()
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cfg)
	return cfg, nil
}

func applyFlags(cfg *config.Config) {
	if useDegrees {
		cfg.AngleMode = calc.Degrees
	}
	if level := strings.TrimSpace(logLevel); level != "" {
		cfg.LogLevel = level
	}
}

// setup loads the config, starts the logger and, when withAssistant is set,
// unlocks the API key and builds the solver.
func setup(withAssistant bool) (*environment, error) {
	path := configPath()
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogPath); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	env := &environment{cfg: cfg, configPath: path}
	if !withAssistant {
		return env, nil
	}

	password, err := ensureSecretsPassword(cfg, promptForPassword)
	if err != nil {
		env.close()
		return nil, err
	}
	env.password = password
	env.solver = buildSolver(cfg)
	return env, nil
}

func (e *environment) close() {
	securemem.Cleanup()
	if err := logger.Global().Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close logger: %v\n", err)
	}
}

func buildSolver(cfg *config.Config) *assistant.Solver {
	client, err := provider.NewClient(cfg.ProviderSettings())
	if err != nil {
		logger.Global().WithPrefix("main").Warn("assistant unavailable: %v", err)
		return assistant.Unavailable(err)
	}
	return assistant.New(client, cfg.AssistantOptions()...)
}

// reload prepares a freshly loaded config the same way startup did and
// returns a solver for it. The boolean is false when the config cannot be
// unlocked with the password entered at startup.
func (e *environment) reload(cfg *config.Config) (*assistant.Solver, bool) {
	applyFlags(cfg)
	if err := cfg.ApplySecretsPassword(e.password); err != nil {
		logger.Global().WithPrefix("main").Warn("ignoring reloaded config: %v", err)
		return nil, false
	}
	logger.Global().SetLevel(logger.ParseLevel(cfg.LogLevel))
	return buildSolver(cfg), true
}

// watch follows the config file until ctx is done and calls apply with the
// previously accepted config and every newly accepted reload.
func (e *environment) watch(ctx context.Context, apply func(prev, next *config.Config, solver *assistant.Solver)) {
	err := config.Watch(ctx, e.configPath, func(cfg *config.Config) {
		solver, ok := e.reload(cfg)
		if !ok {
			return
		}
		apply(e.cfg, cfg, solver)
		e.cfg = cfg
	})
	if err != nil {
		logger.Global().WithPrefix("main").Warn("config watcher stopped: %v", err)
	}
}

func ensureSecretsPassword(cfg *config.Config, prompt func(string) (string, error)) (string, error) {
	if cfg == nil {
		return "", errors.New("config is nil")
	}

	if cfg.NeedsPassword() {
		for attempt := 0; attempt < maxPasswordAttempts; attempt++ {
			pw, err := prompt("Enter encryption password: ")
			if err != nil {
				return "", err
			}
			if err := cfg.ApplySecretsPassword(pw); err != nil {
				if errors.Is(err, secrets.ErrInvalidPassword) {
					fmt.Fprintln(os.Stderr, "Invalid password, try again.")
					continue
				}
				return "", err
			}
			return cfg.SecretsPassword(), nil
		}
		return "", errors.New("too many invalid password attempts")
	}

	if err := cfg.ApplySecretsPassword(""); err != nil {
		return "", err
	}
	return cfg.SecretsPassword(), nil
}

func promptForPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	fmt.Fprint(os.Stderr, prompt)

	if term.IsTerminal(fd) {
		bytes, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytes)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
