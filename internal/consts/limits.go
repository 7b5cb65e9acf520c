package consts

import "time"

// AppName names the config and state directories and the log file.
const AppName = "gencalc"

// Network defaults
const (
	// DefaultServerAddr is where `gencalc serve` listens unless configured.
	DefaultServerAddr = "localhost:8937"
	// MaxRequestBodyBytes caps JSON request bodies of the web API
	MaxRequestBodyBytes = 64 * 1024
	// MaxExpressionLength caps expressions accepted over HTTP
	MaxExpressionLength = 1024
	// MaxQueryLength caps assistant queries accepted over HTTP and WebSocket
	MaxQueryLength = 4096
)

// LLM default configurations
const (
	// DefaultMaxTokens is the default maximum tokens for assistant replies
	DefaultMaxTokens = 1024
	// DefaultRequestsPerMinute throttles assistant calls to the provider
	DefaultRequestsPerMinute = 30
)

// Timeouts for various operations
const (
	// AssistantTimeout bounds a single assistant request
	AssistantTimeout = 60 * time.Second
	// ReadHeaderTimeout bounds reading request headers
	ReadHeaderTimeout = 5 * time.Second
	// ShutdownTimeout bounds graceful shutdown of the server
	ShutdownTimeout = 10 * time.Second
	// ConfigReloadDebounce coalesces bursts of config file writes
	ConfigReloadDebounce = 200 * time.Millisecond
)
