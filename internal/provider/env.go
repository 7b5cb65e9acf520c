package provider

import (
	"os"
	"strings"
)

// providerEnvVars maps canonical provider names to the environment variables
// that can supply their API keys, in lookup order.
var providerEnvVars = map[Name][]string{
	Google:    {"GEMINI_API_KEY", "GOOGLE_API_KEY", "GOOGLE_GENAI_API_KEY", "API_KEY"},
	Anthropic: {"ANTHROPIC_API_KEY"},
	OpenAI:    {"OPENAI_API_KEY"},
}

// resolveAPIKey returns the API key to use for a provider. An explicit key
// takes precedence over the environment. The returned value is trimmed; an
// empty string means no key is available.
func resolveAPIKey(name Name, explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}

	for _, envVar := range providerEnvVars[name] {
		if value := strings.TrimSpace(os.Getenv(envVar)); value != "" {
			return value
		}
	}
	return ""
}

// ResolveAPIKey looks up the API key for a provider in the environment.
func ResolveAPIKey(providerName string) string {
	name, err := Canonical(providerName)
	if err != nil {
		return ""
	}
	return resolveAPIKey(name, "")
}

// EnvVarHints returns the known environment variables for a provider, for
// display in help texts.
func EnvVarHints(providerName string) []string {
	name, err := Canonical(providerName)
	if err != nil {
		return nil
	}
	hints := providerEnvVars[name]
	out := make([]string, len(hints))
	copy(out, hints)
	return out
}
