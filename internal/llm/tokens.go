package llm

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding is used for models tiktoken has no mapping for (Gemini, Claude).
const fallbackEncoding = "cl100k_base"

var (
	encoderMu    sync.Mutex
	encoderCache = map[string]*tiktoken.Tiktoken{}
)

// encodingForModel returns the tokenizer for modelID, or nil when no encoding
// could be loaded. Results, including misses, are cached per model.
func encodingForModel(modelID string) *tiktoken.Tiktoken {
	encoderMu.Lock()
	defer encoderMu.Unlock()

	if enc, ok := encoderCache[modelID]; ok {
		return enc
	}

	enc, err := tiktoken.EncodingForModel(modelID)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			enc = nil
		}
	}
	encoderCache[modelID] = enc
	return enc
}

// EstimateTokenCount returns a token estimate for content as seen by modelID.
func EstimateTokenCount(modelID, content string) int {
	return tokenCount(encodingForModel(modelID), content)
}

func tokenCount(encoder *tiktoken.Tiktoken, text string) int {
	if text == "" {
		return 0
	}

	if encoder != nil {
		return len(encoder.Encode(text, nil, nil))
	}

	runes := utf8.RuneCountInString(text)
	if runes == 0 {
		return 0
	}

	// Rough heuristic: 1 token ≈ 4 characters
	return (runes + 3) / 4
}
