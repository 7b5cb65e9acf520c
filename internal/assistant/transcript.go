package assistant

import (
	"sync"
	"time"
)

// Speaker identifies who produced a transcript entry.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
	SpeakerError     Speaker = "error"
)

// Entry is one line of the chat log.
type Entry struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is an append-only chat log. Replies are appended in completion
// order, which may differ from submission order when queries overlap.
type Transcript struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// AddQuery appends a user query.
func (t *Transcript) AddQuery(query string) Entry {
	return t.append(SpeakerUser, query)
}

// AddReply appends an assistant reply, marking failures as errors.
func (t *Transcript) AddReply(r Reply) Entry {
	if r.IsError {
		return t.append(SpeakerError, r.Text)
	}
	return t.append(SpeakerAssistant, r.Text)
}

func (t *Transcript) append(speaker Speaker, text string) Entry {
	e := Entry{Speaker: speaker, Text: text, Timestamp: time.Now()}
	t.mu.Lock()
	t.entries = append(t.entries, e)
	t.mu.Unlock()
	return e
}

// Entries returns a copy of the log in append order.
func (t *Transcript) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
