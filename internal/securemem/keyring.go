package securemem

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Keyring holds one secret per provider name.
type Keyring struct {
	mu    sync.RWMutex
	items map[string]*String
}

// NewKeyring creates an empty keyring.
func NewKeyring() *Keyring {
	return &Keyring{items: make(map[string]*String)}
}

var globalKeyring = NewKeyring()

// Global returns the process-wide keyring wiped by Cleanup.
func Global() *Keyring {
	return globalKeyring
}

// Set stores value under name, destroying any previous value. An empty
// value removes the entry.
func (k *Keyring) Set(name, value string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if existing, ok := k.items[name]; ok {
		existing.Destroy()
		delete(k.items, name)
	}
	if value == "" {
		return
	}
	k.items[name] = NewString(value)
}

// Has reports whether a non-empty secret is stored under name.
func (k *Keyring) Has(name string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	s, ok := k.items[name]
	return ok && !s.IsEmpty()
}

// Reveal returns the plaintext for name, or "" if absent.
func (k *Keyring) Reveal(name string) string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if s, ok := k.items[name]; ok {
		return s.String()
	}
	return ""
}

// Clear destroys every stored secret.
func (k *Keyring) Clear() {
	k.mu.Lock()
	defer k.mu.Unlock()
	for name, s := range k.items {
		s.Destroy()
		delete(k.items, name)
	}
}

// String lists the stored names without values.
func (k *Keyring) String() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	names := make([]string, 0, len(k.items))
	for name := range k.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("Keyring{%s}", strings.Join(names, ", "))
}
