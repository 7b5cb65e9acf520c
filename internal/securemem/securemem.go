// Package securemem keeps API keys in memguard-protected memory so they do
// not sit in plain heap memory for the lifetime of the process.
package securemem

import (
	"crypto/subtle"

	"github.com/awnumar/memguard"
)

// String is a secure string wrapper that stores sensitive data in locked memory.
type String struct {
	buf     *memguard.LockedBuffer
	invalid bool
}

// NewString creates a new secure string from the given plaintext.
func NewString(plaintext string) *String {
	return &String{
		buf: memguard.NewBufferFromBytes([]byte(plaintext)),
	}
}

// String returns the plaintext value.
// The returned string is a copy that lives in regular memory.
func (s *String) String() string {
	if s == nil || s.invalid || s.buf == nil {
		return ""
	}
	return string(s.buf.Bytes())
}

// IsEmpty returns true if the string is empty or destroyed.
func (s *String) IsEmpty() bool {
	if s == nil || s.invalid || s.buf == nil {
		return true
	}
	return len(s.buf.Bytes()) == 0
}

// Equal compares against plaintext in constant time.
func (s *String) Equal(other string) bool {
	if s == nil || s.invalid || s.buf == nil {
		return other == ""
	}
	return subtle.ConstantTimeCompare(s.buf.Bytes(), []byte(other)) == 1
}

// WithValue runs fn with the plaintext. fn must not retain it.
func (s *String) WithValue(fn func(string)) {
	if s == nil || s.invalid || s.buf == nil {
		return
	}
	fn(string(s.buf.Bytes()))
}

// Destroy wipes the value. The string is unusable afterwards.
func (s *String) Destroy() {
	if s == nil || s.invalid {
		return
	}
	if s.buf != nil {
		s.buf.Destroy()
		s.buf = nil
	}
	s.invalid = true
}

// Init makes an interrupt signal wipe every buffer before the process exits.
// Call it once at the start of main.
func Init() {
	memguard.CatchInterrupt()
}

// Cleanup purges every memguard buffer. Call it once before the process exits.
func Cleanup() {
	globalKeyring.Clear()
	memguard.Purge()
}
