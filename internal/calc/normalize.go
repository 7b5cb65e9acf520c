package calc

import (
	"fmt"
	"strings"
	"unicode"
)

// glyphReplacer rewrites display glyphs into their canonical operators.
var glyphReplacer = strings.NewReplacer(
	"×", "*",
	"÷", "/",
	"^", "**",
)

// normalize rewrites display-only glyphs and the caret power operator.
// Function names and constants are left alone; the lexer resolves them
// as whole identifiers so that log10 can never be read as log followed by 10.
func normalize(expr string) string {
	return glyphReplacer.Replace(expr)
}

// validate rejects any rune outside the calculator alphabet. It runs on the
// normalized string and does not guarantee the expression parses.
func validate(expr string) error {
	for i, r := range expr {
		if allowedRune(r) {
			continue
		}
		return fmt.Errorf("%w: character %q at offset %d", ErrUnknownSymbol, r, i)
	}
	return nil
}

func allowedRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case unicode.IsSpace(r):
		return true
	}
	switch r {
	case '+', '-', '*', '/', '(', ')', '.', '%':
		return true
	}
	return false
}
