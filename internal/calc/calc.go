// Package calc evaluates calculator expressions.
//
// An expression is normalized (display glyphs and the caret operator),
// checked against a character allow-list, tokenized, parsed into a tree by
// recursive descent and then evaluated. No input ever reaches a dynamic
// interpreter. Every failure is reported to display callers as the single
// string "Error"; Eval keeps the error kinds for logging and tests.
package calc

import (
	"fmt"
	"strings"
)

// maxExpressionBytes bounds the input so the left-deep trees built for long
// operator chains stay shallow enough to evaluate recursively.
const maxExpressionBytes = 1 << 16

// Eval evaluates expr and returns the raw value. The returned error wraps
// one of ErrEmpty, ErrSyntax, ErrUnknownSymbol, ErrDomain or ErrNonFinite.
func Eval(expr string, mode AngleMode) (float64, error) {
	if strings.TrimSpace(expr) == "" {
		return 0, ErrEmpty
	}
	if len(expr) > maxExpressionBytes {
		return 0, fmt.Errorf("%w: expression longer than %d bytes", ErrSyntax, maxExpressionBytes)
	}
	normalized := normalize(expr)
	if err := validate(normalized); err != nil {
		return 0, err
	}
	tokens, err := tokenize(normalized)
	if err != nil {
		return 0, err
	}
	tree, err := parse(tokens)
	if err != nil {
		return 0, err
	}
	v, err := tree.eval(mode)
	if err != nil {
		return 0, err
	}
	return checkFinite(v)
}

// Result is the outcome of a single evaluation.
type Result struct {
	Value float64
	Text  string
	Err   error
}

// OK reports whether the evaluation produced a number.
func (r Result) OK() bool {
	return r.Err == nil
}

// Run evaluates expr and formats the value. On failure Text is ErrorResult
// and Err carries the underlying cause.
func Run(expr string, mode AngleMode) Result {
	v, err := Eval(expr, mode)
	if err != nil {
		return Result{Text: ErrorResult, Err: err}
	}
	text, ok := Format(v)
	if !ok {
		return Result{Text: ErrorResult, Err: fmt.Errorf("%w: %v", ErrNonFinite, v)}
	}
	return Result{Value: v, Text: text}
}

// Evaluate returns the formatted result of expr, or "Error" for any failure.
// It is pure and safe for concurrent use.
func Evaluate(expr string, mode AngleMode) string {
	return Run(expr, mode).Text
}
