package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokPow
	tokLParen
	tokRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokNumber:
		return "number"
	case tokIdent:
		return "identifier"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokStar:
		return "'*'"
	case tokSlash:
		return "'/'"
	case tokPercent:
		return "'%'"
	case tokPow:
		return "'**'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	default:
		return "unknown"
	}
}

type token struct {
	kind  tokenKind
	text  string
	value float64
	pos   int
}

// constants maps the standalone identifiers that are replaced by numbers.
var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// tokenize splits a normalized, validated expression into tokens.
// Identifiers are maximal runs of letters and digits starting with a letter,
// and standalone constant identifiers are substituted by their values here.
func tokenize(src string) ([]token, error) {
	var tokens []token
	pos := 0
	for pos < len(src) {
		ch := src[pos]
		switch {
		case ch < 0x80 && unicode.IsSpace(rune(ch)):
			pos++
		case isDigit(ch) || ch == '.':
			tok, next, err := readNumber(src, pos)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			pos = next
		case isLetter(ch):
			start := pos
			for pos < len(src) && (isLetter(src[pos]) || isDigit(src[pos])) {
				pos++
			}
			text := src[start:pos]
			if value, ok := constants[strings.ToLower(text)]; ok {
				tokens = append(tokens, token{kind: tokNumber, text: text, value: value, pos: start})
				continue
			}
			tokens = append(tokens, token{kind: tokIdent, text: text, pos: start})
		case ch == '*':
			if pos+1 < len(src) && src[pos+1] == '*' {
				tokens = append(tokens, token{kind: tokPow, text: "**", pos: pos})
				pos += 2
				continue
			}
			tokens = append(tokens, token{kind: tokStar, text: "*", pos: pos})
			pos++
		default:
			kind, ok := singleCharTokens[ch]
			if !ok {
				// validate runs first, so only multi-byte whitespace lands here
				r, size := utf8.DecodeRuneInString(src[pos:])
				if unicode.IsSpace(r) {
					pos += size
					continue
				}
				return nil, fmt.Errorf("%w: character %q at offset %d", ErrUnknownSymbol, r, pos)
			}
			tokens = append(tokens, token{kind: kind, text: string(ch), pos: pos})
			pos++
		}
	}
	tokens = append(tokens, token{kind: tokEOF, pos: len(src)})
	return tokens, nil
}

var singleCharTokens = map[byte]tokenKind{
	'+': tokPlus,
	'-': tokMinus,
	'/': tokSlash,
	'%': tokPercent,
	'(': tokLParen,
	')': tokRParen,
}

func readNumber(src string, start int) (token, int, error) {
	pos := start
	dotSeen := false
	digits := 0
	for pos < len(src) {
		ch := src[pos]
		if isDigit(ch) {
			digits++
			pos++
			continue
		}
		if ch == '.' {
			if dotSeen {
				return token{}, pos, fmt.Errorf("%w: second decimal point at offset %d", ErrSyntax, pos)
			}
			dotSeen = true
			pos++
			continue
		}
		break
	}
	text := src[start:pos]
	if digits == 0 {
		return token{}, pos, fmt.Errorf("%w: lone decimal point at offset %d", ErrSyntax, start)
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return token{}, pos, fmt.Errorf("%w: number %q out of range", ErrNonFinite, text)
		}
		return token{}, pos, fmt.Errorf("%w: invalid number %q", ErrSyntax, text)
	}
	return token{kind: tokNumber, text: text, value: value, pos: start}, pos, nil
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
