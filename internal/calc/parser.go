package calc

import "fmt"

// parser is a recursive-descent parser over the token stream.
//
// Precedence (low to high):
//  1. + -
//  2. * / %
//  3. ** (right-associative)
//  4. unary - +
//  5. primaries: numbers, constants, name(expr), (expr)
//
// Parentheses, calls, unary operators and power chains each add a nesting
// level; more than maxDepth levels is a syntax error.
type parser struct {
	tokens []token
	pos    int
	depth  int
}

const maxDepth = 512

func parse(tokens []token) (node, error) {
	p := &parser{tokens: tokens}
	n, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %s at offset %d", ErrSyntax, describe(tok), tok.pos)
	}
	return n, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) match(kind tokenKind) bool {
	if p.peek().kind != kind {
		return false
	}
	p.pos++
	return true
}

// enter descends one nesting level. Every successful call must be paired
// with leave.
func (p *parser) enter(pos int) error {
	if p.depth >= maxDepth {
		return fmt.Errorf("%w: nesting deeper than %d levels at offset %d", ErrSyntax, maxDepth, pos)
	}
	p.depth++
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) parseExpression() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokPlus && op != tokMinus {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokStar && op != tokSlash && op != tokPercent {
			return left, nil
		}
		p.next()
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	op := p.peek()
	if !p.match(tokPow) {
		return base, nil
	}
	if err := p.enter(op.pos); err != nil {
		return nil, err
	}
	exp, err := p.parsePower()
	p.leave()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: tokPow, left: base, right: exp}, nil
}

func (p *parser) parseUnary() (node, error) {
	tok := p.peek()
	if op := tok.kind; op == tokMinus || op == tokPlus {
		p.next()
		if err := p.enter(tok.pos); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		p.leave()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: op, operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return &numberNode{value: tok.value}, nil
	case tokLParen:
		if err := p.enter(tok.pos); err != nil {
			return nil, err
		}
		inner, err := p.parseExpression()
		p.leave()
		if err != nil {
			return nil, err
		}
		if !p.match(tokRParen) {
			return nil, fmt.Errorf("%w: missing closing parenthesis for '(' at offset %d", ErrSyntax, tok.pos)
		}
		return inner, nil
	case tokIdent:
		fn, ok := lookupFunction(tok.text)
		if !ok {
			return nil, fmt.Errorf("%w: %q at offset %d", ErrUnknownSymbol, tok.text, tok.pos)
		}
		open := p.peek()
		if !p.match(tokLParen) {
			return nil, fmt.Errorf("%w: expected '(' after %s at offset %d", ErrSyntax, tok.text, open.pos)
		}
		if err := p.enter(open.pos); err != nil {
			return nil, err
		}
		arg, err := p.parseExpression()
		p.leave()
		if err != nil {
			return nil, err
		}
		if !p.match(tokRParen) {
			return nil, fmt.Errorf("%w: missing closing parenthesis for %s( at offset %d", ErrSyntax, tok.text, open.pos)
		}
		return &callNode{name: tok.text, fn: fn, arg: arg}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %s at offset %d", ErrSyntax, describe(tok), tok.pos)
	}
}

func describe(tok token) string {
	if tok.text == "" {
		return tok.kind.String()
	}
	return fmt.Sprintf("%s %q", tok.kind, tok.text)
}
