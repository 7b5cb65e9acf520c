package calc

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// node is an evaluable expression tree node.
type node interface {
	eval(mode AngleMode) (float64, error)
}

type numberNode struct {
	value float64
}

func (n *numberNode) eval(AngleMode) (float64, error) {
	return n.value, nil
}

type unaryNode struct {
	op      tokenKind
	operand node
}

func (n *unaryNode) eval(mode AngleMode) (float64, error) {
	v, err := n.operand.eval(mode)
	if err != nil {
		return 0, err
	}
	if n.op == tokMinus {
		return -v, nil
	}
	return v, nil
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

func (n *binaryNode) eval(mode AngleMode) (float64, error) {
	l, err := n.left.eval(mode)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(mode)
	if err != nil {
		return 0, err
	}

	var v float64
	switch n.op {
	case tokPlus:
		v = l + r
	case tokMinus:
		v = l - r
	case tokStar:
		v = l * r
	case tokSlash:
		if r == 0 {
			return 0, fmt.Errorf("%w: division by zero", ErrNonFinite)
		}
		v = l / r
	case tokPercent:
		if r == 0 {
			return 0, fmt.Errorf("%w: modulo by zero", ErrDomain)
		}
		v = math.Mod(l, r)
	case tokPow:
		v = math.Pow(l, r)
		if math.IsNaN(v) {
			return 0, fmt.Errorf("%w: %g ** %g", ErrDomain, l, r)
		}
	default:
		return 0, fmt.Errorf("%w: unexpected operator %s", ErrSyntax, n.op)
	}
	return checkFinite(v)
}

type callNode struct {
	name string
	fn   function
	arg  node
}

func (n *callNode) eval(mode AngleMode) (float64, error) {
	x, err := n.arg.eval(mode)
	if err != nil {
		return 0, err
	}
	if n.fn.trig && mode == Degrees {
		x = x * math.Pi / 180
	}
	if n.fn.domain != nil && !n.fn.domain(x) {
		return 0, fmt.Errorf("%w: %s(%g)", ErrDomain, n.name, x)
	}
	return checkFinite(n.fn.apply(x))
}

// function is a single-argument entry of the function table.
type function struct {
	apply  func(float64) float64
	domain func(float64) bool
	trig   bool
}

func positive(x float64) bool    { return x > 0 }
func nonNegative(x float64) bool { return x >= 0 }

// functions is the fixed table of callable names. Lookups are case-insensitive.
var functions = map[string]function{
	"sin":   {apply: math.Sin, trig: true},
	"cos":   {apply: math.Cos, trig: true},
	"tan":   {apply: math.Tan, trig: true},
	"log":   {apply: math.Log, domain: positive},
	"log10": {apply: math.Log10, domain: positive},
	"sqrt":  {apply: math.Sqrt, domain: nonNegative},
	"abs":   {apply: math.Abs},
}

func lookupFunction(name string) (function, bool) {
	fn, ok := functions[strings.ToLower(name)]
	return fn, ok
}

// FunctionNames returns the callable function names in sorted order.
func FunctionNames() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkFinite(v float64) (float64, error) {
	if math.IsNaN(v) {
		return 0, fmt.Errorf("%w: NaN", ErrDomain)
	}
	if math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: overflow", ErrNonFinite)
	}
	return v, nil
}
