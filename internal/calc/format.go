package calc

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

const (
	// maxFractionDigits is the rounding precision applied to every displayed result.
	maxFractionDigits = 8
	// exactFractionDigits covers the longest decimal expansion of a float64
	// (the smallest subnormal has 1074 fractional digits).
	exactFractionDigits = 1100
	// fixedLimit is the magnitude from which every float64 is an integer and
	// rounding is skipped.
	fixedLimit = 1e21
)

// Format renders a finite value rounded to eight fractional digits with
// trailing zeros and a dangling decimal point removed. Ties round away from
// zero. The boolean is false for NaN and infinities.
func Format(v float64) (string, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", false
	}
	rounded, err := roundFixed(v, maxFractionDigits)
	if err != nil {
		return "", false
	}
	if rounded == 0 {
		// collapses -0 and tiny negatives that round away
		return "0", true
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64), true
}

// roundFixed rounds v to the given number of fractional digits, deciding on
// the exact binary value rather than a shortest decimal representation.
func roundFixed(v float64, digits int) (float64, error) {
	if v == 0 || math.Abs(v) >= fixedLimit {
		return v, nil
	}

	exact := new(big.Float).SetFloat64(math.Abs(v)).Text('f', exactFractionDigits)
	intPart, frac, _ := strings.Cut(exact, ".")

	kept := []byte(intPart + frac[:digits])
	if frac[digits] >= '5' {
		i := len(kept) - 1
		for ; i >= 0 && kept[i] == '9'; i-- {
			kept[i] = '0'
		}
		if i < 0 {
			kept = append([]byte{'1'}, kept...)
		} else {
			kept[i]++
		}
	}

	split := len(kept) - digits
	r, err := strconv.ParseFloat(string(kept[:split])+"."+string(kept[split:]), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		r = -r
	}
	return r, nil
}
