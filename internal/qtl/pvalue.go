package qtl

import (
	"fmt"
	"math"
	"strings"

	"github.com/statgen/fivex/internal/numparse"
)

// GenomeWideLogP is -log10(5e-8), the genome-wide significance threshold.
const GenomeWideLogP = 7.30103

// ParsePValueToLog converts a nominal p-value to -log10(p). A p-value of
// exactly zero maps to +Inf. Literals too small for a float64 ("1e-400")
// are converted from their mantissa and exponent instead.
func ParsePValueToLog(s string, num numparse.Strategy) (float64, error) {
	if num == nil {
		num = numparse.Standard
	}
	p, err := num.ParseFloat(s)
	if err != nil {
		// strconv reports underflow as a range error with a zero result.
		if lp, ok := logFromLiteral(s); ok {
			return lp, nil
		}
		return 0, err
	}
	switch {
	case math.IsNaN(p) || p < 0:
		return 0, fmt.Errorf("p-value out of range: %s", s)
	case p == 1:
		return 0, nil
	case p == 0:
		if lp, ok := logFromLiteral(s); ok {
			return lp, nil
		}
		return math.Inf(1), nil
	case p < minNormal:
		// math.Log10 is inaccurate for subnormal inputs.
		if lp, ok := logFromLiteral(s); ok {
			return lp, nil
		}
		frac, exp := math.Frexp(p)
		return -(math.Log10(frac) + float64(exp)*math.Log10(2)), nil
	}
	return -math.Log10(p), nil
}

// minNormal is the smallest positive normal float64.
const minNormal = 0x1p-1022

// logFromLiteral computes -log10 of a scientific literal whose value
// underflows. It reports false for literals that are really zero.
func logFromLiteral(s string) (float64, bool) {
	i := strings.IndexAny(s, "eE")
	if i < 0 {
		return 0, false
	}
	mantissa, err := numparse.Standard.ParseFloat(s[:i])
	if err != nil || mantissa <= 0 {
		return 0, false
	}
	exp, err := numparse.Standard.ParseInt(s[i+1:])
	if err != nil {
		return 0, false
	}
	return -(math.Log10(mantissa) + float64(exp)), true
}

// PValueFromLog is the inverse of ParsePValueToLog. +Inf maps back to exactly 0.
func PValueFromLog(logp float64) float64 {
	if math.IsInf(logp, 1) {
		return 0
	}
	return math.Pow(10, -logp)
}
