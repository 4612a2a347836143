// Package numparse provides interchangeable numeric parsing strategies for
// tab-delimited row decoding. A strategy is chosen once at startup.
package numparse

import (
	"fmt"
	"strconv"
)

// Strategy converts text fields to numbers.
type Strategy interface {
	ParseInt(s string) (int64, error)
	ParseFloat(s string) (float64, error)
}

// Standard parses with strconv.
var Standard Strategy = standard{}

// Fast handles plain decimal integers without allocation and defers
// everything else to strconv.
var Fast Strategy = fast{}

// ByName returns the strategy registered under name ("standard" or "fast").
// An empty name selects Standard.
func ByName(name string) (Strategy, error) {
	switch name {
	case "", "standard":
		return Standard, nil
	case "fast":
		return Fast, nil
	}
	return nil, fmt.Errorf("unknown numeric parser %q", name)
}

type standard struct{}

func (standard) ParseInt(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func (standard) ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

type fast struct{}

// maxFastDigits keeps the accumulator clear of int64 overflow.
const maxFastDigits = 18

func (fast) ParseInt(s string) (int64, error) {
	i, neg := 0, false
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		i = 1
	}
	digits := s[i:]
	if len(digits) == 0 || len(digits) > maxFastDigits {
		return strconv.ParseInt(s, 10, 64)
	}
	var n int64
	for j := 0; j < len(digits); j++ {
		c := digits[j]
		if c < '0' || c > '9' {
			return strconv.ParseInt(s, 10, 64)
		}
		n = n*10 + int64(c-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}

func (fast) ParseFloat(s string) (float64, error) {
	// Integral values are common in count-like float columns.
	if n, err := Fast.ParseInt(s); err == nil && len(s) <= 15 {
		return float64(n), nil
	}
	return strconv.ParseFloat(s, 64)
}
