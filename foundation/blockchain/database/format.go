package database

import (
	"math"
	"strconv"
	"strings"
)

// formatFloat renders a float in its shortest round-trip form the way the
// rest of the network does: fixed notation with at least one fractional
// digit for exponents in [-4, 16), scientific notation outside of that. The
// JSON form drops the plus sign and the zero padding from the exponent.
func formatFloat(v float64, jsonForm bool) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	sci := strconv.FormatFloat(v, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(sci, "e")

	e, err := strconv.Atoi(exp)
	if err != nil {
		return sci
	}

	if e >= -4 && e < 16 {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.ContainsRune(s, '.') {
			s += ".0"
		}
		return s
	}

	if jsonForm {
		return mantissa + "e" + strconv.Itoa(e)
	}

	return sci
}
