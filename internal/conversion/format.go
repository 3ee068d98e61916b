package conversion

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// HighPrecisionCode gets tiered precision because its practical values
// are tiny fractions.
const HighPrecisionCode = "BTC"

func FormatValue(value float64, code string) string {
	if value == 0 {
		return "0"
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}

	return fixed(value, places(value, code))
}

func places(value float64, code string) int32 {
	if code == HighPrecisionCode {
		switch {
		case value < 0.00001:
			return 8
		case value < 0.001:
			return 6
		case value < 1:
			return 4
		}
		return 2
	}

	abs := math.Abs(value)
	switch {
	case abs < 0.01:
		return 4
	case abs >= 1_000_000:
		return 0
	}
	return 2
}

// fixed rounds half away from zero on the shortest decimal form of value,
// so 1.005 renders as "1.01".
func fixed(value float64, places int32) string {
	return decimal.NewFromFloat(value).StringFixed(places)
}

func UseScientificNotation(value float64) bool {
	return math.Abs(value) < 0.000001 && value != 0
}
