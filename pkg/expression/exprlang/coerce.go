package exprlang

import (
	"errors"
	"time"
)

var errIncomparable = errors.New("operands are not comparable")

// coerceNumber accepts every numeric kind the decoders and expr literals
// produce. Strings are not coerced: "10" < 9 is an error, not a comparison.
func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case time.Duration:
		return float64(v), true
	default:
		return 0, false
	}
}
