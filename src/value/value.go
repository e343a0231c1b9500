// Package value reads fields of generically decoded JSON and MessagePack
// data. The two decoders return different number types for the same
// document; these accessors treat them alike.
package value

import (
	"fmt"
	"math"
	"strconv"
)

// String renders v as text. Integral floats print without a fraction.
func String(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Int converts any decoded number, or a numeric string, to int. Anything
// else is 0.
func Int(v any) int {
	switch v := v.(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float32:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

func List(v any) []any {
	l, _ := v.([]any)
	return l
}

func Map(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// Strings returns the elements of a list as text, or nil for a non-list.
func Strings(v any) []string {
	l := List(v)
	if l == nil {
		return nil
	}
	out := make([]string, len(l))
	for i, s := range l {
		out[i] = String(s)
	}
	return out
}

func Ints(v any) []int {
	l := List(v)
	out := make([]int, len(l))
	for i, x := range l {
		out[i] = Int(x)
	}
	return out
}
