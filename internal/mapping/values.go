package mapping

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number returns v as a float when it is numeric or a numeric string.
func Number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// FormatNumber renders a number as a Swift literal: integral values without
// a fractional part, others with up to six significant decimals.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Bool returns v as a bool; "true"/"false" strings are accepted.
func Bool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes":
			return true, true
		case "false", "no":
			return false, true
		}
	case float64:
		return t != 0, true
	}
	return false, false
}

// SwiftString quotes s as a Swift string literal.
func SwiftString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Insets parses margins/paddings: a single number applies to all edges, an
// array of 2 is (vertical, horizontal), 4 is (top, left, bottom, right).
func Insets(v any) ([4]float64, bool) {
	var out [4]float64
	if f, ok := Number(v); ok {
		return [4]float64{f, f, f, f}, true
	}
	arr, ok := v.([]any)
	if !ok {
		return out, false
	}
	nums := make([]float64, 0, len(arr))
	for _, e := range arr {
		f, ok := Number(e)
		if !ok {
			return out, false
		}
		nums = append(nums, f)
	}
	switch len(nums) {
	case 1:
		return [4]float64{nums[0], nums[0], nums[0], nums[0]}, true
	case 2:
		return [4]float64{nums[0], nums[1], nums[0], nums[1]}, true
	case 4:
		return [4]float64{nums[0], nums[1], nums[2], nums[3]}, true
	}
	return out, false
}

// FormatInsets renders insets as UIEdgeInsets or EdgeInsets.
func FormatInsets(in [4]float64, target Target) string {
	if target == SwiftUI {
		return fmt.Sprintf("EdgeInsets(top: %s, leading: %s, bottom: %s, trailing: %s)",
			FormatNumber(in[0]), FormatNumber(in[1]), FormatNumber(in[2]), FormatNumber(in[3]))
	}
	return fmt.Sprintf("UIEdgeInsets(top: %s, left: %s, bottom: %s, right: %s)",
		FormatNumber(in[0]), FormatNumber(in[1]), FormatNumber(in[2]), FormatNumber(in[3]))
}
