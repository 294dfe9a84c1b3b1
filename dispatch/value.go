package dispatch

// Truthiness and comparison rules shared by conditions, processes and
// graph elements. Values flowing through messages are untyped, so the
// rules are defined once here and used everywhere a head or a result has
// to be classified.

// IsEmpty reports whether v counts as "nothing happened": nil, false,
// zero numbers, empty strings and empty collections. Everything else is
// a real result.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case int:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case *Message:
		return t == nil || t.IsEmpty()
	}
	return false
}

// AsInt coerces numeric values to int. The second result is false for
// non-numbers and for floats with a fractional part.
func AsInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t == float64(int(t)) {
			return int(t), true
		}
	}
	return 0, false
}

// Length returns the natural length of v: len for strings and
// collections, 0 for everything else. Used to rank equality matches.
func Length(v any) int {
	switch t := v.(type) {
	case string:
		return len(t)
	case []any:
		return len(t)
	case map[string]any:
		return len(t)
	}
	return 0
}

// Equal compares two message values without panicking on the
// uncomparable kinds that legally travel through messages (slices, maps,
// funcs). Numbers compare across int widths; uncomparable values are
// only ever equal to themselves by reference, which slices and maps
// cannot express, so they compare unequal.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ai, ok := AsInt(a); ok {
		bi, ok := AsInt(b)
		return ok && ai == bi
	}
	if !isComparable(a) || !isComparable(b) {
		return false
	}
	return a == b
}

func isComparable(v any) bool {
	switch v.(type) {
	case []any, map[string]any, map[any]any,
		Func, MessageFunc, ContextFunc, NullaryFunc, RankFunc:
		return false
	}
	return true
}
