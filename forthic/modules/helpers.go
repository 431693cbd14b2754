package modules

// toInt coerces a stack value to an int, defaulting to 0 for anything
// that isn't already a number. Used by datetime_module for day-count
// arithmetic where the interpreter may hand back int, int64 or float64
// literals depending on how the value reached the stack.
func toInt(val interface{}) int {
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
