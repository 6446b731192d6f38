package api

// Typed accessors for ComponentParams. JSON-decoded params arrive as
// float64/string/bool/[]interface{}; these normalize the common cases so
// calculation functions stay free of type switches.

// Float returns the named field as a float64, or def when missing or not
// numeric.
func (p ComponentParams) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// Int returns the named field as an int, or def when missing or not
// numeric. Fractional values are truncated.
func (p ComponentParams) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// String returns the named field as a string, or def when missing.
func (p ComponentParams) String(key, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// Bool returns the named field as a bool, or def when missing.
func (p ComponentParams) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// Slice returns the named field as a slice, or nil when missing. Used for
// nested line-item arrays such as equipment lists.
func (p ComponentParams) Slice(key string) []interface{} {
	if v, ok := p[key].([]interface{}); ok {
		return v
	}
	return nil
}
