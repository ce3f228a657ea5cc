package api

// Record is one decoded JSON object from the wire. Helpers below absorb the
// encoding/json quirk of decoding every number as float64.

type Record map[string]any

// Int returns the value under key as an int64.
func (r Record) Int(key string) (int64, bool) {
	switch v := r[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

// ID returns the record's server-assigned identifier.
func (r Record) ID() (int64, bool) {
	return r.Int("id")
}

// String returns the value under key as a string.
func (r Record) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Float returns the value under key as a float64.
func (r Record) Float(key string) float64 {
	if v, ok := r[key].(float64); ok {
		return v
	}
	return 0
}

// Bool returns the value under key as a bool.
func (r Record) Bool(key string) bool {
	if v, ok := r[key].(bool); ok {
		return v
	}
	return false
}

// List returns the nested object array under key (a document entity's
// children on the wire).
func (r Record) List(key string) []Record {
	raw, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}
