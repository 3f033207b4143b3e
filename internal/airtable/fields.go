package airtable

// Helpers for extracting typed values out of a record's loose field document.
// The provider returns single-selects as strings, multi-selects and lookups
// as arrays; absent fields are simply missing keys.

// StringField returns a string field, or "" if absent or not a string.
func StringField(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

// StringSliceField returns a multi-value field as strings, skipping
// non-string members.
func StringSliceField(fields map[string]any, name string) []string {
	raw, ok := fields[name].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// HasString reports whether a multi-value field contains the exact value.
func HasString(fields map[string]any, name, value string) bool {
	for _, s := range StringSliceField(fields, name) {
		if s == value {
			return true
		}
	}
	return false
}
