package domain

import "sort"

// Translated holds a piece of text keyed by locale code ("fr", "ar", "en").
// It is stored as a JSON object in the database.
type Translated map[string]string

// Resolve returns the text for the requested locale, falling back to the
// default locale and then to the first available locale (sorted for
// determinism). Returns "" only when the map is empty.
func (t Translated) Resolve(locale, defaultLocale string) string {
	if v, ok := t[locale]; ok && v != "" {
		return v
	}
	if v, ok := t[defaultLocale]; ok && v != "" {
		return v
	}

	keys := make([]string, 0, len(t))
	for k := range t {
		if t[k] != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	return t[keys[0]]
}
