package fallback

import (
	"encoding/json"
	"strconv"
	"strings"
)

// SafeString returns a trimmed string or the provided fallback.
func SafeString(value interface{}, fallback string) string {
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if s != "" {
			return s
		}
	}
	return fallback
}

// SafeInt converts common number shapes into int with a fallback.
func SafeInt(value interface{}, fallback int) int {
	switch v := value.(type) {
	case float64:
		if v > 0 {
			return int(v)
		}
	case float32:
		if v > 0 {
			return int(v)
		}
	case int:
		if v > 0 {
			return v
		}
	case int64:
		if v > 0 {
			return int(v)
		}
	case json.Number:
		if n, err := strconv.Atoi(v.String()); err == nil && n > 0 {
			return n
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// SafeBool converts common boolean shapes into bool with a fallback.
func SafeBool(value interface{}, fallback bool) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

// SafeCategory provides a sane default garment category.
func SafeCategory(value interface{}) string {
	category := SafeString(value, "upper_body")
	switch category {
	case "upper_body", "lower_body", "dresses", "shoes", "accessories":
		return category
	}
	return "upper_body"
}
