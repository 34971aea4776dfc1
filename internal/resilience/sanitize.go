package resilience

import "strings"

const (
	redactedValue       = "[REDACTED]"
	sanitizeStringLimit = 1000
)

var sensitiveKeyFragments = []string{
	"password",
	"passwd",
	"token",
	"secret",
	"key",
	"auth",
	"credential",
	"ssn",
	"social_security",
	"credit_card",
	"card_number",
	"cvv",
}

// SanitizeArgs prepares task arguments for logging. Values under sensitive
// keys are redacted and long strings are truncated.
func SanitizeArgs(args []any, kwargs map[string]any) ([]any, map[string]any) {
	var cleanArgs []any
	if args != nil {
		cleanArgs = make([]any, len(args))
		for i, value := range args {
			cleanArgs[i] = sanitizeValue(value)
		}
	}

	var cleanKwargs map[string]any
	if kwargs != nil {
		cleanKwargs = sanitizeMap(kwargs)
	}

	return cleanArgs, cleanKwargs
}

func sanitizeMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		if isSensitiveKey(key) {
			out[key] = redactedValue
			continue
		}
		out[key] = sanitizeValue(value)
	}
	return out
}

func sanitizeValue(value any) any {
	switch v := value.(type) {
	case string:
		if truncated := truncateRunes(v, sanitizeStringLimit); truncated != v {
			return truncated + "...[truncated]"
		}
		return v
	case map[string]any:
		return sanitizeMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = sanitizeValue(item)
		}
		return out
	default:
		return v
	}
}

func isSensitiveKey(key string) bool {
	lowered := strings.ToLower(key)
	for _, fragment := range sensitiveKeyFragments {
		if strings.Contains(lowered, fragment) {
			return true
		}
	}
	return false
}
