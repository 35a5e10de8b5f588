package docedit

import (
	"strconv"
	"strings"
)

// CoerceScalar reinterprets edited text as a typed value: an integer when it
// is digits with an optional leading minus, a float when it has exactly one
// decimal point and is otherwise digits, a boolean when it case-insensitively
// equals true/false, and text otherwise. The coercion is lossy on purpose:
// leading zeros and numeric-looking strings come back as numbers, so values
// that must stay textual have to avoid pure-numeric shapes. Non-string input
// is returned unchanged, which makes the coercion idempotent.
func CoerceScalar(v any) any {
	text, ok := v.(string)
	if !ok {
		return v
	}

	if isIntLiteral(text) {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n
		}
	}
	if isDecimalLiteral(text) {
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f
		}
	}
	if strings.EqualFold(text, "true") {
		return true
	}
	if strings.EqualFold(text, "false") {
		return false
	}
	return text
}

func isIntLiteral(text string) bool {
	digits := strings.TrimPrefix(text, "-")
	return digits != "" && allDigits(digits)
}

func isDecimalLiteral(text string) bool {
	body := strings.TrimPrefix(text, "-")
	intPart, fracPart, found := strings.Cut(body, ".")
	if !found || strings.Contains(fracPart, ".") {
		return false
	}
	if intPart == "" && fracPart == "" {
		return false
	}
	if intPart != "" && !allDigits(intPart) {
		return false
	}
	if fracPart != "" && !allDigits(fracPart) {
		return false
	}
	return true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
