package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// parseJSONArg marks a payload that must reach the procedure as a VARIANT,
// wrapped in PARSE_JSON('...') instead of a plain string literal.
type parseJSONArg struct {
	raw json.RawMessage
}

// ParseJSON serializes v and has it encoded as PARSE_JSON('...').
func ParseJSON(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("unable to serialize VARIANT argument: %w", err)
	}
	return parseJSONArg{raw: raw}, nil
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// EncodeArgument renders one already-validated argument as SQL text. Strings
// are quoted with embedded quotes doubled, JSON payloads are serialized then
// quoted the same way, booleans become lowercase tokens and numbers are
// embedded verbatim.
func EncodeArgument(v any) (string, error) {
	switch arg := v.(type) {
	case string:
		return "'" + escapeQuotes(arg) + "'", nil
	case bool:
		return strconv.FormatBool(arg), nil
	case int:
		return strconv.Itoa(arg), nil
	case int64:
		return strconv.FormatInt(arg, 10), nil
	case float64:
		return strconv.FormatFloat(arg, 'f', -1, 64), nil
	case json.RawMessage:
		return "'" + escapeQuotes(string(arg)) + "'", nil
	case parseJSONArg:
		return "PARSE_JSON('" + escapeQuotes(string(arg.raw)) + "')", nil
	default:
		return "", fmt.Errorf("unsupported argument type %T", v)
	}
}

// BuildCall assembles the CALL statement for a procedure and its arguments.
func BuildCall(procedure string, args ...any) (string, error) {
	encoded := make([]string, len(args))
	for i, arg := range args {
		enc, err := EncodeArgument(arg)
		if err != nil {
			return "", err
		}
		encoded[i] = enc
	}
	return fmt.Sprintf("CALL %s(%s)", procedure, strings.Join(encoded, ", ")), nil
}
