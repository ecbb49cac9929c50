package tools

import (
	"encoding/json"
	"fmt"
)

// decodeStringMap accepts the two argument forms callers use for
// extra_filters and display_fields: a structured JSON object, or a
// JSON-encoded string that decodes to one. Anything else is a
// malformed-input error, not a crash.
func decodeStringMap(raw interface{}) (map[string]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil

	case map[string]interface{}:
		return stringifyValues(v), nil

	case string:
		if v == "" {
			return nil, nil
		}
		var decoded map[string]interface{}
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return nil, fmt.Errorf("not a valid JSON object: %v", err)
		}
		return stringifyValues(decoded), nil

	default:
		return nil, fmt.Errorf("expected a JSON object or a JSON-encoded string, got %T", raw)
	}
}

func stringifyValues(m map[string]interface{}) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}
