package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// stripJSONFences removes markdown code fences the model sometimes wraps
// around JSON output, despite instructions not to.
func stripJSONFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// parseJSONObject decodes the model's raw output as a JSON object.
func parseJSONObject(raw string) (map[string]any, error) {
	cleaned := stripJSONFences(raw)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}
	return parsed, nil
}
