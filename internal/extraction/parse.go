package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseRawJSON extracts the JSON object from a model response and unmarshals
// it into a raw field mapping. No field normalization happens here; values
// stay exactly as the model returned them.
func parseRawJSON(text string) (RawFields, error) {
	text = strings.TrimSpace(text)

	// Remove markdown code blocks if present
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	text = text[startIdx : endIdx+1]

	var fields RawFields
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	return fields, nil
}
