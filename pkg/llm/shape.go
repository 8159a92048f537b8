package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Shape describes the reply expected from the model: a JSON object with a
// single string field.
type Shape struct {
	// Name identifies the shape towards providers that support named
	// schemas. It must match ^[a-zA-Z0-9_-]+$.
	Name string
	// Field is the only property of the reply object.
	Field string
	// Description tells the model what the field should contain.
	Description string
}

const shapeInstructionsFormat = `You respond only with a JSON object and nothing else.
The object has exactly one property named %q of type string.
%q: %s
Do not wrap the JSON object in markdown code fences.`

// Instructions renders the shape as natural-language instructions, used as
// the system prompt.
func (s *Shape) Instructions() string {
	return fmt.Sprintf(shapeInstructionsFormat, s.Field, s.Field, strings.TrimSpace(s.Description))
}

// Schema is a JSON schema document.
type Schema map[string]any

func (s Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any(s))
}

// JSONSchema returns the JSON schema of the shape. Every provider with native
// structured output sends this document.
func (s *Shape) JSONSchema() Schema {
	return Schema{
		"type": "object",
		"properties": map[string]any{
			s.Field: map[string]any{
				"type":        "string",
				"description": s.Description,
			},
		},
		"required":             []string{s.Field},
		"additionalProperties": false,
	}
}
