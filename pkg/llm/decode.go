package llm

import (
	"strings"

	"github.com/duke-git/lancet/v2/strutil"
	"github.com/tidwall/gjson"
)

// ExtractJSON extracts JSON content from AI responses that may be wrapped in markdown
func ExtractJSON(response string) string {
	// Remove leading/trailing whitespace
	response = strings.TrimSpace(response)

	if !strings.HasPrefix(response, "```") {
		return response
	}

	var (
		jsonLines   []string
		inCodeBlock bool
	)

	for _, line := range strings.Split(response, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inCodeBlock {
				break
			}
			// opening fence, optionally with a language tag
			inCodeBlock = true
			continue
		}

		if inCodeBlock {
			jsonLines = append(jsonLines, line)
		}
	}

	if len(jsonLines) > 0 {
		return strings.Join(jsonLines, "\n")
	}

	return response
}

// DecodeField validates reply against shape and returns the value of its
// single string field. Unknown extra properties are ignored.
func DecodeField(reply string, shape *Shape) (string, error) {
	if strutil.IsBlank(reply) {
		return "", ErrEmptyReply
	}

	content := ExtractJSON(reply)

	if !gjson.Valid(content) {
		return "", &ValidationError{Stage: StageOutput, Field: shape.Field, Reason: "reply is not valid JSON"}
	}

	result := gjson.Parse(content)
	if !result.IsObject() {
		return "", &ValidationError{Stage: StageOutput, Field: shape.Field, Reason: "reply is not a JSON object"}
	}

	var (
		value gjson.Result
		found bool
	)
	// iterate instead of using a path so field names are matched literally
	result.ForEach(func(key, v gjson.Result) bool {
		if key.String() == shape.Field {
			value, found = v, true
			return false
		}
		return true
	})

	if !found {
		return "", &ValidationError{Stage: StageOutput, Field: shape.Field, Reason: "missing field"}
	}

	if value.Type != gjson.String {
		return "", &ValidationError{Stage: StageOutput, Field: shape.Field, Reason: "field is not a string, got " + value.Type.String()}
	}

	if strutil.IsBlank(value.String()) {
		return "", ErrEmptyReply
	}

	return value.String(), nil
}
