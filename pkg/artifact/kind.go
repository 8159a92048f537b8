package artifact

import (
	"fmt"
	"strings"
)

// Kind is one of the generated artifacts.
type Kind int

const (
	// PromptKind is the suggested prompt for the described application.
	PromptKind Kind = iota
	// DatasetStructureKind is the suggested fine-tuning dataset structure.
	DatasetStructureKind
	// ResponseFormatKind is the suggested response format.
	ResponseFormatKind
)

// KindIds maps Kind to their string representations.
var KindIds = map[Kind][]string{
	PromptKind:           {"prompt"},
	DatasetStructureKind: {"dataset-structure", "dataset"},
	ResponseFormatKind:   {"response-format", "format"},
}

type kindInfo struct {
	field       string
	title       string
	description string
	placeholder string
}

var kindInfos = map[Kind]kindInfo{
	PromptKind: {
		field:       "prompt",
		title:       "Generated Prompt",
		description: "This is the AI-powered generated prompt based on your description.",
		placeholder: "No prompt generated.",
	},
	DatasetStructureKind: {
		field:       "datasetStructure",
		title:       "Dataset Structure",
		description: "This is the AI-powered generated dataset structure for fine-tuning.",
		placeholder: "No dataset structure generated.",
	},
	ResponseFormatKind: {
		field:       "responseFormat",
		title:       "Response Format",
		description: "This is the AI-powered generated response format from the LLM.",
		placeholder: "No response format generated.",
	},
}

// Kinds returns all kinds in display order.
func Kinds() []Kind {
	return []Kind{PromptKind, DatasetStructureKind, ResponseFormatKind}
}

// ParseKind parses a kind id or output field name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for _, k := range Kinds() {
		if strings.EqualFold(kindInfos[k].field, s) {
			return k, nil
		}
		for _, id := range KindIds[k] {
			if strings.EqualFold(id, s) {
				return k, nil
			}
		}
	}
	return Kind(0), fmt.Errorf("unknown artifact kind: %s", s)
}

// String returns the canonical id of the kind.
func (k Kind) String() string {
	if val, ok := KindIds[k]; ok {
		return val[0]
	}
	return fmt.Sprintf("UnknownKind(%d)", int(k))
}

// Field returns the name of the output field holding the artifact.
func (k Kind) Field() string { return kindInfos[k].field }

// Title returns the human readable name of the artifact.
func (k Kind) Title() string { return kindInfos[k].title }

// Description returns a one sentence explanation of the artifact.
func (k Kind) Description() string { return kindInfos[k].description }

// Placeholder is shown in place of an artifact that was not generated.
func (k Kind) Placeholder() string { return kindInfos[k].placeholder }
