package artifact

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/duke-git/lancet/v2/strutil"

	"github.com/zbiljic/blueprint/pkg/llm"
)

const (
	// DescriptionField is the name of the only input field.
	DescriptionField = "applicationDescription"
	// MaxDescriptionLength is the maximum description length in runes.
	MaxDescriptionLength = 8000
)

// Request is the input of every task.
type Request struct {
	ApplicationDescription string `json:"applicationDescription"`
}

// NewRequest returns a request for the given description.
func NewRequest(description string) Request {
	return Request{ApplicationDescription: description}
}

// Validate checks the request against the input contract.
func (r Request) Validate() error {
	if strutil.IsBlank(r.ApplicationDescription) {
		return &llm.ValidationError{Stage: llm.StageInput, Field: DescriptionField, Reason: "must not be empty"}
	}
	if n := utf8.RuneCountInString(r.ApplicationDescription); n > MaxDescriptionLength {
		return &llm.ValidationError{Stage: llm.StageInput, Field: DescriptionField, Reason: fmt.Sprintf("must be at most %d characters, got %d", MaxDescriptionLength, n)}
	}
	return nil
}

// Result is a successfully generated artifact.
type Result struct {
	Kind Kind
	Text string
}

// MarshalJSON encodes the result as its single field object, e.g.
// {"prompt": "..."}.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{r.Kind.Field(): r.Text})
}
