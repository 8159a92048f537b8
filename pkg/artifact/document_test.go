package artifact

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/zbiljic/blueprint/pkg/llm"
)

func testBatch() *Batch {
	return &Batch{
		ID: "b-1",
		Outcomes: []Outcome{
			{Kind: PromptKind, Text: "You are an HR assistant."},
			{Kind: DatasetStructureKind, Err: llm.Empty("Groq", "")},
			{Kind: ResponseFormatKind, Text: "line one\nline two"},
		},
	}
}

func TestDocumentJSON(t *testing.T) {
	out, err := json.Marshal(NewDocument(testBatch()))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got["prompt"] != "You are an HR assistant." || got["responseFormat"] != "line one\nline two" {
		t.Errorf("Marshal() = %s", out)
	}
	if v, ok := got["datasetStructure"]; !ok || v != nil {
		t.Errorf("datasetStructure = %v, %v, want null", v, ok)
	}
	errs, _ := got["errors"].(map[string]any)
	detail, _ := errs["datasetStructure"].(map[string]any)
	if detail["kind"] != "empty_reply" {
		t.Errorf("errors = %v", got["errors"])
	}

	if !strings.HasPrefix(string(out), `{"id":"b-1","prompt":`) {
		t.Errorf("Marshal() order = %s", out)
	}
}

func TestDocumentJSONWithoutErrors(t *testing.T) {
	b := &Batch{ID: "b-2", Outcomes: []Outcome{{Kind: PromptKind, Text: "p"}}}

	out, err := json.Marshal(NewDocument(b))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"id":"b-2","prompt":"p"}` {
		t.Errorf("Marshal() = %s", out)
	}
}

func TestDocumentYAML(t *testing.T) {
	out, err := yaml.Marshal(NewDocument(testBatch()))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(out, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v\n%s", err, out)
	}

	testCases := []struct {
		key  string
		want any
	}{
		{"id", "b-1"},
		{"prompt", "You are an HR assistant."},
		{"datasetStructure", nil},
		{"responseFormat", "line one\nline two"},
	}
	for _, tc := range testCases {
		t.Run(tc.key, func(t *testing.T) {
			if got[tc.key] != tc.want {
				t.Errorf("%s = %#v, want %#v", tc.key, got[tc.key], tc.want)
			}
		})
	}

	if !strings.HasPrefix(string(out), "id: b-1\nprompt:") {
		t.Errorf("yaml order:\n%s", out)
	}
}

func TestNewErrorDetail(t *testing.T) {
	d := NewErrorDetail(llm.Remote("OpenAI", errors.New("status 500")))
	if d.Kind != llm.KindRemoteUnavailable || !strings.Contains(d.Message, "status 500") {
		t.Errorf("NewErrorDetail() = %+v", d)
	}
}
