package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/zbiljic/blueprint/pkg/llm"
)

func mustTask(t *testing.T, kind Kind) *Task {
	t.Helper()
	task, err := TaskFor(kind)
	if err != nil {
		t.Fatalf("Failed to load task: %v", err)
	}
	return task
}

func TestTasks(t *testing.T) {
	tasks, err := Tasks()
	if err != nil {
		t.Fatalf("Failed to load tasks: %v", err)
	}

	if len(tasks) != len(Kinds()) {
		t.Fatalf("Expected %d tasks, but got %d", len(Kinds()), len(tasks))
	}

	for i, task := range tasks {
		if task.Kind != Kinds()[i] {
			t.Errorf("Expected task %d to be %v, but got %v", i, Kinds()[i], task.Kind)
		}
		if task.InputField != DescriptionField {
			t.Errorf("Expected input field %q, but got %q", DescriptionField, task.InputField)
		}
		if task.OutputField != task.Kind.Field() {
			t.Errorf("Expected output field %q, but got %q", task.Kind.Field(), task.OutputField)
		}
		if task.Version == "" || task.Name == "" {
			t.Errorf("Expected task %v to be named and versioned", task.Kind)
		}
	}
}

func TestRender(t *testing.T) {
	testCases := []struct {
		kind     Kind
		contains []string
		suffix   string
	}{
		{
			kind:     PromptKind,
			contains: []string{"Application Description: chatbot for HR"},
			suffix:   "Prompt:",
		},
		{
			kind: DatasetStructureKind,
			contains: []string{
				"You are an AI expert in generating dataset structures for fine-tuning LLMs.",
				"  Application Description: chatbot for HR",
			},
			suffix: "Dataset Structure:",
		},
		{
			kind: ResponseFormatKind,
			contains: []string{
				"generate a suggested response format for the LLM to follow",
				"Application Description: chatbot for HR",
			},
			suffix: "Suggested Response Format:",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			task := mustTask(t, tc.kind)

			first, err := task.Render(NewRequest("chatbot for HR"))
			if err != nil {
				t.Fatalf("Expected no error, but got %v", err)
			}
			second, _ := task.Render(NewRequest("chatbot for HR"))
			if first != second {
				t.Errorf("Expected rendering to be byte-identical across calls")
			}

			for _, want := range tc.contains {
				if !strings.Contains(first, want) {
					t.Errorf("Expected rendered template to contain %q, but got %q", want, first)
				}
			}
			if !strings.HasSuffix(first, tc.suffix) {
				t.Errorf("Expected rendered template to end with %q", tc.suffix)
			}
			if strings.Count(first, "chatbot for HR") != 1 {
				t.Errorf("Expected exactly one substitution")
			}
		})
	}
}

func TestRenderVerbatim(t *testing.T) {
	task := mustTask(t, ResponseFormatKind)
	description := `<b>"quotes"</b> & {{.ApplicationDescription}}`

	got, err := task.Render(NewRequest(description))
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if !strings.Contains(got, "Application Description: "+description+"\n") {
		t.Errorf("Expected the description to be inserted verbatim, but got %q", got)
	}
}

func TestRunValidatesInput(t *testing.T) {
	testCases := []struct {
		name        string
		description string
	}{
		{name: "Missing", description: ""},
		{name: "Blank", description: " \n\t "},
		{name: "Too long", description: strings.Repeat("a", MaxDescriptionLength+1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake := echoFake()

			_, err := mustTask(t, PromptKind).Run(context.Background(), fake, NewRequest(tc.description))
			if !llm.IsInputValidation(err) {
				t.Fatalf("Expected input validation error, but got %v", err)
			}

			var ve *llm.ValidationError
			if errors.As(err, &ve) && ve.Field != DescriptionField {
				t.Errorf("Expected field %q, but got %q", DescriptionField, ve.Field)
			}

			if n := len(fake.Calls()); n != 0 {
				t.Errorf("Expected no remote call, but got %d", n)
			}
		})
	}
}

func TestRun(t *testing.T) {
	remoteErr := llm.Remote("Fake (test)", errors.New("connection refused"))

	testCases := []struct {
		name     string
		reply    string
		replyErr error
		expected string
		wantErr  error
	}{
		{
			name:     "Conforming reply",
			reply:    `{"datasetStructure": "question: string"}`,
			expected: "question: string",
		},
		{
			name:    "Wrong field name",
			reply:   `{"prompt": "question: string"}`,
			wantErr: llm.ErrValidation,
		},
		{
			name:    "Non-string value",
			reply:   `{"datasetStructure": ["question", "answer"]}`,
			wantErr: llm.ErrValidation,
		},
		{
			name:    "No content",
			reply:   "",
			wantErr: llm.ErrEmptyReply,
		},
		{
			name:     "Remote failure",
			replyErr: remoteErr,
			wantErr:  llm.ErrRemoteUnavailable,
		},
		{
			name:     "Raw context error",
			replyErr: context.DeadlineExceeded,
			wantErr:  llm.ErrRemoteUnavailable,
		},
		{
			name:     "Provider empty reply",
			replyErr: llm.Empty("Fake (test)", "no candidates"),
			wantErr:  llm.ErrEmptyReply,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake := newFake(func(context.Context, string) (string, error) {
				return tc.reply, tc.replyErr
			})

			task := mustTask(t, DatasetStructureKind)
			res, err := task.Run(context.Background(), fake, NewRequest("chatbot for HR"))

			calls := fake.Calls()
			if len(calls) != 1 {
				t.Fatalf("Expected exactly one remote call, but got %d", len(calls))
			}
			if calls[0].shape.Field != "datasetStructure" {
				t.Errorf("Expected shape field datasetStructure, but got %q", calls[0].shape.Field)
			}
			rendered, _ := task.Render(NewRequest("chatbot for HR"))
			if calls[0].prompt != rendered {
				t.Errorf("Expected the rendered template to be sent")
			}

			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Expected %v, but got %v", tc.wantErr, err)
				}
				if res.Text != "" {
					t.Errorf("Expected no result on error, but got %q", res.Text)
				}
				return
			}

			if err != nil {
				t.Fatalf("Expected no error, but got %v", err)
			}
			if res.Kind != DatasetStructureKind || res.Text != tc.expected {
				t.Errorf("Unexpected result %+v", res)
			}
		})
	}
}

func TestResultMarshalJSON(t *testing.T) {
	b, err := json.Marshal(Result{Kind: ResponseFormatKind, Text: "JSON with keys"})
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if string(b) != `{"responseFormat":"JSON with keys"}` {
		t.Errorf("Unexpected JSON %s", b)
	}
}
