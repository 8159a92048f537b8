package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{name: "Nil", err: nil, expected: KindNone},
		{name: "Input validation", err: &ValidationError{Stage: StageInput, Field: "applicationDescription", Reason: "must not be empty"}, expected: KindValidation},
		{name: "Wrapped output validation", err: fmt.Errorf("task: %w", &ValidationError{Stage: StageOutput, Field: "prompt"}), expected: KindValidation},
		{name: "Remote", err: Remote("OpenAI", errors.New("connection refused")), expected: KindRemoteUnavailable},
		{name: "Empty", err: Empty("Groq", ""), expected: KindEmptyReply},
		{name: "Other", err: errors.New("boom"), expected: KindUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if kind := Classify(tc.err); kind != tc.expected {
				t.Errorf("Expected %q, but got %q", tc.expected, kind)
			}
		})
	}
}

func TestRemote(t *testing.T) {
	if Remote("x", nil) != nil {
		t.Fatal("Expected nil for nil error")
	}

	err := Remote("Claude (haiku)", context.DeadlineExceeded)
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Errorf("Expected ErrRemoteUnavailable, but got %v", err)
	}
	if !IsTimeout(err) {
		t.Errorf("Expected the deadline to stay visible through Unwrap")
	}
	if !strings.HasPrefix(err.Error(), "Claude (haiku): ") {
		t.Errorf("Expected provider prefix, but got %q", err.Error())
	}

	if again := Remote("other", err); again != err {
		t.Errorf("Expected an existing remote error to be returned unchanged")
	}
}

func TestIsInputValidation(t *testing.T) {
	in := &ValidationError{Stage: StageInput, Field: "applicationDescription"}
	out := &ValidationError{Stage: StageOutput, Field: "prompt"}

	if !IsInputValidation(in) {
		t.Errorf("Expected input stage to be detected")
	}
	if IsInputValidation(out) {
		t.Errorf("Expected output stage not to count as input validation")
	}
	if IsInputValidation(ErrEmptyReply) {
		t.Errorf("Expected empty reply not to count as input validation")
	}
}

func TestShapeInstructions(t *testing.T) {
	s := &Shape{Name: "n", Field: "responseFormat", Description: " A format. "}
	got := s.Instructions()

	for _, want := range []string{`"responseFormat"`, "A format.", "JSON object"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected instructions to contain %q, but got %q", want, got)
		}
	}
	if got != s.Instructions() {
		t.Errorf("Expected instructions to be stable")
	}
}
