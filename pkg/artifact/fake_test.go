package artifact

import (
	"context"
	"fmt"
	"sync"

	"github.com/zbiljic/blueprint/pkg/llm"
)

type fakeCall struct {
	prompt string
	shape  llm.Shape
}

// fakeAIPrompt answers with reply(field) for every call.
type fakeAIPrompt struct {
	name  string
	reply func(ctx context.Context, field string) (string, error)

	mu    sync.Mutex
	calls []fakeCall
}

var _ llm.AIPrompt = (*fakeAIPrompt)(nil)

func newFake(reply func(ctx context.Context, field string) (string, error)) *fakeAIPrompt {
	return &fakeAIPrompt{name: "Fake (test)", reply: reply}
}

// echoFake replies with a valid object whose value names the field.
func echoFake() *fakeAIPrompt {
	return newFake(func(_ context.Context, field string) (string, error) {
		return fmt.Sprintf(`{%q: "generated %s"}`, field, field), nil
	})
}

func (f *fakeAIPrompt) String() string    { return f.name }
func (f *fakeAIPrompt) IsAvailable() bool { return true }

func (f *fakeAIPrompt) Generate(ctx context.Context, prompt string, shape *llm.Shape) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{prompt: prompt, shape: *shape})
	f.mu.Unlock()

	return f.reply(ctx, shape.Field)
}

func (f *fakeAIPrompt) Calls() []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeCall(nil), f.calls...)
}
