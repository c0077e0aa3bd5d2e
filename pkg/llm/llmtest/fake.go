// Package llmtest provides an in-memory LLMProvider for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/CustomGPTer/RAMS-Generator/pkg/llm"
)

// Call records one Chat invocation.
type Call struct {
	History []llm.Message
	Options llm.Options
}

// Fake answers every Chat with Reply. It is safe for concurrent use.
type Fake struct {
	Reply func(ctx context.Context, history []llm.Message) (string, error)

	mu    sync.Mutex
	calls []Call
}

var _ llm.LLMProvider = &Fake{}

func (f *Fake) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{History: history, Options: llm.Apply(llm.Options{}, opts...)})
	f.mu.Unlock()
	return f.Reply(ctx, history)
}

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// LastUser returns the content of the last user message in history.
func LastUser(history []llm.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == llm.RoleUser {
			return history[i].Content
		}
	}
	return ""
}
