package section

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/apperror"
	"github.com/CustomGPTer/RAMS-Generator/pkg/llm"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/prompt"
)

// Kind names one generated content block of the document.
type Kind string

const (
	RiskAssessment       Kind = "risk_assessment"
	SequenceOfActivities Kind = "sequence_of_activities"
	MethodStatement      Kind = "method_statement"
)

// Kinds lists every section in document order.
var Kinds = []Kind{RiskAssessment, SequenceOfActivities, MethodStatement}

const (
	MinHazards       = 20
	MinSequenceWords = 600
	MinMethodWords   = 750
)

// ParseKind validates a section name coming from a caller.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Options are the generation parameters shared by every section call.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Request is one self-contained generation call.
type Request struct {
	Section      string
	SystemPrompt string
	UserPrompt   string
}

// Generator wraps one LLM call per section. It holds no mutable state and is
// safe for concurrent use.
type Generator struct {
	provider llm.LLMProvider
	opts     Options
}

func NewGenerator(provider llm.LLMProvider, opts Options) *Generator {
	return &Generator{provider: provider, opts: opts}
}

// Generate runs req under the configured timeout. Every failure, an empty
// reply included, is a *apperror.GenerationFailedError naming the section.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	var history []llm.Message
	if req.SystemPrompt != "" {
		history = append(history, llm.Message{Role: llm.RoleSystem, Content: req.SystemPrompt})
	}
	history = append(history, llm.Message{Role: llm.RoleUser, Content: req.UserPrompt})

	var callOpts []llm.Option
	if g.opts.Model != "" {
		callOpts = append(callOpts, llm.WithModel(g.opts.Model))
	}
	callOpts = append(callOpts, llm.WithTemperature(g.opts.Temperature))
	if g.opts.MaxTokens > 0 {
		callOpts = append(callOpts, llm.WithMaxTokens(g.opts.MaxTokens))
	}

	text, err := g.provider.Chat(ctx, history, callOpts...)
	if err != nil {
		return "", &apperror.GenerationFailedError{Section: req.Section, Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &apperror.GenerationFailedError{Section: req.Section, Err: errors.New("empty response")}
	}
	return text, nil
}

// BuildRequest renders the prompt for kind from the collected answers.
func BuildRequest(kind Kind, systemPrompt, task string, pairs []prompt.Pair) (Request, error) {
	data := prompt.SectionData{Task: task, Pairs: pairs}
	switch kind {
	case RiskAssessment:
		data.MinHazards = MinHazards
	case SequenceOfActivities:
		data.MinWords = MinSequenceWords
	case MethodStatement:
		data.MinWords = MinMethodWords
		data.Subsections = prompt.MethodSubsections
	}

	user, err := prompt.Section(string(kind), data)
	if err != nil {
		return Request{}, err
	}
	return Request{Section: string(kind), SystemPrompt: systemPrompt, UserPrompt: user}, nil
}
