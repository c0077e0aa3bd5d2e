package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/CustomGPTer/RAMS-Generator/internal/constant"
	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/logger"
	"github.com/CustomGPTer/RAMS-Generator/internal/repository/memory"
	"github.com/CustomGPTer/RAMS-Generator/pkg/docx/docxtest"
	"github.com/CustomGPTer/RAMS-Generator/pkg/events"
	"github.com/CustomGPTer/RAMS-Generator/pkg/llm"
	"github.com/CustomGPTer/RAMS-Generator/pkg/llm/llmtest"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/assembly"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/section"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/substitute"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/template"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/require"
)

const testTopic = "rams.lifecycle.test"

func numberedQuestions(n int) string {
	var sb strings.Builder
	sb.WriteString("Here are your questions:\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, "%d. Question %d?\n", i, i)
	}
	return sb.String()
}

// scriptedReply answers question prompts with n questions and section
// prompts with small valid section bodies.
func scriptedReply(n int) func(context.Context, []llm.Message) (string, error) {
	return func(_ context.Context, history []llm.Message) (string, error) {
		user := llmtest.LastUser(history)
		switch {
		case strings.Contains(user, "numbered questions"):
			return numberedQuestions(n), nil
		case strings.Contains(user, "Risk Assessment Table"):
			return "Slips\tOperatives\tFall\tHousekeeping\tSupervisor", nil
		case strings.Contains(user, "Sequence of Activities section"):
			return "Step one.\n\nStep two.", nil
		default:
			return "Scope of Works\nAll of it.", nil
		}
	}
}

type fixture struct {
	repo          *memory.SessionRepository
	llm           *llmtest.Fake
	pubSub        *gochannel.GoChannel
	questionnaire IQuestionnaireService
	documents     IDocumentService

	mu       sync.Mutex
	recorded []string
}

func newFixture(t *testing.T, reply func(context.Context, []llm.Message) (string, error)) *fixture {
	t.Helper()
	log := logger.NewNopLogger()
	fake := &llmtest.Fake{Reply: reply}
	repo := memory.NewSessionRepository(time.Hour, time.Hour)
	// publishing blocks until the recorder acks, so events land in publish order
	pubSub := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	gen := section.NewGenerator(fake, section.Options{Temperature: 0.2})
	tmpl := docxtest.Template(constant.HazardSentinel, constant.SequenceMarker, constant.MethodMarker)
	pipeline := assembly.NewPipeline(gen, template.NewBytesStore(tmpl), assembly.Config{
		Filename: constant.DocumentFilename,
		Markers: assembly.Markers{
			HazardSentinel: constant.HazardSentinel,
			SequenceMarker: constant.SequenceMarker,
			MethodMarker:   constant.MethodMarker,
			Table:          substitute.TableOptions{MarkerColumn: constant.HazardMarkerColumn, MaxFields: constant.HazardMaxFields},
		},
	}, log)
	publisher := NewPublisherService(testTopic, pubSub)

	f := &fixture{
		repo:          repo,
		llm:           fake,
		pubSub:        pubSub,
		questionnaire: NewQuestionnaireService(repo, gen, publisher, log, "system", constant.QuestionCount),
		documents:     NewDocumentService(repo, pipeline, publisher, log, constant.QuestionCount),
	}
	f.record(t)
	return f
}

// record subscribes before anything is published and keeps every event type.
func (f *fixture) record(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	messages, err := f.pubSub.Subscribe(ctx, testTopic)
	require.NoError(t, err)

	go func() {
		for msg := range messages {
			if e, err := events.Decode(msg.Payload); err == nil {
				f.mu.Lock()
				f.recorded = append(f.recorded, e.EventType())
				f.mu.Unlock()
			}
			msg.Ack()
		}
	}()
}

// eventTypes waits for n events and returns them in publish order.
func (f *fixture) eventTypes(t *testing.T, n int) []string {
	t.Helper()
	snapshot := func() []string {
		f.mu.Lock()
		defer f.mu.Unlock()
		return append([]string(nil), f.recorded...)
	}
	require.Eventually(t, func() bool { return len(snapshot()) >= n }, 2*time.Second, 10*time.Millisecond,
		"got events %v, want %d", snapshot(), n)
	return snapshot()
}
