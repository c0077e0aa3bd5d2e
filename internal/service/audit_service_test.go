package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/CustomGPTer/RAMS-Generator/internal/constant"
	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/logger"
	"github.com/CustomGPTer/RAMS-Generator/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingForwarder struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *recordingForwarder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingForwarder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

func TestAuditServiceForwardsEvents(t *testing.T) {
	tests := []struct {
		name       string
		forwardErr error
	}{
		{"forwarder succeeds", nil},
		{"forwarder fails", errors.New("nats unavailable")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
			defer pubSub.Close()

			forwarder := &recordingForwarder{err: tt.forwardErr}
			audit := NewAuditService(pubSub, constant.LifecycleTopic, forwarder, logger.NewNopLogger())
			require.NoError(t, audit.Consume(ctx))

			// an undecodable message is acked and skipped
			require.NoError(t, pubSub.Publish(constant.LifecycleTopic, message.NewMessage(watermill.NewUUID(), []byte("garbage"))))

			publisher := NewPublisherService(constant.LifecycleTopic, pubSub)
			require.NoError(t, publisher.Publish(ctx, events.New(constant.EventSessionStarted, map[string]interface{}{"session_id": "a"})))
			require.NoError(t, publisher.Publish(ctx, events.New(constant.EventDocumentGenerated, nil)))

			assert.Eventually(t, func() bool {
				return len(forwarder.types()) == 2
			}, 2*time.Second, 10*time.Millisecond)
			assert.ElementsMatch(t, []string{constant.EventSessionStarted, constant.EventDocumentGenerated}, forwarder.types())
		})
	}
}

func TestAuditServiceWithoutForwarder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	audit := NewAuditService(pubSub, constant.LifecycleTopic, nil, logger.NewNopLogger())
	require.NoError(t, audit.Consume(ctx))

	publisher := NewPublisherService(constant.LifecycleTopic, pubSub)
	assert.NoError(t, publisher.Publish(ctx, events.New(constant.EventSessionsExpired, map[string]interface{}{"removed": 3})))
}
