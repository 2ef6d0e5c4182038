package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProducer_NoBrokers(t *testing.T) {
	require.Nil(t, NewProducer(nil))
	require.Nil(t, NewProducer([]string{}))
}

// Handlers publish unconditionally; without a broker the producer is nil and
// every publish must be a silent no-op.
func TestPublishEvent_NilProducer(t *testing.T) {
	var p *Producer

	err := p.PublishEvent(t.Context(), TopicChatEvents, "1", map[string]any{
		"type": "message_sent",
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}
