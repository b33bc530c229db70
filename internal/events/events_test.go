package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeBecomesKeyedMessage(t *testing.T) {
	env, err := NewEnvelope(SaleCompleted, "main-store", "req-1", map[string]any{"sale_id": "sale-1", "total_amount": 7000})
	require.NoError(t, err)
	assert.Equal(t, eventVersion, env.EventVersion)
	assert.Equal(t, producerName, env.Producer)
	assert.NotEmpty(t, env.EventID)

	msg, err := toMessage(env)
	require.NoError(t, err)
	assert.Equal(t, "main-store", string(msg.Key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, SaleCompleted, headers["event-type"])
	assert.Equal(t, "req-1", headers["correlation-id"])

	var decoded Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, env.EventID, decoded.EventID)
	assert.JSONEq(t, `{"sale_id":"sale-1","total_amount":7000}`, string(decoded.Payload))
}

func TestRecorderKeepsOrder(t *testing.T) {
	rec := &Recorder{}
	a, _ := NewEnvelope(SaleCreated, "loc", "", nil)
	b, _ := NewEnvelope(SaleMarked, "loc", "", nil)
	require.NoError(t, rec.Publish(context.Background(), a, b))
	assert.Equal(t, []string{SaleCreated, SaleMarked}, rec.Types())
}
