package outbox

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelopeDefaults(t *testing.T) {
	local := time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	id := uuid.New()
	env := newEnvelope(id, DomainEvent{OccurredAt: local}, json.RawMessage(`{"a":1}`))

	assert.Equal(t, CurrentEnvelopeVersion, env.Version)
	assert.Equal(t, time.UTC, env.OccurredAt.Location())
	assert.True(t, env.OccurredAt.Equal(local))
	assert.Equal(t, id.String(), env.EventID)
}

func TestDecodeEnvelopeRejectsUnusablePayloads(t *testing.T) {
	valid := func(mutate func(*PayloadEnvelope)) []byte {
		env := PayloadEnvelope{
			Version:    1,
			EventID:    uuid.NewString(),
			OccurredAt: time.Now().UTC(),
			Data:       json.RawMessage(`{"orderId":"x"}`),
		}
		if mutate != nil {
			mutate(&env)
		}
		raw, err := json.Marshal(env)
		require.NoError(t, err)
		return raw
	}

	_, err := DecodeEnvelope(valid(nil))
	require.NoError(t, err)

	cases := map[string][]byte{
		"not json":       []byte("{"),
		"future version": valid(func(e *PayloadEnvelope) { e.Version = CurrentEnvelopeVersion + 1 }),
		"zero version":   valid(func(e *PayloadEnvelope) { e.Version = 0 }),
		"bad event id":   valid(func(e *PayloadEnvelope) { e.EventID = "evt-1" }),
		"null data":      valid(func(e *PayloadEnvelope) { e.Data = json.RawMessage("null") }),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeEnvelope(raw)
			assert.Error(t, err)
		})
	}
}
