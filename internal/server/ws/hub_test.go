package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	wrapped := envelope("opportunities", []byte(`{"opportunity_id":"o1","score":90}`))

	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(wrapped, &msg))
	assert.Equal(t, "opportunities", msg.Type)
	assert.JSONEq(t, `{"opportunity_id":"o1","score":90}`, string(msg.Payload))
}

func TestClientSubscriptions(t *testing.T) {
	c := &client{subs: map[string]bool{}}
	for _, ch := range defaultChannels {
		c.subs[ch] = true
	}

	assert.True(t, c.isSubscribed("groups"))
	assert.True(t, c.isSubscribed("opportunities"))
	assert.False(t, c.isSubscribed("other"))

	c.handleSubscription(subscribeMsg{Action: "unsubscribe", Channels: []string{"groups"}})
	assert.False(t, c.isSubscribed("groups"))
	assert.True(t, c.isSubscribed("opportunities"))

	c.handleSubscription(subscribeMsg{Action: "subscribe", Channels: []string{"groups"}})
	assert.True(t, c.isSubscribed("groups"))

	// Unknown actions leave subscriptions untouched.
	c.handleSubscription(subscribeMsg{Action: "toggle", Channels: []string{"opportunities"}})
	assert.True(t, c.isSubscribed("opportunities"))
}
