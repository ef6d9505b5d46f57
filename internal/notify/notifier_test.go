package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordSender struct {
	name   string
	titles []string
	err    error
}

func (s *recordSender) Send(_ context.Context, title, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.titles = append(s.titles, title)
	return nil
}

func (s *recordSender) Name() string { return s.name }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifyEventFilter(t *testing.T) {
	sender := &recordSender{name: "telegram"}
	n := NewNotifier([]Sender{sender}, []string{"arbitrage"}, testLogger())

	require.NoError(t, n.Notify(context.Background(), "arbitrage", "arb found", "details"))
	require.NoError(t, n.Notify(context.Background(), "internal_inconsistency", "sanity", "details"))

	// Only the allowed event type reaches the sender.
	assert.Equal(t, []string{"arb found"}, sender.titles)
}

func TestNotifyEmptyFilterAllowsAll(t *testing.T) {
	sender := &recordSender{name: "discord"}
	n := NewNotifier([]Sender{sender}, nil, testLogger())

	require.NoError(t, n.Notify(context.Background(), "anything", "t1", "m"))
	assert.Len(t, sender.titles, 1)
}

func TestNotifyAllBypassesFilter(t *testing.T) {
	sender := &recordSender{name: "telegram"}
	n := NewNotifier([]Sender{sender}, []string{"arbitrage"}, testLogger())

	require.NoError(t, n.NotifyAll(context.Background(), "startup", "service online"))
	assert.Equal(t, []string{"startup"}, sender.titles)
}

func TestDispatchContinuesPastSenderFailure(t *testing.T) {
	failing := &recordSender{name: "telegram", err: errors.New("api error")}
	healthy := &recordSender{name: "discord"}
	n := NewNotifier([]Sender{failing, healthy}, nil, testLogger())

	err := n.Notify(context.Background(), "arbitrage", "arb", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram")
	// The healthy sender still received the alert.
	assert.Len(t, healthy.titles, 1)
}

func TestNotifyNoSenders(t *testing.T) {
	n := NewNotifier(nil, nil, testLogger())
	assert.NoError(t, n.Notify(context.Background(), "arbitrage", "t", "m"))
}
