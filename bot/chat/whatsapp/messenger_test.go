package whatsapp

import (
	"WhatsGrapp/entity"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	to, text string
	err      error
}

func (f *fakeSender) SendMessage(_ context.Context, phone, text string) error {
	f.to, f.text = phone, text
	return f.err
}

type fakeListener struct {
	messages []*entity.ChatMessage
}

func (f *fakeListener) OnMessage(_ context.Context, msg *entity.ChatMessage) {
	f.messages = append(f.messages, msg)
}

func TestNotifier_SendMessage(t *testing.T) {
	sender := &fakeSender{}
	listener := &fakeListener{}
	n := NewNotifier(sender, listener)

	require.NoError(t, n.SendMessage(context.Background(), "+6511112222", "hello"))
	assert.Equal(t, "+6511112222", sender.to)
	require.Len(t, listener.messages, 1)
	assert.Equal(t, entity.DirectionOutgoing, listener.messages[0].Direction)
	assert.Equal(t, "hello", listener.messages[0].Text)
}

func TestNotifier_SendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("graph api down")}
	listener := &fakeListener{}
	n := NewNotifier(sender, listener)

	assert.Error(t, n.SendMessage(context.Background(), "+6511112222", "hello"))
	assert.Empty(t, listener.messages)
}
