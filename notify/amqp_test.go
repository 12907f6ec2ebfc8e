package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dcode-github/cozycorner/models"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	declared   []string
	published  [][]byte
	publishErr error
	closes     chan *amqp.Error
	closed     bool
}

func (c *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	c.declared = append(c.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) Publish(_, _ string, _, _ bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, msg.Body)
	return nil
}

func (c *fakeChannel) NotifyClose(ch chan *amqp.Error) chan *amqp.Error {
	c.closes = ch
	return ch
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type fakeConnection struct {
	channels   []*fakeChannel
	channelErr error
	closes     chan *amqp.Error
	closed     bool
}

func (c *fakeConnection) Channel() (amqpChannel, error) {
	if c.channelErr != nil {
		return nil, c.channelErr
	}
	ch := &fakeChannel{}
	c.channels = append(c.channels, ch)
	return ch, nil
}

func (c *fakeConnection) NotifyClose(ch chan *amqp.Error) chan *amqp.Error {
	c.closes = ch
	return ch
}

func (c *fakeConnection) Close() error {
	c.closed = true
	return nil
}

type fakeBroker struct {
	conns   []*fakeConnection
	dialErr error
}

func (b *fakeBroker) dial(string) (amqpConnection, error) {
	if b.dialErr != nil {
		return nil, b.dialErr
	}
	c := &fakeConnection{}
	b.conns = append(b.conns, c)
	return c, nil
}

func (b *fakeBroker) lastChannel() *fakeChannel {
	conn := b.conns[len(b.conns)-1]
	return conn.channels[len(conn.channels)-1]
}

func publishOne(t *testing.T, p *AMQPPublisher, msg string) {
	t.Helper()
	require.NoError(t, p.Publish(context.Background(), models.Notification{Message: msg}))
}

func TestAMQPPublisherDeclaresQueue(t *testing.T) {
	broker := &fakeBroker{}
	p, err := newAMQPPublisher("amqp://broker", "notifications", broker.dial)
	require.NoError(t, err)

	publishOne(t, p, "hello")

	ch := broker.lastChannel()
	assert.Equal(t, []string{"notifications"}, ch.declared)
	require.Len(t, ch.published, 1)
	var n models.Notification
	require.NoError(t, json.Unmarshal(ch.published[0], &n))
	assert.Equal(t, "hello", n.Message)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
	assert.True(t, broker.conns[0].closed)
}

func TestAMQPPublisherReopensClosedChannel(t *testing.T) {
	broker := &fakeBroker{}
	p, err := newAMQPPublisher("amqp://broker", "notifications", broker.dial)
	require.NoError(t, err)

	first := broker.lastChannel()
	first.closes <- &amqp.Error{Code: amqp.PreconditionFailed, Reason: "channel closed"}

	publishOne(t, p, "after channel close")

	require.Len(t, broker.conns, 1)
	require.Len(t, broker.conns[0].channels, 2)
	second := broker.lastChannel()
	assert.Empty(t, first.published)
	assert.Len(t, second.published, 1)
	assert.Equal(t, []string{"notifications"}, second.declared)
}

func TestAMQPPublisherRedialsClosedConnection(t *testing.T) {
	broker := &fakeBroker{}
	p, err := newAMQPPublisher("amqp://broker", "notifications", broker.dial)
	require.NoError(t, err)

	broker.conns[0].closes <- &amqp.Error{Code: amqp.ConnectionForced, Reason: "broker restart"}

	publishOne(t, p, "after connection close")

	require.Len(t, broker.conns, 2)
	assert.Len(t, broker.lastChannel().published, 1)
}

func TestAMQPPublisherRetriesOnceOnErrClosed(t *testing.T) {
	broker := &fakeBroker{}
	p, err := newAMQPPublisher("amqp://broker", "notifications", broker.dial)
	require.NoError(t, err)

	stale := broker.lastChannel()
	stale.publishErr = amqp.ErrClosed

	publishOne(t, p, "retried")

	assert.True(t, stale.closed)
	assert.Len(t, broker.lastChannel().published, 1)
}

func TestAMQPPublisherRedialsWhenChannelOpenFails(t *testing.T) {
	broker := &fakeBroker{}
	p, err := newAMQPPublisher("amqp://broker", "notifications", broker.dial)
	require.NoError(t, err)

	broker.conns[0].channelErr = amqp.ErrClosed
	broker.lastChannel().publishErr = amqp.ErrClosed

	publishOne(t, p, "new connection")

	require.Len(t, broker.conns, 2)
	assert.True(t, broker.conns[0].closed)
	assert.Len(t, broker.lastChannel().published, 1)
}

func TestAMQPPublisherReportsDialFailure(t *testing.T) {
	broker := &fakeBroker{dialErr: errors.New("connection refused")}
	_, err := newAMQPPublisher("amqp://broker", "notifications", broker.dial)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dialing amqp")

	broker.dialErr = nil
	p, err := newAMQPPublisher("amqp://broker", "notifications", broker.dial)
	require.NoError(t, err)

	broker.conns[0].closes <- amqp.ErrClosed
	broker.dialErr = errors.New("connection refused")
	err = p.Publish(context.Background(), models.Notification{Message: "lost"})
	require.Error(t, err)

	broker.dialErr = nil
	publishOne(t, p, "recovered")
}
