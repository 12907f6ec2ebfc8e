package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dcode-github/cozycorner/logger"
	"github.com/dcode-github/cozycorner/models"
	"github.com/streadway/amqp"
)

type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	NotifyClose(c chan *amqp.Error) chan *amqp.Error
	Close() error
}

type amqpConnection interface {
	Channel() (amqpChannel, error)
	NotifyClose(c chan *amqp.Error) chan *amqp.Error
	Close() error
}

type brokerConnection struct{ *amqp.Connection }

func (c brokerConnection) Channel() (amqpChannel, error) { return c.Connection.Channel() }

func dialBroker(url string) (amqpConnection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return brokerConnection{conn}, nil
}

// AMQPPublisher publishes notifications as JSON to a durable queue. The
// connection and channel are opened lazily and reopened after the broker
// closes either of them.
type AMQPPublisher struct {
	mu    sync.Mutex
	url   string
	queue string
	dial  func(url string) (amqpConnection, error)

	connection amqpConnection
	connClosed chan *amqp.Error
	channel    amqpChannel
	chanClosed chan *amqp.Error
}

func DialAMQP(url, queue string) (*AMQPPublisher, error) {
	return newAMQPPublisher(url, queue, dialBroker)
}

func newAMQPPublisher(url, queue string, dial func(string) (amqpConnection, error)) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url, queue: queue, dial: dial}
	if err := p.open(); err != nil {
		return nil, err
	}
	return p, nil
}

// open makes sure a live channel exists. Callers hold mu.
func (p *AMQPPublisher) open() error {
	p.dropClosed()
	if p.channel != nil {
		return nil
	}

	reused := p.connection != nil
	if !reused {
		if err := p.redial(); err != nil {
			return err
		}
	}

	ch, err := p.connection.Channel()
	if err != nil && reused {
		// The connection died without a notification reaching us yet.
		p.connection.Close()
		if err := p.redial(); err != nil {
			return err
		}
		ch, err = p.connection.Channel()
	}
	if err != nil {
		p.connection.Close()
		p.connection = nil
		return fmt.Errorf("opening amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		ch.Close()
		return fmt.Errorf("declaring queue %s: %w", p.queue, err)
	}
	p.channel = ch
	p.chanClosed = ch.NotifyClose(make(chan *amqp.Error, 1))
	return nil
}

func (p *AMQPPublisher) redial() error {
	p.connection = nil
	conn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("dialing amqp: %w", err)
	}
	p.connection = conn
	p.connClosed = conn.NotifyClose(make(chan *amqp.Error, 1))
	return nil
}

// dropClosed forgets a connection or channel the broker has closed.
func (p *AMQPPublisher) dropClosed() {
	if p.connection != nil {
		select {
		case err := <-p.connClosed:
			logger.Warn("amqp connection closed", "error", err)
			p.connection = nil
			p.channel = nil
		default:
		}
	}
	if p.channel != nil {
		select {
		case err := <-p.chanClosed:
			logger.Warn("amqp channel closed", "error", err)
			p.channel = nil
		default:
		}
	}
}

func (p *AMQPPublisher) Publish(_ context.Context, n models.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.open(); err != nil {
		return err
	}
	err = p.channel.Publish("", p.queue, false, false, msg)
	if !errors.Is(err, amqp.ErrClosed) {
		return err
	}

	// The close notification may not have arrived yet. Retry once on a
	// fresh channel.
	p.channel.Close()
	p.channel = nil
	if err := p.open(); err != nil {
		return err
	}
	return p.channel.Publish("", p.queue, false, false, msg)
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
		p.channel = nil
	}
	if p.connection != nil {
		errs = append(errs, p.connection.Close())
		p.connection = nil
	}
	return errors.Join(errs...)
}
