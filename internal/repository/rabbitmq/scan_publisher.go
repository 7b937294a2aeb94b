package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"nfcExperience/business/experience"
	"nfcExperience/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ScanQueueName  = "nfc_experience.scans.recorded"
	RoutingKeyScan = "scan.recorded"
	ReconnectDelay = 5 * time.Second
	publishTimeout = 3 * time.Second
)

// ScanPublisher emits a message per recorded scan on a durable topic
// exchange.
type ScanPublisher struct {
	url      string
	exchange string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
}

var _ experience.ScanEventPublisher = (*ScanPublisher)(nil)

func NewScanPublisher(url, exchange string) (*ScanPublisher, error) {
	p := &ScanPublisher{
		url:      url,
		exchange: exchange,
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *ScanPublisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := p.declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	p.mu.Lock()
	p.conn = conn
	p.channel = ch
	p.mu.Unlock()

	go p.watchConnection(conn)

	logger.Info("RabbitMQ connected", "exchange", p.exchange)
	return nil
}

func (p *ScanPublisher) declareTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		ScanQueueName, // name
		true,          // durable
		false,         // delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare scan queue: %w", err)
	}

	if err := ch.QueueBind(ScanQueueName, RoutingKeyScan, p.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind scan queue: %w", err)
	}

	return nil
}

func (p *ScanPublisher) watchConnection(conn *amqp.Connection) {
	err, ok := <-conn.NotifyClose(make(chan *amqp.Error, 1))
	if !ok || err == nil {
		return
	}

	logger.Warn("RabbitMQ connection closed, reconnecting", "error", err)
	for {
		time.Sleep(ReconnectDelay)

		p.mu.Lock()
		closed := p.closed
		p.mu.Unlock()
		if closed {
			return
		}

		if err := p.connect(); err != nil {
			logger.Warn("failed to reconnect to RabbitMQ", "error", err, "retry_in", ReconnectDelay)
			continue
		}
		logger.Info("RabbitMQ reconnected")
		return
	}
}

func (p *ScanPublisher) PublishScan(ctx context.Context, event experience.ScanEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal scan event: %w", err)
	}

	p.mu.Lock()
	ch := p.channel
	p.mu.Unlock()
	if ch == nil || ch.IsClosed() {
		return fmt.Errorf("RabbitMQ channel not (yet) open")
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(ctx,
		p.exchange,     // exchange
		RoutingKeyScan, // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.ScannedAt,
			Type:         string(event.Experience),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish scan event: %w", err)
	}

	return nil
}

func (p *ScanPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
