// Package amqp provides a StoreCoordinator which speaks to a remote store
// coordinator process over RabbitMQ, using a reply-queue RPC pattern: each
// request is published with a correlation id, and responses are routed back
// to the waiting caller by a demultiplexing consumer.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chunksink/chunksink"
	"github.com/chunksink/chunksink/internal/codec"
	"github.com/chunksink/chunksink/logging"
	"github.com/gofrs/uuid"
	"github.com/jonboulle/clockwork"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Client is a StoreCoordinator backed by a RabbitMQ connection
type Client struct {
	conf       *ConnectionConfig
	conn       *amqp.Connection
	channel    *amqp.Channel
	replyQueue string
	clock      clockwork.Clock
	log        *slog.Logger

	pendingLock sync.Mutex
	pending     map[string]chan *codec.Response
}

// CreateClient connects to RabbitMQ and starts the response demultiplexer.
// The returned Client is safe for concurrent use and should be shared
// process-wide via coordinator.GetOrInit.
func CreateClient(conf *ConnectionConfig, log *slog.Logger) (*Client, error) {
	ensureDefaultConnectionConfigValues(conf)
	if log == nil {
		log = logging.CreateNopLogger()
	}
	conn, err := amqp.Dial(conf.BuildURL())
	if err != nil {
		return nil, fmt.Errorf("Unable to connect to RabbitMQ at %s: %w", conf.Host, err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("Unable to open channel: %w", err)
	}
	_, err = channel.QueueDeclare(conf.RequestQueue, true, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("Unable to declare request queue %s: %w", conf.RequestQueue, err)
	}
	reply, err := channel.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("Unable to declare reply queue: %w", err)
	}
	deliveries, err := channel.Consume(reply.Name, "", true, true, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("Unable to consume from reply queue: %w", err)
	}
	client := &Client{
		conf:       conf,
		conn:       conn,
		channel:    channel,
		replyQueue: reply.Name,
		clock:      clockwork.NewRealClock(),
		log:        log,
		pending:    make(map[string]chan *codec.Response),
	}
	go client.demux(deliveries)
	return client, nil
}

// demux routes responses from the reply queue to waiting callers by
// correlation id. It exits when the connection is closed.
func (c *Client) demux(deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		res, err := codec.DecodeResponse(d.Body)
		if err != nil {
			c.log.Warn("discarding undecodable coordinator response", "error", err)
			continue
		}
		c.pendingLock.Lock()
		waiter, ok := c.pending[d.CorrelationId]
		c.pendingLock.Unlock()
		if !ok {
			// caller already timed out and abandoned this exchange
			continue
		}
		select {
		case waiter <- res:
		default:
		}
	}
}

func (c *Client) register(corrID string) chan *codec.Response {
	waiter := make(chan *codec.Response, 1)
	c.pendingLock.Lock()
	c.pending[corrID] = waiter
	c.pendingLock.Unlock()
	return waiter
}

func (c *Client) unregister(corrID string) {
	c.pendingLock.Lock()
	delete(c.pending, corrID)
	c.pendingLock.Unlock()
}

// ask publishes a request and waits for its correlated response. A zero
// timeout means the exchange is bounded only by ctx.
func (c *Client) ask(ctx context.Context, req *codec.Request) (*codec.Response, error) {
	corrID, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	body, err := codec.EncodeRequest(req)
	if err != nil {
		return nil, err
	}
	waiter := c.register(corrID.String())
	defer c.unregister(corrID.String())
	err = c.channel.PublishWithContext(ctx, "", c.conf.RequestQueue, false, false, amqp.Publishing{
		ContentType:   "application/octet-stream",
		CorrelationId: corrID.String(),
		ReplyTo:       c.replyQueue,
		Body:          body,
	})
	if err != nil {
		return nil, fmt.Errorf("Unable to publish coordinator request: %w", err)
	}
	select {
	case res := <-waiter:
		return res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.clock.After(c.conf.RPCTimeout):
		return nil, fmt.Errorf("Coordinator did not respond within %s", c.conf.RPCTimeout)
	}
}

// IngestRows delivers a batch of rows to the remote coordinator
func (c *Client) IngestRows(ctx context.Context, batch *chunksink.IngestBatch) error {
	res, err := c.ask(ctx, &codec.Request{
		Kind:           codec.KindIngest,
		Ref:            batch.Ref,
		Version:        batch.Version,
		ColumnNames:    batch.ColumnNames,
		PartitionIndex: batch.PartitionIndex,
		Rows:           batch.Rows,
	})
	if err != nil {
		return err
	}
	switch res.Status {
	case codec.StatusAck:
		return nil
	case codec.StatusError:
		return fmt.Errorf("Coordinator rejected rows for %s: %s", batch.Ref.String(), res.Error)
	default:
		return fmt.Errorf("Unexpected coordinator response status %d", res.Status)
	}
}

// Truncate asks the remote coordinator to discard all ingested data for a
// dataset version
func (c *Client) Truncate(ctx context.Context, ref chunksink.DatasetRef, version int) error {
	res, err := c.ask(ctx, &codec.Request{
		Kind:    codec.KindTruncate,
		Ref:     ref,
		Version: version,
	})
	if err != nil {
		return err
	}
	switch res.Status {
	case codec.StatusAck:
		return nil
	case codec.StatusError:
		return fmt.Errorf("Coordinator failed to truncate %s: %s", ref.String(), res.Error)
	default:
		return fmt.Errorf("Unexpected coordinator response status %d", res.Status)
	}
}

// Flush asks the remote coordinator to persist buffered data for a dataset
// version. Any response other than an explicit flush acknowledgement is
// reported as FlushUnknown.
func (c *Client) Flush(ctx context.Context, ref chunksink.DatasetRef, version int) (chunksink.FlushStatus, error) {
	res, err := c.ask(ctx, &codec.Request{
		Kind:    codec.KindFlush,
		Ref:     ref,
		Version: version,
	})
	if err != nil {
		return chunksink.FlushUnknown, err
	}
	switch res.Status {
	case codec.StatusFlushed:
		return chunksink.Flushed, nil
	case codec.StatusError:
		return chunksink.FlushUnknown, fmt.Errorf("Coordinator failed to flush %s: %s", ref.String(), res.Error)
	default:
		return chunksink.FlushUnknown, nil
	}
}

// Close shuts down the channel and connection, stopping the demultiplexer
func (c *Client) Close() error {
	if err := c.channel.Close(); err != nil {
		return err
	}
	return c.conn.Close()
}
