package rabbit

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Message is one delivered queue item. The consumer must Ack or Nack it;
// unacked messages are redelivered when the channel closes.
type Message interface {
	AckMsg() error
	NackMsg(requeue bool) error
	Body() []byte
}

type ConsumerMessage struct {
	body     []byte
	delivery *amqp.Delivery
}

// consumeQueue consumes messages from the named queue and forwards them on the
// returned channel until the context is cancelled or the client shuts down.
// Consume errors (e.g. mid-reconnect) are retried.
func (rb *Rabbit) consumeQueue(ctx context.Context, wg *sync.WaitGroup, queueName string) <-chan Message {
	outChan := make(chan Message, 100)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(outChan)
	outerLoop:
		for {
			select {
			case <-rb.shutdownSignal:
				rb.logger.Info("consumer is shutting down due to shutdown signal", nil, nil)
				return
			case <-ctx.Done():
				rb.logger.Info("consumer is shutting down due to context cancellation", ctx.Err(), nil)
				return
			default:
				rb.mu.RLock()
				msgs, err := rb.Channel.Consume(
					queueName,
					"",    // consumer
					false, // autoAck
					false, // exclusive
					false, // noLocal
					false, // noWait
					nil,   // args
				)
				rb.mu.RUnlock()

				if err != nil {
					rb.logger.Error("error in establishing consumer for rabbit", err, map[string]interface{}{
						"queue_name": queueName,
					})
					time.Sleep(100 * time.Millisecond)
					continue
				}

				for {
					select {
					case <-ctx.Done():
						rb.logger.Info("consumer is shutting down due to context cancellation", ctx.Err(), nil)
						return
					case <-rb.shutdownSignal:
						rb.logger.Info("consumer is shutting down due to shutdown signal", nil, nil)
						return
					case msg, ok := <-msgs:
						if !ok {
							continue outerLoop
						}
						rb.logger.Debug("message consumed from rabbit", nil, map[string]interface{}{
							"queue_name": queueName,
						})
						outChan <- &ConsumerMessage{
							body:     msg.Body,
							delivery: &msg,
						}
					}
				}
			}
		}
	}()
	return outChan
}

// Consume starts consuming from the configured main queue.
func (rb *Rabbit) Consume(ctx context.Context, wg *sync.WaitGroup) <-chan Message {
	return rb.consumeQueue(ctx, wg, rb.cfg.Channel.QueueName)
}

// ConsumeDLQ is a convenience wrapper for consuming from the dead letter queue.
func (rb *Rabbit) ConsumeDLQ(ctx context.Context, wg *sync.WaitGroup) <-chan Message {
	return rb.consumeQueue(ctx, wg, rb.cfg.DeadLetter.QueueName)
}

// Publish sends a persistent message to the configured exchange.
func (rb *Rabbit) Publish(ctx context.Context, msg []byte) error {
	select {
	case <-ctx.Done():
		rb.logger.Error("context error for publishing msg into rabbit", ctx.Err(), nil)
		return ctx.Err()
	default:
		rb.mu.RLock()
		err := rb.Channel.PublishWithContext(ctx,
			rb.cfg.Channel.ExchangeName,
			rb.cfg.Channel.RoutingKey,
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  rb.cfg.Channel.ContentType,
				DeliveryMode: amqp.Persistent,
				Body:         msg,
			},
		)
		rb.mu.RUnlock()

		if err == nil {
			return nil
		}
		rb.logger.Error("error in publishing msg into rabbit", err, nil)
		return err
	}
}

func (rb *ConsumerMessage) AckMsg() error {
	return rb.delivery.Ack(false)
}

func (rb *ConsumerMessage) NackMsg(requeue bool) error {
	return rb.delivery.Nack(false, requeue)
}

func (rb *ConsumerMessage) Body() []byte {
	return rb.body
}
