package rabbit

import (
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Logger defines the logging contract used by this package.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=rabbit
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Rabbit is a RabbitMQ client that manages the connection and channel used for
// publishing and consuming ingestion jobs, with automatic reconnection.
//
// Queue semantics matter here: the queue is durable, messages are published
// persistent with publisher confirms, and consumers ack manually. With a
// prefetch bound this gives at-most-one active delivery per enqueued job.
type Rabbit struct {
	cfg Config

	// Channel is the main AMQP channel used for publishing and consuming.
	Channel *amqp.Channel

	conn   *amqp.Connection
	logger Logger

	// mu protects conn and Channel during reconnects.
	mu sync.RWMutex

	// shutdownSignal is closed when the client is being shut down.
	shutdownSignal chan struct{}

	closeShutdownOnce sync.Once
}

// NewClient connects to RabbitMQ and declares the exchange, queue, and dead
// letter topology described by cfg. A failure here is fatal: neither the API
// nor the worker can run without the job queue.
func NewClient(config Config, logger Logger) *Rabbit {
	con, err := newConnection(config, logger)
	if err != nil {
		logger.Fatal("error in connecting to rabbit after all retries", err, nil)
	}

	ch, err := connectToChannel(con, config, logger)
	if ch == nil || err != nil {
		logger.Fatal("error in declaring channel", err, nil)
	}

	return &Rabbit{
		cfg:            config,
		conn:           con,
		Channel:        ch,
		logger:         logger,
		shutdownSignal: make(chan struct{}),
	}
}

// connectToChannel opens a channel and declares the exchange/queue/bindings.
// Publisher confirms are always enabled. Consumers additionally get the dead
// letter topology and a QoS prefetch bound.
func connectToChannel(rb *amqp.Connection, cfg Config, logger Logger) (*amqp.Channel, error) {
	ch, err := rb.Channel()
	if err != nil {
		logger.Error("failed to create channel", err, nil)
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	if err = ch.Confirm(false); err != nil {
		logger.Error("failed to enable publisher confirms", err, nil)
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Channel.ExchangeName,
		cfg.Channel.ExchangeType,
		true,  // Durable
		false, // AutoDelete
		false, // Internal
		false, // NoWait
		nil,   // Arguments
	)
	if err != nil {
		logger.Error("failed to declare exchange", err, map[string]interface{}{
			"exchange": cfg.Channel.ExchangeName,
		})
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queueArgs := amqp.Table{}
	if cfg.DeadLetter.ExchangeName != "" {
		err = ch.ExchangeDeclare(
			cfg.DeadLetter.ExchangeName,
			"direct",
			true,  // Durable
			false, // AutoDelete
			false, // Internal
			false, // NoWait
			nil,   // Arguments
		)
		if err != nil {
			logger.Error("failed to declare dead letter exchange", err, map[string]interface{}{
				"exchange": cfg.DeadLetter.ExchangeName,
			})
			return nil, fmt.Errorf("failed to declare dead letter exchange: %w", err)
		}

		_, err = ch.QueueDeclare(
			cfg.DeadLetter.QueueName,
			true,  // Durable
			false, // AutoDelete
			false, // Exclusive
			false, // NoWait
			nil,   // Arguments
		)
		if err != nil {
			logger.Error("failed to declare dead letter queue", err, map[string]interface{}{
				"queue": cfg.DeadLetter.QueueName,
			})
			return nil, fmt.Errorf("failed to declare dead letter queue: %w", err)
		}

		err = ch.QueueBind(
			cfg.DeadLetter.QueueName,
			cfg.DeadLetter.RoutingKey,
			cfg.DeadLetter.ExchangeName,
			false, // NoWait
			nil,   // Arguments
		)
		if err != nil {
			logger.Error("failed to bind dead letter queue", err, map[string]interface{}{
				"queue":    cfg.DeadLetter.QueueName,
				"exchange": cfg.DeadLetter.ExchangeName,
			})
			return nil, fmt.Errorf("failed to bind dead letter queue: %w", err)
		}

		queueArgs = amqp.Table{
			"x-dead-letter-exchange":    cfg.DeadLetter.ExchangeName,
			"x-dead-letter-routing-key": cfg.DeadLetter.RoutingKey,
		}
	}

	_, err = ch.QueueDeclare(
		cfg.Channel.QueueName,
		true,      // Durable
		false,     // AutoDelete
		false,     // Exclusive
		false,     // NoWait
		queueArgs, // Arguments including dead letter config
	)
	if err != nil {
		logger.Error("failed to declare queue", err, map[string]interface{}{
			"queue": cfg.Channel.QueueName,
		})
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = ch.QueueBind(
		cfg.Channel.QueueName,
		cfg.Channel.RoutingKey,
		cfg.Channel.ExchangeName,
		false, // NoWait
		nil,   // Arguments
	)
	if err != nil {
		logger.Error("failed to bind queue", err, map[string]interface{}{
			"queue":    cfg.Channel.QueueName,
			"exchange": cfg.Channel.ExchangeName,
		})
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	if cfg.Channel.PrefetchCount > 0 {
		err = ch.Qos(cfg.Channel.PrefetchCount, 0, false)
		if err != nil {
			logger.Error("failed to set QoS", err, map[string]interface{}{
				"prefetch_count": cfg.Channel.PrefetchCount,
			})
			return nil, fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	return ch, nil
}

// retryConnection monitors the connection and re-establishes it (and the
// channel topology) when it drops. Runs as a goroutine under the fx lifecycle.
func (rb *Rabbit) retryConnection(logger Logger, cfg Config) {
outerLoop:
	for {
		errChan := make(chan *amqp.Error, 1)

		rb.mu.RLock()
		rb.conn.NotifyClose(errChan)
		rb.mu.RUnlock()

		select {
		case <-rb.shutdownSignal:
			logger.Info("stopping rabbit retry loop due to shutdown signal", nil, nil)
			return

		case err := <-errChan:
			logger.Warn("rabbit connection closed, retrying...", err, nil)
		reconnectLoop:
			for {
				select {
				case <-rb.shutdownSignal:
					return
				default:
					newConn, err := newConnection(cfg, logger)
					if err != nil {
						logger.Error("rabbit reconnection failed", err, nil)
						time.Sleep(time.Second)
						continue reconnectLoop
					}

					rb.mu.Lock()
					rb.conn = newConn
					if rb.Channel != nil {
						_ = rb.Channel.Close()
					}
					rb.Channel, err = connectToChannel(newConn, cfg, logger)
					rb.mu.Unlock()

					if err != nil {
						logger.Error("failed to reopen rabbit channel, retrying...", err, nil)
						continue reconnectLoop
					}

					logger.Info("reconnected to rabbit", nil, nil)
					continue outerLoop
				}
			}
		}
	}
}

// newConnection dials the broker. A 2-second heartbeat keeps dead connections
// from lingering.
func newConnection(cfg Config, logger Logger) (*amqp.Connection, error) {
	scheme := "amqp"
	if cfg.Connection.IsSSLEnabled {
		scheme = "amqps"
	}
	hostURL := fmt.Sprintf("%s://%v:%v@%v:%v", scheme, cfg.Connection.User, cfg.Connection.Password, cfg.Connection.Host, cfg.Connection.Port)

	conn, err := amqp.DialConfig(hostURL, amqp.Config{
		Heartbeat: 2 * time.Second,
	})
	if err != nil {
		logger.Error("error in connecting to rabbit", err, map[string]interface{}{
			"rabbit_host": cfg.Connection.Host,
			"rabbit_port": cfg.Connection.Port,
		})
		return nil, fmt.Errorf("failed to connect to rabbit: %w", err)
	}

	logger.Info("connected to rabbit", nil, map[string]interface{}{
		"rabbit_host": cfg.Connection.Host,
		"rabbit_port": cfg.Connection.Port,
	})
	return conn, nil
}
