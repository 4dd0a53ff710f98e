package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Logger defines the logging contract used by this package.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=postgres
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Postgres is a thread-safe wrapper around gorm.DB that provides connection
// monitoring, automatic reconnection, and the CRUD surface used by the
// document repository. All operations are guarded by a read-write mutex so
// the underlying connection can be swapped during reconnects.
type Postgres struct {
	client         *gorm.DB
	cfg            Config
	logger         Logger
	mu             *sync.RWMutex
	shutdownSignal chan struct{}
	retrySignal    chan error

	closeRetryOnce    sync.Once
	closeShutdownOnce sync.Once
}

// NewPostgres creates a new Postgres instance with the provided configuration.
// It establishes the initial database connection; if that fails the process
// terminates, since neither binary can run without the metadata store.
func NewPostgres(cfg Config, logger Logger) *Postgres {
	conn, err := connect(logger, cfg)
	if err != nil {
		logger.Fatal("error in connecting to postgres", err, nil)
	}

	return &Postgres{
		client:         conn,
		cfg:            cfg,
		logger:         logger,
		mu:             &sync.RWMutex{},
		shutdownSignal: make(chan struct{}),
		retrySignal:    make(chan error, 1),
	}
}

func connect(logger Logger, cfg Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Connection.Host,
		cfg.Connection.Port,
		cfg.Connection.User,
		cfg.Connection.Password,
		cfg.Connection.DbName,
		cfg.Connection.SSLMode)

	database, err := gorm.Open(
		postgres.Open(dsn),
		&gorm.Config{
			TranslateError: true,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	instance, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	instance.SetMaxOpenConns(cfg.ConnectionDetails.maxOpenConns())
	instance.SetMaxIdleConns(cfg.ConnectionDetails.maxIdleConns())
	instance.SetConnMaxLifetime(cfg.ConnectionDetails.connMaxLifetime())

	logger.Info("connected to postgres", nil, map[string]interface{}{
		"host":   cfg.Connection.Host,
		"dbname": cfg.Connection.DbName,
	})

	return database, nil
}

// retryConnection re-establishes the connection whenever monitorConnection
// signals a failed health check. Runs as a goroutine under the fx lifecycle.
func (p *Postgres) retryConnection(ctx context.Context, logger Logger, cfg Config) {
outerLoop:
	for {
		select {
		case <-p.shutdownSignal:
			logger.Info("stopping postgres retry loop due to shutdown signal", nil, nil)
			return
		case <-ctx.Done():
			return
		case <-p.retrySignal:
		innerLoop:
			for {
				select {
				case <-p.shutdownSignal:
					return
				case <-ctx.Done():
					return
				default:
					newConn, err := connect(logger, cfg)
					if err != nil {
						logger.Error("postgres reconnection failed", err, nil)
						time.Sleep(time.Second)
						continue innerLoop
					}
					p.mu.Lock()
					p.client = newConn
					p.mu.Unlock()
					logger.Info("reconnected to postgres", nil, nil)
					continue outerLoop
				}
			}
		}
	}
}

// monitorConnection pings the database every 10 seconds and signals the retry
// loop when a health check fails.
func (p *Postgres) monitorConnection(ctx context.Context) {
	defer p.closeRetryOnce.Do(func() {
		close(p.retrySignal)
	})

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.shutdownSignal:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.healthCheck(); err != nil {
				select {
				case p.retrySignal <- err:
				default:
				}
			}
		}
	}
}

func (p *Postgres) healthCheck() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.client == nil {
		return fmt.Errorf("database client is not initialized")
	}

	db, err := p.client.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance during health check: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed during health check: %w", err)
	}

	return nil
}
