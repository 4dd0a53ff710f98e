package documents

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/inferlab/ragengine/pkg/postgres"
)

type testLogger struct{}

func (testLogger) Info(string, error, ...map[string]interface{})  {}
func (testLogger) Debug(string, error, ...map[string]interface{}) {}
func (testLogger) Warn(string, error, ...map[string]interface{})  {}
func (testLogger) Error(string, error, ...map[string]interface{}) {}
func (testLogger) Fatal(msg string, err error, _ ...map[string]interface{}) {
	panic(fmt.Sprintf("fatal: %s: %v", msg, err))
}

func getFreePort() (int, error) {
	listener, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port, nil
}

func startPostgresContainer(ctx context.Context, t *testing.T) postgres.Config {
	t.Helper()

	port, err := getFreePort()
	require.NoError(t, err)

	portStr := fmt.Sprintf("%d", port)
	req := testcontainers.ContainerRequest{
		Image: "postgres:15",
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		ExposedPorts: []string{"5432/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = nat.PortMap{
				"5432/tcp": []nat.PortBinding{{HostPort: portStr}},
			}
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := postgres.Config{}
	cfg.Connection.Host = host
	cfg.Connection.Port = mappedPort.Port()
	cfg.Connection.User = "testuser"
	cfg.Connection.Password = "testpass"
	cfg.Connection.DbName = "testdb"
	cfg.Connection.SSLMode = "disable"

	waitForPostgresReady(t, cfg)
	return cfg
}

func waitForPostgresReady(t *testing.T, cfg postgres.Config) {
	t.Helper()

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Connection.Host, cfg.Connection.Port, cfg.Connection.User,
		cfg.Connection.Password, cfg.Connection.DbName, cfg.Connection.SSLMode)

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		db, err := gorm.Open(gormpg.Open(dsn), &gorm.Config{})
		if err == nil {
			if sqlDB, err := db.DB(); err == nil {
				if err := sqlDB.Ping(); err == nil {
					_ = sqlDB.Close()
					return
				}
				_ = sqlDB.Close()
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatal("postgres container did not become ready")
}

func TestRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	cfg := startPostgresContainer(ctx, t)

	pg := postgres.NewPostgres(cfg, testLogger{})
	require.NoError(t, pg.Migrate(&Document{}))

	repo := NewRepository(pg)

	t.Run("create assigns id and pending status", func(t *testing.T) {
		doc := &Document{URL: "https://example.com/intro"}
		require.NoError(t, repo.Create(ctx, doc))
		assert.NotEmpty(t, doc.ID)

		got, err := repo.GetByURL(ctx, "https://example.com/intro")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, got.Status)
	})

	t.Run("unique url constraint", func(t *testing.T) {
		err := repo.Create(ctx, &Document{URL: "https://example.com/intro"})
		require.ErrorIs(t, err, postgres.ErrDuplicateKey)
	})

	t.Run("compare and set transitions", func(t *testing.T) {
		doc := &Document{URL: "https://example.com/cas"}
		require.NoError(t, repo.Create(ctx, doc))

		claimed, err := repo.MarkProcessing(ctx, doc.ID)
		require.NoError(t, err)
		assert.True(t, claimed)

		claimed, err = repo.MarkProcessing(ctx, doc.ID)
		require.NoError(t, err)
		assert.False(t, claimed, "second claim must lose the race")

		done, err := repo.MarkCompleted(ctx, doc.ID, "CAS Doc", 4)
		require.NoError(t, err)
		assert.True(t, done)

		got, err := repo.GetByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, got.Status)
		assert.Equal(t, 4, got.ChunkCount)
	})

	t.Run("failed documents can be reset", func(t *testing.T) {
		doc := &Document{URL: "https://example.com/retry"}
		require.NoError(t, repo.Create(ctx, doc))

		_, err := repo.MarkProcessing(ctx, doc.ID)
		require.NoError(t, err)
		_, err = repo.MarkFailed(ctx, doc.ID, "embed: provider unavailable")
		require.NoError(t, err)

		reset, err := repo.Reset(ctx, doc.ID)
		require.NoError(t, err)
		assert.True(t, reset)

		got, err := repo.GetByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, got.Status)
		assert.Empty(t, got.ErrorMessage)
	})

	t.Run("list with status filter and paging", func(t *testing.T) {
		_, total, err := repo.List(ctx, StatusPending, 10, 0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, total, int64(1))

		page, _, err := repo.List(ctx, "", 2, 0)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page), 2)
	})
}
