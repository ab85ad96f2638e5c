// Package integration runs the storefront backend against real PostgreSQL
// and Redis instances started with testcontainers.
package integration

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormlogger "gorm.io/gorm/logger"
)

const (
	testDBName     = "storefront_test"
	testDBUser     = "postgres"
	testDBPassword = "postgres"
)

var (
	// Shared containers for all tests in the package
	sharedMu       sync.Mutex
	sharedPostgres *tcpostgres.PostgresContainer
	sharedRedis    testcontainers.Container
	sharedDBConfig config.DatabaseConfig
	sharedRedisCfg config.RedisConfig
)

// TestEnv is a migrated database plus a Redis client, both backed by the
// shared containers. Tables and Redis keys are cleared when it is created.
type TestEnv struct {
	Database *persistence.Database
	Products *persistence.GormProductRepository
	Orders   *persistence.GormOrderRepository
	Redis    *redis.Client
	DBConfig config.DatabaseConfig
	t        *testing.T
}

// NewTestEnv returns a clean environment. Tests are skipped under -short.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbCfg, redisCfg := startContainers(t, ctx)

	db, err := persistence.NewDatabase(&dbCfg, gormLogger())
	require.NoError(t, err, "Failed to connect to database")
	require.NoError(t, db.Migrate(ctx), "Failed to migrate schema")

	client, err := cache.NewRedisClient(ctx, redisCfg)
	require.NoError(t, err, "Failed to connect to Redis")

	env := &TestEnv{
		Database: db,
		Products: persistence.NewGormProductRepository(db.DB),
		Orders:   persistence.NewGormOrderRepository(db.DB),
		Redis:    client,
		DBConfig: dbCfg,
		t:        t,
	}
	env.Reset()

	t.Cleanup(func() {
		_ = client.Close()
		_ = db.Close()
	})

	return env
}

// Reset truncates both tables and flushes the Redis database
func (e *TestEnv) Reset() {
	e.t.Helper()

	ctx := context.Background()
	require.NoError(e.t, e.Database.DB.WithContext(ctx).Exec("TRUNCATE TABLE orders, products").Error,
		"Failed to truncate tables")
	require.NoError(e.t, e.Redis.FlushDB(ctx).Err(), "Failed to flush Redis")
}

func startContainers(t *testing.T, ctx context.Context) (config.DatabaseConfig, config.RedisConfig) {
	t.Helper()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedPostgres == nil {
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase(testDBName),
			tcpostgres.WithUsername(testDBUser),
			tcpostgres.WithPassword(testDBPassword),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		require.NoError(t, err, "Failed to start PostgreSQL container")

		host, err := container.Host(ctx)
		require.NoError(t, err)
		port, err := container.MappedPort(ctx, "5432/tcp")
		require.NoError(t, err)

		sharedPostgres = container
		sharedDBConfig = config.DatabaseConfig{
			Host:            host,
			Port:            port.Int(),
			User:            testDBUser,
			Password:        testDBPassword,
			DBName:          testDBName,
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5,
			ConnMaxIdleTime: 1,
		}
	}

	if sharedRedis == nil {
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor: wait.ForLog("Ready to accept connections").
					WithStartupTimeout(30 * time.Second),
			},
			Started: true,
		})
		require.NoError(t, err, "Failed to start Redis container")

		host, err := container.Host(ctx)
		require.NoError(t, err)
		port, err := container.MappedPort(ctx, "6379/tcp")
		require.NoError(t, err)

		sharedRedis = container
		sharedRedisCfg = config.RedisConfig{Host: host, Port: port.Int()}
	}

	return sharedDBConfig, sharedRedisCfg
}

// gormLogger silences SQL logging unless TEST_DB_DEBUG is set
func gormLogger() gormlogger.Interface {
	if os.Getenv("TEST_DB_DEBUG") != "" {
		return gormlogger.Default.LogMode(gormlogger.Info)
	}
	return gormlogger.Default.LogMode(gormlogger.Silent)
}

// CleanupSharedContainers terminates the shared containers.
// This should be called in TestMain.
func CleanupSharedContainers() {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sharedPostgres != nil {
		_ = sharedPostgres.Terminate(ctx)
		sharedPostgres = nil
	}
	if sharedRedis != nil {
		_ = sharedRedis.Terminate(ctx)
		sharedRedis = nil
	}
}
