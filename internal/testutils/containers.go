//go:build integration

package testutils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/persistence"
)

// MigrationsDir returns the absolute path of the repository migrations.
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

// SetupPostgres returns a migrated pool. TEST_POSTGRES_DSN points the tests at an
// existing database; otherwise a throwaway container is started.
func SetupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		req := testcontainers.ContainerRequest{
			Image: "postgres:15",
			Env: map[string]string{
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_USER":     "test",
				"POSTGRES_DB":       "escalations",
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		}
		pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			t.Fatalf("start postgres container: %v", err)
		}
		t.Cleanup(func() { _ = pg.Terminate(ctx) })

		host, err := pg.Host(ctx)
		if err != nil {
			t.Fatalf("postgres host: %v", err)
		}
		port, err := pg.MappedPort(ctx, "5432")
		if err != nil {
			t.Fatalf("postgres port: %v", err)
		}
		dsn = fmt.Sprintf("postgres://test:test@%s:%s/escalations?sslmode=disable", host, port.Port())
	}

	var pool *pgxpool.Pool
	var err error
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.New(ctx, dsn)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := persistence.RunMigrations(ctx, pool, MigrationsDir(), zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

// SetupRedis returns a client for TEST_REDIS_ADDR or a throwaway container.
func SetupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		rc, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			},
			Started: true,
		})
		if err != nil {
			t.Fatalf("start redis container: %v", err)
		}
		t.Cleanup(func() { _ = rc.Terminate(ctx) })

		host, err := rc.Host(ctx)
		if err != nil {
			t.Fatalf("redis host: %v", err)
		}
		port, err := rc.MappedPort(ctx, "6379")
		if err != nil {
			t.Fatalf("redis port: %v", err)
		}
		addr = fmt.Sprintf("%s:%s", host, port.Port())
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}
