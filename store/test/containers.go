package teststore

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	testDatabase = "convo"
	testUser     = "convo"
	testPassword = "convo"
)

// GetMySQLDSN starts a MySQL container for the test and returns its DSN.
func GetMySQLDSN(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	container, err := mysql.Run(ctx, "mysql:8.4",
		mysql.WithDatabase(testDatabase),
		mysql.WithUsername(testUser),
		mysql.WithPassword(testPassword),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("failed to start mysql container: %v", err)
	}
	dsn, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get mysql connection string: %v", err)
	}
	return dsn
}

// GetPostgresDSN starts a PostgreSQL container for the test and returns its DSN.
func GetPostgresDSN(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase(testDatabase),
		postgres.WithUsername(testUser),
		postgres.WithPassword(testPassword),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}
	return dsn
}
