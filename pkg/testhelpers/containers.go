// Package testhelpers provides shared infrastructure for integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresImage is the image used for integration tests.
const PostgresImage = "postgres:16-alpine"

// PostgresParams describe a running disposable PostgreSQL server.
type PostgresParams struct {
	Container testcontainers.Container
	Host      string
	Port      int
	User      string
	Password  string
	Database  string
}

var (
	sharedPG     *PostgresParams
	sharedPGOnce sync.Once
	sharedPGErr  error
)

// GetPostgres returns a shared PostgreSQL container for integration tests.
// The container is created once and reused across all tests in the run.
func GetPostgres(t *testing.T) *PostgresParams {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedPGOnce.Do(func() {
		sharedPG, sharedPGErr = setupPostgres()
	})

	if sharedPGErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedPGErr)
	}

	return sharedPG
}

func setupPostgres() (*PostgresParams, error) {
	ctx := context.Background()

	const (
		user     = "statstore"
		password = "test_password"
		database = "statstore_test"
	)

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       database,
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": password,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &PostgresParams{
		Container: container,
		Host:      host,
		Port:      port.Int(),
		User:      user,
		Password:  password,
		Database:  database,
	}, nil
}
