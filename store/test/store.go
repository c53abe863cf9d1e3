package teststore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"

	"github.com/usememos/convo/internal/profile"
	"github.com/usememos/convo/store"
	"github.com/usememos/convo/store/db"
)

// NewTestingStore returns a migrated store backed by the driver named in the
// DRIVER environment variable, sqlite by default.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()
	profile := getTestingProfile(t)
	dbDriver, err := db.NewDBDriver(profile)
	if err != nil {
		t.Fatalf("failed to create db driver, error: %+v\n", err)
	}

	st := store.New(dbDriver, profile)
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db, error: %+v\n", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func getTestingProfile(t *testing.T) *profile.Profile {
	// Load .env file if it exists, so DRIVER can be set locally.
	_ = godotenv.Load(".env")

	driver := getDriverFromEnv()
	dir := t.TempDir()

	var dsn string
	switch driver {
	case "sqlite":
		dsn = filepath.Join(dir, "convo_test.db")
	case "mysql":
		dsn = GetMySQLDSN(t)
	case "postgres":
		dsn = GetPostgresDSN(t)
	default:
		t.Fatalf("unsupported DRIVER %q", driver)
	}

	return &profile.Profile{
		Mode:    "dev",
		Data:    dir,
		Driver:  driver,
		DSN:     dsn,
		Secret:  "test-secret",
		Version: "test",
	}
}

func getDriverFromEnv() string {
	driver := os.Getenv("DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	return driver
}

// MustCreateProject creates a project for userID and fails the test on error.
func MustCreateProject(ctx context.Context, t *testing.T, s *store.Store, userID string) *store.Project {
	t.Helper()
	project, err := s.CreateProject(ctx, &store.Project{UserID: userID, Name: fmt.Sprintf("%s's project", userID)})
	if err != nil {
		t.Fatalf("failed to create project, error: %+v\n", err)
	}
	return project
}
