package store

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

//go:embed migration
var migrationFS embed.FS

var dialects = map[string]goose.Dialect{
	"sqlite":   goose.DialectSQLite3,
	"mysql":    goose.DialectMySQL,
	"postgres": goose.DialectPostgres,
}

// Migrate applies all pending schema migrations for the configured driver.
func (s *Store) Migrate(ctx context.Context) error {
	dialect, ok := dialects[s.profile.Driver]
	if !ok {
		return errors.Errorf("unsupported driver %q", s.profile.Driver)
	}
	fsys, err := fs.Sub(migrationFS, "migration/"+s.profile.Driver)
	if err != nil {
		return errors.Wrap(err, "failed to open migration directory")
	}
	provider, err := goose.NewProvider(dialect, s.driver.GetDB(), fsys)
	if err != nil {
		return errors.Wrap(err, "failed to create migration provider")
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to apply migrations")
	}
	for _, result := range results {
		slog.Info("applied migration", slog.String("driver", s.profile.Driver), slog.String("source", result.Source.Path), slog.Duration("duration", result.Duration))
	}
	return nil
}
