package sqlite

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/usememos/convo/internal/profile"
	"github.com/usememos/convo/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a database specified by its database driver name and a
// driver-specific data source name, usually consisting of at least a
// database name and connection information.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	// Ensure a DSN is set before attempting to open the database.
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	// Connection string pragmas:
	// - foreign_keys(1): conversations cascade with their project
	// - busy_timeout(10000): wait up to 10s if database is locked
	// - journal_mode(WAL): readers do not block the writer
	// - _txlock=immediate: write transactions take the lock at BEGIN so concurrent saves serialize
	sep := "?"
	if strings.Contains(profile.DSN, "?") {
		sep = "&"
	}
	dsn := profile.DSN + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_txlock=immediate"
	sqliteDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	driver := DB{db: sqliteDB, profile: profile}
	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}
