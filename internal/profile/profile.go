package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the server.
type Profile struct {
	// Mode can be "prod", "dev" or "demo".
	Mode string
	// Addr is the binding address for the server.
	Addr string
	// Port is the binding port for the server.
	Port int
	// Data is the data directory.
	Data string
	// Driver is the database driver: sqlite, mysql or postgres.
	Driver string
	// DSN points to where the conversations are stored.
	DSN string
	// Secret signs access tokens.
	Secret string
	// Version is the current version of the server.
	Version string
}

const devSecret = "convo-dev-secret"

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return "", errors.Wrapf(err, "unable to create data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate normalises the profile and fills in defaults derived from the mode and data directory.
func (p *Profile) Validate() error {
	switch p.Mode {
	case "demo", "dev", "prod":
	default:
		return errors.Errorf("unsupported mode %q, must be one of prod, dev or demo", p.Mode)
	}

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	switch p.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}

	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check dsn", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.Driver == "sqlite" && p.DSN == "" {
		p.DSN = filepath.Join(dataDir, fmt.Sprintf("convo_%s.db", p.Mode))
	}
	if p.DSN == "" {
		return errors.Errorf("dsn is required for driver %q", p.Driver)
	}

	if p.Secret == "" {
		if !p.IsDev() {
			return errors.New("secret is required in prod mode")
		}
		p.Secret = devSecret
		// Default to loopback while the public dev secret is in use.
		if p.Addr == "" {
			p.Addr = "127.0.0.1"
		}
		slog.Warn("using the built-in development secret, tokens can be forged by anyone", slog.String("mode", p.Mode), slog.String("addr", p.Addr))
	}
	return nil
}
