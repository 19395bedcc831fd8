package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // PostgreSQL driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // File source driver
	"github.com/htbacgiang/ecobacgiangBE/internal/config"
)

var (
	ErrNoMigrationsPath = errors.New("migrations path cannot be empty")
	ErrNoDatabaseURL    = errors.New("database URL cannot be empty")
)

// migrationSource accepts a bare directory or a file:// URL.
func migrationSource(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}

// RunMigrations brings the partner directory schema up to date and returns
// the resulting version. A dirty schema is reported, never forced.
func RunMigrations(logger *slog.Logger, cfg *config.PostgresConfig) (uint, error) {
	switch {
	case cfg.MigrationsPath == "":
		return 0, ErrNoMigrationsPath
	case cfg.URL == "":
		return 0, ErrNoDatabaseURL
	}

	m, err := migrate.New(migrationSource(cfg.MigrationsPath), cfg.URL)
	if err != nil {
		return 0, fmt.Errorf("failed to open partner schema migrations: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("Closing migrator failed", "source_error", srcErr, "database_error", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to apply partner schema migrations: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("failed to read partner schema version: %w", err)
	case dirty:
		return version, fmt.Errorf("partner schema is dirty at version %d", version)
	}
	return version, nil
}
