package db

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/banshee-data/sway.report/internal/monitoring"
)

// MigrateUp brings the feature schema to the newest version. An already
// current schema is not an error.
func (db *DB) MigrateUp(migrations fs.FS) error {
	return db.withMigrator(migrations, "up", func(m *migrate.Migrate) error {
		return ignoreNoChange(m.Up())
	})
}

// MigrateDown reverts one schema version.
func (db *DB) MigrateDown(migrations fs.FS) error {
	return db.withMigrator(migrations, "down", func(m *migrate.Migrate) error {
		return ignoreNoChange(m.Steps(-1))
	})
}

// MigrateVersion reports the applied schema version. A fresh database is
// version 0 and clean.
func (db *DB) MigrateVersion(migrations fs.FS) (uint, bool, error) {
	var (
		version uint
		dirty   bool
	)
	err := db.withMigrator(migrations, "version", func(m *migrate.Migrate) error {
		var err error
		version, dirty, err = m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			version, dirty = 0, false
			return nil
		}
		return err
	})
	return version, dirty, err
}

// MigrateForce records version as applied without running any script.
// Use it to clear a dirty flag after fixing the schema by hand.
func (db *DB) MigrateForce(migrations fs.FS, version int) error {
	return db.withMigrator(migrations, "force "+strconv.Itoa(version), func(m *migrate.Migrate) error {
		return m.Force(version)
	})
}

// LatestMigrationVersion scans the NNNNNN_name.up.sql files in migrations.
func LatestMigrationVersion(migrations fs.FS) (uint, error) {
	names, err := fs.Glob(migrations, "*.up.sql")
	if err != nil {
		return 0, fmt.Errorf("list migrations: %w", err)
	}
	var latest uint
	for _, name := range names {
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(prefix, 10, 32)
		if err == nil && uint(v) > latest {
			latest = uint(v)
		}
	}
	if latest == 0 {
		return 0, errors.New("no up migrations found")
	}
	return latest, nil
}

// withMigrator runs fn against a migrate instance bound to db. The instance
// is left open since closing it closes db.DB as well.
func (db *DB) withMigrator(migrations fs.FS, op string, fn func(*migrate.Migrate) error) error {
	src, err := iofs.New(migrations, ".")
	if err != nil {
		return fmt.Errorf("migrate %s: open source: %w", op, err)
	}
	drv, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("migrate %s: sqlite driver: %w", op, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("migrate %s: %w", op, err)
	}
	m.Log = migrateLog{}
	if err := fn(m); err != nil {
		return fmt.Errorf("migrate %s: %w", op, err)
	}
	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// migrateLog routes migrate's output to debug level.
type migrateLog struct{}

func (migrateLog) Printf(format string, v ...any) {
	monitoring.Logger().Debug().Str("component", "migrate").Msgf(strings.TrimSuffix(format, "\n"), v...)
}

func (migrateLog) Verbose() bool { return false }
