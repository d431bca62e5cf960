package db

import (
	"fmt"
	"io"
	"strconv"
)

// RunMigrateCommand handles the 'migrate' subcommand: up, down, status,
// force <version>.
func RunMigrateCommand(w io.Writer, args []string, dbPath string) error {
	if len(args) < 1 {
		PrintMigrateHelp(w)
		return fmt.Errorf("missing migrate action")
	}
	migrations := MigrationsFS()

	// Open without migrating; the command manages the schema.
	database, err := OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	switch action := args[0]; action {
	case "up":
		if err := database.MigrateUp(migrations); err != nil {
			return err
		}
		version, _, _ := database.MigrateVersion(migrations)
		fmt.Fprintf(w, "✓ All migrations applied, version %d\n", version)

	case "down":
		if err := database.MigrateDown(migrations); err != nil {
			return err
		}
		version, _, _ := database.MigrateVersion(migrations)
		fmt.Fprintf(w, "✓ Rolled back to version %d\n", version)

	case "status":
		version, dirty, err := database.MigrateVersion(migrations)
		if err != nil {
			return err
		}
		latest, err := LatestMigrationVersion(migrations)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "current version: %d\nlatest version:  %d\ndirty:           %v\n", version, latest, dirty)
		if version < latest {
			fmt.Fprintf(w, "%d migration(s) pending\n", latest-version)
		}

	case "force":
		if len(args) < 2 {
			return fmt.Errorf("usage: migrate force <version_number>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		if err := database.MigrateForce(migrations, version); err != nil {
			return err
		}
		fmt.Fprintf(w, "✓ Forced version %d\n", version)

	case "help":
		PrintMigrateHelp(w)

	default:
		PrintMigrateHelp(w)
		return fmt.Errorf("unknown migrate action: %s", action)
	}
	return nil
}

// PrintMigrateHelp prints usage for the migrate subcommand.
func PrintMigrateHelp(w io.Writer) {
	fmt.Fprint(w, `Usage: sway migrate <action> [args]

Actions:
  up                 Apply all pending migrations
  down               Roll back the most recent migration
  status             Show current and latest schema versions
  force <version>    Set the version without running migrations (recovery only)
  help               Show this help
`)
}
