// graysqlite - schema migration tool for SQLite databases
//
// This is the command line entry point for the graysqlite library. It
// loads a YAML configuration, opens the target database and drives the
// migrate package: apply pending migrations, report the current schema
// version, or list the applied history.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/maloquacious/semver"
	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-sqlite/internal/config"
	"github.com/nerrad567/gray-sqlite/internal/logging"
	"github.com/nerrad567/gray-sqlite/migrate"
	"github.com/nerrad567/gray-sqlite/sqlite"
)

var version = semver.Version{Minor: 1, PreRelease: "alpha", Build: semver.Commit()}

// Default configuration file path
const defaultConfigPath = "config.yaml"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "graysqlite",
		Short:         "SQLite schema migration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations to the database",
		RunE:  runMigrate,
	}
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the applied migration history",
		RunE:  runStatus,
	}
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the graysqlite version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}

	rootCmd.AddCommand(migrateCmd, statusCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runMigrate applies every pending migration from the configured
// directory in a single transaction.
func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logging.New(cfg.Logging, version.String()).With("run_id", uuid.NewString())

	db, err := sqlite.Open(dbConfig(cfg))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database opened", "path", cfg.Database.Path)

	before, err := migrate.Version(db)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	migrations, err := migrate.LoadDir(os.DirFS(cfg.Migrations.Dir), ".")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	log.Info("migrations loaded", "dir", cfg.Migrations.Dir, "count", len(migrations))

	if err := migrate.Apply(db, migrations); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	after, err := migrate.Version(db)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	log.Info("migrations complete", "from_version", before, "to_version", after)

	fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (was %d)\n", after, before)
	return nil
}

// runStatus prints the applied migration history from the version
// ledger, oldest first.
func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := sqlite.Open(dbConfig(cfg))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // read-only inspection, close failure is harmless

	records, err := migrate.Applied(db)
	if err != nil {
		return fmt.Errorf("reading migration history: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
		return nil
	}

	for _, rec := range records {
		desc := ""
		if rec.Description.Valid {
			desc = "  " + rec.Description.V
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s%s\n",
			rec.Version, rec.AppliedOn.Format("2006-01-02 15:04:05"), desc)
	}
	return nil
}

// loadConfig resolves the configuration path from the --config flag,
// the GRAYSQLITE_CONFIG environment variable, or the default.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("GRAYSQLITE_CONFIG")
	}
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// dbConfig maps the file configuration onto connection settings.
func dbConfig(cfg *config.Config) sqlite.Config {
	return sqlite.Config{
		Path:        cfg.Database.Path,
		BusyTimeout: cfg.Database.BusyTimeout,
		WALMode:     cfg.Database.WALMode,
		ForeignKeys: cfg.Database.ForeignKeys,
	}
}
