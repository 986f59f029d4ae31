// Package bootstrap initializes shared infrastructure in a fixed order:
// logger, database pool, migrations, subject seed.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/teamhackers/boardbooster/core/config"
	coredatabase "github.com/teamhackers/boardbooster/core/database"
	"github.com/teamhackers/boardbooster/core/logger"
)

// Options control the bootstrap pipeline. The function hooks default to the
// real implementations and exist for tests.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coreconfig.DatabaseConfig) (*sqlx.DB, error)
	Migrate    func(coreconfig.DatabaseConfig) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB *sqlx.DB
}

// Run initializes the logger, connects to the database, applies migrations,
// and seeds the configured subjects.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	db, err := connect(opts.Config.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	migrate := opts.Migrate
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}
	if err := migrate(opts.Config.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	if err := seedSubjects(context.Background(), db, opts.Config.Catalog.Subjects); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: subject seed failed: %w", err)
	}

	return &Result{DB: db}, nil
}

// seedSubjects makes sure every configured subject code has a row. Codes
// removed from the config are kept in the table so their content survives.
func seedSubjects(ctx context.Context, db *sqlx.DB, subjects []coreconfig.SubjectConfig) error {
	for _, s := range subjects {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO subjects (code) VALUES ($1) ON CONFLICT (code) DO NOTHING`, s.Code); err != nil {
			return fmt.Errorf("seed subject %s: %w", s.Code, err)
		}
	}
	logger.DB.Debug("subjects seeded",
		slog.String("event", "db.seed"),
		slog.Int("count", len(subjects)),
	)
	return nil
}
