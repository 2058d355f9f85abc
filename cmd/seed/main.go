// Command seed loads a catalog fixture into postgres. Without -file it loads
// the bundled sample catalog. Re-running is safe: records are upserted.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/exampapers/backend/internal/catalog"
	"github.com/exampapers/backend/internal/config"
	"github.com/exampapers/backend/internal/database"
	"github.com/exampapers/backend/internal/logger"
)

func main() {
	file := flag.String("file", "", "JSON fixture with categories, papers, questions and answers")
	flag.Parse()

	cfg, err := config.LoadDatabase(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	appLogger, err := logger.New(logger.Options{Mode: cfg.Log.Mode, Redact: cfg.Log.Redact, HashSalt: cfg.Log.HashSalt})
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer appLogger.Sync()

	fixture := catalog.SampleFixture()
	if *file != "" {
		raw, err := os.ReadFile(*file)
		if err != nil {
			appLogger.Fatal("failed to read fixture", "file", *file, "error", err)
		}
		fixture = catalog.Fixture{}
		if err := json.Unmarshal(raw, &fixture); err != nil {
			appLogger.Fatal("failed to parse fixture", "file", *file, "error", err)
		}
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		appLogger.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		appLogger.Fatal("failed to run migrations", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := catalog.NewSQLStore(db, database.Postgres).Import(ctx, fixture); err != nil {
		appLogger.Fatal("seed failed", "error", err)
	}
	appLogger.Info("catalog seeded",
		"categories", len(fixture.Categories),
		"papers", len(fixture.Papers),
		"questions", len(fixture.Questions),
		"answers", len(fixture.Answers))
}
