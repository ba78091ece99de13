package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/dmpolyakov/racingclub/config"
	"github.com/dmpolyakov/racingclub/models"
)

// Setup opens a PostgreSQL connection using the provided config.
func Setup(cfg *config.Config) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN())))
	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(context.Background()); err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	return db
}

// Models lists every table model in dependency order. cmd tools and tests
// share it with CreateTables.
func Models() []interface{} {
	return []interface{}{
		(*models.User)(nil),
		(*models.Jockey)(nil),
		(*models.UserProfile)(nil),
		(*models.Hippodrome)(nil),
		(*models.Owner)(nil),
		(*models.Horse)(nil),
		(*models.Competition)(nil),
		(*models.Result)(nil),
	}
}

// CreateTables creates all tables in dependency order and the uniqueness
// constraints validation relies on as its authoritative guard: one horse and
// one occupant per position within a competition.
func CreateTables(ctx context.Context, db *bun.DB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	constraints := []string{
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'results_position_no_dupes') THEN ALTER TABLE results ADD CONSTRAINT results_position_no_dupes UNIQUE (competition_id, position); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'results_horse_no_dupes') THEN ALTER TABLE results ADD CONSTRAINT results_horse_no_dupes UNIQUE (competition_id, horse_id); END IF; END $$`,
	}
	for _, stmt := range constraints {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Printf("constraint: %v", err)
		}
	}

	return nil
}
