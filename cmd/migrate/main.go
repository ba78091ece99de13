// cmd/migrate/main.go
// Migrates the club's legacy MySQL records into the local PostgreSQL
// database.
//
// Usage:
//
//	MYSQL_DSN="user:pass@tcp(host:3306)/clubrecords?parseTime=true" \
//	DB_PASS="pgpass" \
//	go run ./cmd/migrate
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"

	"github.com/dmpolyakov/racingclub/config"
	bundb "github.com/dmpolyakov/racingclub/db"
	"github.com/dmpolyakov/racingclub/models"
	"github.com/dmpolyakov/racingclub/validate"
)

const batchSize = 500

func main() {
	ctx := context.Background()

	cfg := config.Load()

	// --- MySQL ---
	if cfg.MySQLDSN == "" {
		log.Fatal("MYSQL_DSN required, e.g.: user:pass@tcp(host:3306)/clubrecords?parseTime=true")
	}
	myDB, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("open mysql: %v", err)
	}
	defer myDB.Close()
	myDB.SetMaxOpenConns(4)
	if err := myDB.PingContext(ctx); err != nil {
		log.Fatalf("ping mysql: %v", err)
	}
	log.Println("connected to MySQL")

	// --- PostgreSQL ---
	pgDB := bundb.Setup(cfg)
	defer pgDB.Close()
	log.Println("connected to PostgreSQL")

	// Create tables (idempotent)
	if err := bundb.CreateTables(ctx, pgDB); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	// Disable FK enforcement so we can load in bulk without strict ordering
	if _, err := pgDB.ExecContext(ctx, "SET session_replication_role = 'replica'"); err != nil {
		log.Fatalf("disable FK: %v", err)
	}
	defer func() {
		if _, err := pgDB.ExecContext(ctx, "SET session_replication_role = 'origin'"); err != nil {
			log.Printf("re-enable FK: %v", err)
		}
	}()

	steps := []struct {
		name string
		fn   func() (int, error)
	}{
		{"hippodromes", func() (int, error) { return migrateHippodromes(ctx, myDB, pgDB) }},
		{"owners", func() (int, error) { return migrateOwners(ctx, myDB, pgDB) }},
		{"jockeys", func() (int, error) { return migrateJockeys(ctx, myDB, pgDB) }},
		{"horses", func() (int, error) { return migrateHorses(ctx, myDB, pgDB) }},
		{"competitions", func() (int, error) { return migrateCompetitions(ctx, myDB, pgDB) }},
		{"results", func() (int, error) { return migrateResults(ctx, myDB, pgDB) }},
	}

	for _, s := range steps {
		n, err := s.fn()
		if err != nil {
			log.Fatalf("migrate %s: %v", s.name, err)
		}
		log.Printf("%-15s  %d rows migrated", s.name, n)
	}

	resetSequences(ctx, pgDB)
	log.Println("migration complete")
}

// --- helpers ---

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullStr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	return &n.String
}

func fmtDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// bulkInsert inserts a batch, skipping rows that already exist (idempotent re-runs).
func bulkInsert[T any](ctx context.Context, pgDB *bun.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := pgDB.NewInsert().Model(&rows).On("CONFLICT DO NOTHING").Exec(ctx)
	return err
}

// --- per-table migrations ---

func migrateHippodromes(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	rows, err := myDB.QueryContext(ctx,
		"SELECT id, name, address, capacity, description, is_active FROM hippodromes")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var batch []models.Hippodrome
	total := 0
	for rows.Next() {
		var (
			id          int
			name        string
			address     string
			capacity    sql.NullInt64
			description sql.NullString
			isActive    bool
		)
		if err := rows.Scan(&id, &name, &address, &capacity, &description, &isActive); err != nil {
			return total, err
		}
		batch = append(batch, models.Hippodrome{
			ID:          id,
			Name:        name,
			Address:     address,
			Capacity:    nullInt(capacity),
			Description: nullStr(description),
			IsActive:    isActive,
		})
		if len(batch) >= batchSize {
			if err := bulkInsert(ctx, pgDB, batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if err := bulkInsert(ctx, pgDB, batch); err != nil {
		return total, err
	}
	return total + len(batch), rows.Err()
}

func migrateOwners(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	rows, err := myDB.QueryContext(ctx, "SELECT id, name, address, phone FROM owners")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var batch []models.Owner
	total := 0
	for rows.Next() {
		var r models.Owner
		if err := rows.Scan(&r.ID, &r.Name, &r.Address, &r.Phone); err != nil {
			return total, err
		}
		// Legacy rows carry phones in every punctuation style; store them
		// normalized, keeping unparseable ones as-is.
		if normalized, err := validate.NormalizePhone(r.Phone); err == nil {
			r.Phone = normalized
		} else {
			log.Printf("owner %d: keeping unnormalized phone %q", r.ID, r.Phone)
		}
		batch = append(batch, r)
		if len(batch) >= batchSize {
			if err := bulkInsert(ctx, pgDB, batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if err := bulkInsert(ctx, pgDB, batch); err != nil {
		return total, err
	}
	return total + len(batch), rows.Err()
}

func migrateJockeys(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	rows, err := myDB.QueryContext(ctx, "SELECT id, name, address, age, rating FROM jockeys")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var batch []models.Jockey
	total := 0
	for rows.Next() {
		var r models.Jockey
		if err := rows.Scan(&r.ID, &r.Name, &r.Address, &r.Age, &r.Rating); err != nil {
			return total, err
		}
		batch = append(batch, r)
		if len(batch) >= batchSize {
			if err := bulkInsert(ctx, pgDB, batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if err := bulkInsert(ctx, pgDB, batch); err != nil {
		return total, err
	}
	return total + len(batch), rows.Err()
}

func migrateHorses(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	rows, err := myDB.QueryContext(ctx, "SELECT id, name, gender, age, owner_id FROM horses")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var batch []models.Horse
	total := 0
	for rows.Next() {
		var r models.Horse
		if err := rows.Scan(&r.ID, &r.Name, &r.Gender, &r.Age, &r.OwnerID); err != nil {
			return total, err
		}
		batch = append(batch, r)
		if len(batch) >= batchSize {
			if err := bulkInsert(ctx, pgDB, batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if err := bulkInsert(ctx, pgDB, batch); err != nil {
		return total, err
	}
	return total + len(batch), rows.Err()
}

func migrateCompetitions(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	rows, err := myDB.QueryContext(ctx,
		"SELECT id, date, time, hippodrome_id, name FROM competitions")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var batch []models.Competition
	total := 0
	for rows.Next() {
		var (
			id           int
			date         time.Time
			ctime        string
			hippodromeID int
			name         sql.NullString
		)
		if err := rows.Scan(&id, &date, &ctime, &hippodromeID, &name); err != nil {
			return total, err
		}
		batch = append(batch, models.Competition{
			ID:           id,
			Date:         fmtDate(date),
			Time:         ctime,
			HippodromeID: hippodromeID,
			Name:         nullStr(name),
		})
		if len(batch) >= batchSize {
			if err := bulkInsert(ctx, pgDB, batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if err := bulkInsert(ctx, pgDB, batch); err != nil {
		return total, err
	}
	return total + len(batch), rows.Err()
}

func migrateResults(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	rows, err := myDB.QueryContext(ctx,
		"SELECT id, competition_id, horse_id, jockey_id, position, time_result FROM results")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var batch []models.Result
	total := 0
	for rows.Next() {
		var (
			r          models.Result
			timeResult string
		)
		if err := rows.Scan(&r.ID, &r.CompetitionID, &r.HorseID, &r.JockeyID, &r.Position, &timeResult); err != nil {
			return total, err
		}
		// Legacy stores elapsed time as text (MM:SS.ffffff).
		elapsed, err := validate.ParseRaceTime(timeResult)
		if err != nil {
			return total, fmt.Errorf("result %d: bad time %q: %w", r.ID, timeResult, err)
		}
		r.TimeResult = elapsed
		batch = append(batch, r)
		if len(batch) >= batchSize {
			if err := bulkInsert(ctx, pgDB, batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if err := bulkInsert(ctx, pgDB, batch); err != nil {
		return total, err
	}
	return total + len(batch), rows.Err()
}

// resetSequences advances each PG sequence to MAX(id) so new inserts don't conflict.
func resetSequences(ctx context.Context, pgDB *bun.DB) {
	seqs := []struct{ seq, table, col string }{
		{"hippodromes_id_seq", "hippodromes", "id"},
		{"owners_id_seq", "owners", "id"},
		{"jockeys_id_seq", "jockeys", "id"},
		{"horses_id_seq", "horses", "id"},
		{"competitions_id_seq", "competitions", "id"},
		{"results_id_seq", "results", "id"},
	}
	for _, s := range seqs {
		q := fmt.Sprintf(
			"SELECT setval('%s', COALESCE((SELECT MAX(%s) FROM %s), 1))",
			s.seq, s.col, s.table,
		)
		if _, err := pgDB.ExecContext(ctx, q); err != nil {
			log.Printf("reset seq %s: %v", s.seq, err)
		}
	}
	log.Println("sequences reset")
}
