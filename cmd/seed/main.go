// cmd/seed/main.go
// Loads a small demo data set: two racetracks, a handful of owners, jockeys
// and horses, and one finished competition with a full result card.
//
// Usage:
//
//	DB_PASS="pgpass" go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/uptrace/bun"

	"github.com/dmpolyakov/racingclub/config"
	bundb "github.com/dmpolyakov/racingclub/db"
	"github.com/dmpolyakov/racingclub/models"
	"github.com/dmpolyakov/racingclub/validate"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()
	db := bundb.Setup(cfg)
	defer db.Close()

	if err := bundb.CreateTables(ctx, db); err != nil {
		log.Fatal("create tables:", err)
	}

	if err := seed(ctx, db); err != nil {
		log.Fatal("seed:", err)
	}
	log.Println("demo data loaded")
}

func seed(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hippodromes := []models.Hippodrome{
			{Name: "Central Moscow Hippodrome", Address: "Begovaya st. 22, Moscow", Capacity: intp(3500), IsActive: true},
			{Name: "Kazan Racetrack", Address: "Patriotic st. 1, Kazan", Capacity: intp(6000), IsActive: true},
		}
		if _, err := tx.NewInsert().Model(&hippodromes).Exec(ctx); err != nil {
			return fmt.Errorf("hippodromes: %w", err)
		}

		owners := []models.Owner{
			{Name: "Aleksandr Morozov", Address: "Tverskaya st. 10, Moscow", Phone: "+79161234567"},
			{Name: "Elena Sokolova", Address: "Nevsky pr. 5, Saint Petersburg", Phone: "+79269876543"},
		}
		if _, err := tx.NewInsert().Model(&owners).Exec(ctx); err != nil {
			return fmt.Errorf("owners: %w", err)
		}

		jockeys := []models.Jockey{
			{Name: "Ivan Petrov", Address: "Moscow", Age: 28, Rating: 8},
			{Name: "Sergey Volkov", Address: "Kazan", Age: 32, Rating: 7},
			{Name: "Dmitry Orlov", Address: "Moscow", Age: 24, Rating: 6},
		}
		if _, err := tx.NewInsert().Model(&jockeys).Exec(ctx); err != nil {
			return fmt.Errorf("jockeys: %w", err)
		}

		horses := []models.Horse{
			{Name: "Thunder", Gender: models.GenderMale, Age: 5, OwnerID: owners[0].ID},
			{Name: "Lightning", Gender: models.GenderFemale, Age: 4, OwnerID: owners[0].ID},
			{Name: "Storm", Gender: models.GenderMale, Age: 6, OwnerID: owners[1].ID},
		}
		if _, err := tx.NewInsert().Model(&horses).Exec(ctx); err != nil {
			return fmt.Errorf("horses: %w", err)
		}

		lastMonth := time.Now().AddDate(0, -1, 0)
		competition := &models.Competition{
			Date:         lastMonth.Format("2006-01-02"),
			Time:         "14:30",
			HippodromeID: hippodromes[0].ID,
			Name:         strp("Spring Derby"),
		}
		if _, err := tx.NewInsert().Model(competition).Exec(ctx); err != nil {
			return fmt.Errorf("competition: %w", err)
		}

		card := []struct {
			horse    int
			jockey   int
			position int
			elapsed  string
		}{
			{0, 0, 1, "02:31.250"},
			{1, 1, 2, "02:33.100"},
			{2, 2, 3, "02:36.480"},
		}
		results := make([]models.Result, 0, len(card))
		for _, row := range card {
			elapsed, err := validate.ParseRaceTime(row.elapsed)
			if err != nil {
				return fmt.Errorf("result time %q: %w", row.elapsed, err)
			}
			results = append(results, models.Result{
				CompetitionID: competition.ID,
				HorseID:       horses[row.horse].ID,
				JockeyID:      jockeys[row.jockey].ID,
				Position:      row.position,
				TimeResult:    elapsed,
			})
		}
		if _, err := tx.NewInsert().Model(&results).Exec(ctx); err != nil {
			return fmt.Errorf("results: %w", err)
		}
		return nil
	})
}

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }
