package handlers_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/dmpolyakov/racingclub/db"
	"github.com/dmpolyakov/racingclub/handlers"
	"github.com/dmpolyakov/racingclub/models"
)

func setup(t *testing.T) (*handlers.Handler, *bun.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bdb := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bdb.Close() })

	ctx := context.Background()
	for _, model := range db.Models() {
		_, err := bdb.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}
	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS results_position_no_dupes ON results (competition_id, position)",
		"CREATE UNIQUE INDEX IF NOT EXISTS results_horse_no_dupes ON results (competition_id, horse_id)",
	}
	for _, stmt := range indexes {
		_, err := bdb.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	return handlers.New(bdb, []byte("test-secret"), nil), bdb
}

// request builds an echo context for method/path with an optional JSON body
// and returns it with the recorder.
func request(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %v", err)
	return he.Code
}

func httpMessage(t *testing.T, err error) string {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %v", err)
	msg, ok := he.Message.(string)
	require.True(t, ok, "expected string message, got %T", he.Message)
	return msg
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
}

// --- fixtures ---

func addHippodrome(t *testing.T, bdb *bun.DB) *models.Hippodrome {
	t.Helper()
	hd := &models.Hippodrome{Name: "Central", Address: "Begovaya st. 22", IsActive: true}
	_, err := bdb.NewInsert().Model(hd).Exec(context.Background())
	require.NoError(t, err)
	return hd
}

func addOwner(t *testing.T, bdb *bun.DB) *models.Owner {
	t.Helper()
	owner := &models.Owner{Name: "Aleksandr Morozov", Address: "Moscow", Phone: "+79161234567"}
	_, err := bdb.NewInsert().Model(owner).Exec(context.Background())
	require.NoError(t, err)
	return owner
}

func addJockey(t *testing.T, bdb *bun.DB, name string) *models.Jockey {
	t.Helper()
	jockey := &models.Jockey{Name: name, Address: "Moscow", Age: 28, Rating: 7}
	_, err := bdb.NewInsert().Model(jockey).Exec(context.Background())
	require.NoError(t, err)
	return jockey
}

func addHorse(t *testing.T, bdb *bun.DB, ownerID int, name string) *models.Horse {
	t.Helper()
	horse := &models.Horse{Name: name, Gender: models.GenderMale, Age: 5, OwnerID: ownerID}
	_, err := bdb.NewInsert().Model(horse).Exec(context.Background())
	require.NoError(t, err)
	return horse
}

func addCompetition(t *testing.T, bdb *bun.DB, hippodromeID int, at time.Time) *models.Competition {
	t.Helper()
	competition := &models.Competition{
		Date:         at.Format("2006-01-02"),
		Time:         at.Format("15:04"),
		HippodromeID: hippodromeID,
	}
	_, err := bdb.NewInsert().Model(competition).Exec(context.Background())
	require.NoError(t, err)
	return competition
}

func addResult(t *testing.T, bdb *bun.DB, competitionID, horseID, jockeyID, position int, elapsed time.Duration) *models.Result {
	t.Helper()
	result := &models.Result{
		CompetitionID: competitionID,
		HorseID:       horseID,
		JockeyID:      jockeyID,
		Position:      position,
		TimeResult:    elapsed,
	}
	_, err := bdb.NewInsert().Model(result).Exec(context.Background())
	require.NoError(t, err)
	return result
}
