package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/dmpolyakov/racingclub/models"
	"github.com/dmpolyakov/racingclub/validate"
)

// resultData is the wire form of a Result: elapsed time goes out formatted
// as MM:SS.mmm rather than raw nanoseconds.
type resultData struct {
	*models.Result
	Time string `json:"time"`
}

func renderResult(r *models.Result) resultData {
	return resultData{Result: r, Time: r.FormattedTime()}
}

func renderResults(rs []models.Result) []resultData {
	out := make([]resultData, len(rs))
	for i := range rs {
		out[i] = renderResult(&rs[i])
	}
	return out
}

type resultRequest struct {
	CompetitionID int    `json:"competitionID"`
	HorseID       int    `json:"horseID"`
	JockeyID      int    `json:"jockeyID"`
	Position      int    `json:"position"`
	Time          string `json:"time"`
}

func (r resultRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CompetitionID, validation.Required.Error("competitionID is required")),
		validation.Field(&r.HorseID, validation.Required.Error("horseID is required")),
		validation.Field(&r.JockeyID, validation.Required.Error("jockeyID is required")),
		validation.Field(&r.Position,
			validation.Required.Error("position is required"),
			validation.Min(1).Error("position must be at least 1"),
		),
		validation.Field(&r.Time, validation.Required.Error("time is required")),
	)
}

// CreateResult records one placement in a competition, enforcing the cross
// record rules: no horse or position twice per competition, the competition
// within the recordable window, and elapsed times consistent with finishing
// order. The storage layer backs the uniqueness rules with constraints, so a
// concurrent duplicate comes back as 409.
func (h *Handler) CreateResult(c echo.Context) error {
	var req resultRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	elapsed, err := validate.ParseRaceTime(req.Time)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result := &models.Result{
		CompetitionID: req.CompetitionID,
		HorseID:       req.HorseID,
		JockeyID:      req.JockeyID,
		Position:      req.Position,
		TimeResult:    elapsed,
	}

	ctx := c.Request().Context()
	err = h.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := h.checkResult(ctx, tx, result, 0); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(result).Exec(ctx)
		return err
	})
	if err != nil {
		return resultError(err)
	}

	h.Cache.Invalidate(ctx, dashboardCacheKey)
	return c.JSON(http.StatusCreated, renderResult(result))
}

// UpdateResult edits a recorded placement. The same cross-record rules apply,
// with the edited row excluded from the duplicate and neighbor checks.
func (h *Handler) UpdateResult(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid result id")
	}

	var req resultRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	elapsed, err := validate.ParseRaceTime(req.Time)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	result := &models.Result{ID: id}
	if err := h.db.NewSelect().Model(result).WherePK().Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "result not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	result.CompetitionID = req.CompetitionID
	result.HorseID = req.HorseID
	result.JockeyID = req.JockeyID
	result.Position = req.Position
	result.TimeResult = elapsed

	err = h.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := h.checkResult(ctx, tx, result, id); err != nil {
			return err
		}
		_, err := tx.NewUpdate().Model(result).WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return resultError(err)
	}

	h.Cache.Invalidate(ctx, dashboardCacheKey)
	return c.JSON(http.StatusOK, renderResult(result))
}

// checkResult runs every rule a placement must satisfy against the other
// rows already recorded for its competition. exclude is the id of the row
// being edited, zero on create.
func (h *Handler) checkResult(ctx context.Context, tx bun.Tx, result *models.Result, exclude int) error {
	competition := &models.Competition{ID: result.CompetitionID}
	if err := tx.NewSelect().Model(competition).WherePK().Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusBadRequest, "competition not found")
		}
		return err
	}
	horseExists, err := tx.NewSelect().Model((*models.Horse)(nil)).
		Where("id = ?", result.HorseID).
		Exists(ctx)
	if err != nil {
		return err
	}
	if !horseExists {
		return echo.NewHTTPError(http.StatusBadRequest, "horse not found")
	}
	jockeyExists, err := tx.NewSelect().Model((*models.Jockey)(nil)).
		Where("id = ?", result.JockeyID).
		Exists(ctx)
	if err != nil {
		return err
	}
	if !jockeyExists {
		return echo.NewHTTPError(http.StatusBadRequest, "jockey not found")
	}

	siblings := tx.NewSelect().Model((*models.Result)(nil)).
		Where("competition_id = ?", result.CompetitionID)
	if exclude != 0 {
		siblings = siblings.Where("id != ?", exclude)
	}
	hasSiblings, err := siblings.Exists(ctx)
	if err != nil {
		return err
	}
	// The cross-record rules compare against already-recorded rows; the
	// first placement of a card has nothing to compare with.
	if !hasSiblings {
		return nil
	}

	horseTaken, err := siblingQuery(tx, result, exclude).
		Where("horse_id = ?", result.HorseID).
		Exists(ctx)
	if err != nil {
		return err
	}
	if horseTaken {
		return echo.NewHTTPError(http.StatusBadRequest, "this horse already has a result in this competition")
	}

	positionTaken, err := siblingQuery(tx, result, exclude).
		Where("position = ?", result.Position).
		Exists(ctx)
	if err != nil {
		return err
	}
	if positionTaken {
		return echo.NewHTTPError(http.StatusBadRequest,
			"position "+strconv.Itoa(result.Position)+" is already taken in this competition")
	}

	at, err := competition.StartsAt()
	if err != nil {
		return err
	}
	if err := validate.CheckResultWindow(at, time.Now()); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	better, err := nearestNeighbor(ctx, tx, result, exclude, true)
	if err != nil {
		return err
	}
	worse, err := nearestNeighbor(ctx, tx, result, exclude, false)
	if err != nil {
		return err
	}
	if err := validate.CheckRunningOrder(result.Position, result.TimeResult, better, worse); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func siblingQuery(tx bun.Tx, result *models.Result, exclude int) *bun.SelectQuery {
	q := tx.NewSelect().Model((*models.Result)(nil)).
		Where("competition_id = ?", result.CompetitionID)
	if exclude != 0 {
		q = q.Where("id != ?", exclude)
	}
	return q
}

// nearestNeighbor finds the recorded row closest in finishing order to the
// candidate: the highest position below it (better) or the lowest above it
// (worse).
func nearestNeighbor(ctx context.Context, tx bun.Tx, result *models.Result, exclude int, better bool) (*validate.Neighbor, error) {
	row := new(models.Result)
	q := tx.NewSelect().Model(row).
		Where("competition_id = ?", result.CompetitionID)
	if exclude != 0 {
		q = q.Where("id != ?", exclude)
	}
	if better {
		q = q.Where("position < ?", result.Position).Order("position DESC")
	} else {
		q = q.Where("position > ?", result.Position).Order("position ASC")
	}
	err := q.Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &validate.Neighbor{Position: row.Position, Time: row.TimeResult}, nil
}

// resultError maps a transaction failure onto the right HTTP error: typed
// HTTP errors pass through, storage uniqueness races become 409.
func resultError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	if isDuplicateKey(err) {
		return echo.NewHTTPError(http.StatusConflict, "a conflicting result was recorded concurrently")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
