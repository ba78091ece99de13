package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"

	"github.com/dmpolyakov/racingclub/models"
	"github.com/dmpolyakov/racingclub/validate"
)

type competitionRequest struct {
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	HippodromeID int     `json:"hippodromeID"`
	Name         *string `json:"name"`
}

func (r competitionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Date,
			validation.Required.Error("date is required"),
			validation.Date("2006-01-02").Error("date must be YYYY-MM-DD"),
		),
		validation.Field(&r.Time,
			validation.Required.Error("time is required"),
			validation.Date("15:04").Error("time must be HH:MM"),
		),
		validation.Field(&r.HippodromeID, validation.Required.Error("hippodromeID is required")),
	)
}

// ListCompetitions returns all meetings, newest first.
func (h *Handler) ListCompetitions(c echo.Context) error {
	var competitions []models.Competition
	err := h.db.NewSelect().Model(&competitions).
		Relation("Hippodrome").
		Order("date DESC").
		Order("time DESC").
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, competitions)
}

// GetCompetition returns one meeting and its full result card by finishing
// position.
func (h *Handler) GetCompetition(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid competition id")
	}

	ctx := c.Request().Context()
	competition := &models.Competition{ID: id}
	if err := h.db.NewSelect().Model(competition).WherePK().Relation("Hippodrome").Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "competition not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var results []models.Result
	err = h.db.NewSelect().Model(&results).
		Relation("Horse").
		Relation("Horse.Owner").
		Relation("Jockey").
		Where("r.competition_id = ?", id).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"competition": competition,
		"results":     renderResults(results),
	})
}

// CreateCompetition records a meeting that has already been held. The date
// and time may not lie in the future and may not be older than ten years.
func (h *Handler) CreateCompetition(c echo.Context) error {
	var req competitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	at, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.Time, time.Local)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD and time HH:MM")
	}
	if err := validate.CheckCompetitionSchedule(at, time.Now()); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	exists, err := h.db.NewSelect().Model((*models.Hippodrome)(nil)).
		Where("id = ?", req.HippodromeID).
		Exists(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !exists {
		return echo.NewHTTPError(http.StatusBadRequest, "hippodrome not found")
	}

	competition := &models.Competition{
		Date:         req.Date,
		Time:         req.Time,
		HippodromeID: req.HippodromeID,
		Name:         req.Name,
	}
	if _, err := h.db.NewInsert().Model(competition).Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.Cache.Invalidate(ctx, dashboardCacheKey)
	return c.JSON(http.StatusCreated, competition)
}
