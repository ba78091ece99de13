package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"

	"github.com/dmpolyakov/racingclub/models"
)

type horseRequest struct {
	Name    string `json:"name"`
	Gender  string `json:"gender"`
	Age     int    `json:"age"`
	OwnerID int    `json:"ownerID"`
}

func (r horseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("name is required"), validation.Length(1, 255)),
		validation.Field(&r.Gender,
			validation.Required.Error("gender is required"),
			validation.In(models.GenderMale, models.GenderFemale).Error("gender must be M or F"),
		),
		validation.Field(&r.Age, validation.Required.Error("age is required"), validation.Min(1), validation.Max(50)),
		validation.Field(&r.OwnerID, validation.Required.Error("ownerID is required")),
	)
}

// ListHorses returns every horse with its owner attached.
func (h *Handler) ListHorses(c echo.Context) error {
	var horses []models.Horse
	err := h.db.NewSelect().Model(&horses).
		Relation("Owner").
		Order("name ASC").
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, horses)
}

// CreateHorse registers a horse under an existing owner.
func (h *Handler) CreateHorse(c echo.Context) error {
	var req horseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	exists, err := h.db.NewSelect().Model((*models.Owner)(nil)).
		Where("id = ?", req.OwnerID).
		Exists(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !exists {
		return echo.NewHTTPError(http.StatusBadRequest, "owner not found")
	}

	horse := &models.Horse{
		Name:    req.Name,
		Gender:  req.Gender,
		Age:     req.Age,
		OwnerID: req.OwnerID,
	}
	if _, err := h.db.NewInsert().Model(horse).Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, horse)
}

// HorseResults returns one horse's race history, newest competitions first.
func (h *Handler) HorseResults(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid horse id")
	}

	ctx := c.Request().Context()
	horse := &models.Horse{ID: id}
	if err := h.db.NewSelect().Model(horse).WherePK().Relation("Owner").Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "horse not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var results []models.Result
	err = h.db.NewSelect().Model(&results).
		Relation("Competition").
		Relation("Competition.Hippodrome").
		Relation("Jockey").
		Where("r.horse_id = ?", id).
		OrderExpr("competition.date DESC, competition.time DESC, r.position ASC").
		Scan(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"horse":   horse,
		"results": renderResults(results),
	})
}
