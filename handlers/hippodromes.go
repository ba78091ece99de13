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

type hippodromeRequest struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Capacity    *int    `json:"capacity"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

func (r hippodromeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("name is required"), validation.Length(1, 255)),
		validation.Field(&r.Address, validation.Required.Error("address is required"), validation.Length(1, 255)),
		validation.Field(&r.Capacity, validation.Min(0).Error("capacity cannot be negative")),
	)
}

// ListHippodromes returns every racetrack, active first, then by name.
func (h *Handler) ListHippodromes(c echo.Context) error {
	var hippodromes []models.Hippodrome
	err := h.db.NewSelect().Model(&hippodromes).
		OrderExpr("is_active DESC").
		Order("name ASC").
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, hippodromes)
}

// CreateHippodrome registers a new racetrack. Admin only.
func (h *Handler) CreateHippodrome(c echo.Context) error {
	var req hippodromeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	hd := &models.Hippodrome{
		Name:        req.Name,
		Address:     req.Address,
		Capacity:    req.Capacity,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		hd.IsActive = *req.IsActive
	}

	if _, err := h.db.NewInsert().Model(hd).Exec(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, hd)
}

// UpdateHippodrome edits a racetrack, including retiring it via isActive.
func (h *Handler) UpdateHippodrome(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid hippodrome id")
	}

	var req hippodromeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	hd := &models.Hippodrome{ID: id}
	if err := h.db.NewSelect().Model(hd).WherePK().Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "hippodrome not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	hd.Name = req.Name
	hd.Address = req.Address
	hd.Capacity = req.Capacity
	hd.Description = req.Description
	if req.IsActive != nil {
		hd.IsActive = *req.IsActive
	}

	if _, err := h.db.NewUpdate().Model(hd).WherePK().Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, hd)
}
