package handlers

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"

	"github.com/dmpolyakov/racingclub/models"
	"github.com/dmpolyakov/racingclub/validate"
)

type ownerRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (r ownerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("name is required"), validation.Length(1, 255)),
		validation.Field(&r.Address, validation.Required.Error("address is required"), validation.Length(1, 255)),
		validation.Field(&r.Phone, validation.Required.Error("phone is required")),
	)
}

// ListOwners returns every registered horse owner.
func (h *Handler) ListOwners(c echo.Context) error {
	var owners []models.Owner
	err := h.db.NewSelect().Model(&owners).
		Order("name ASC").
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, owners)
}

// CreateOwner registers a horse owner. The phone number is normalized to
// +7XXXXXXXXXX before storage.
func (h *Handler) CreateOwner(c echo.Context) error {
	var req ownerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	phone, err := validate.NormalizePhone(req.Phone)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	owner := &models.Owner{
		Name:    req.Name,
		Address: req.Address,
		Phone:   phone,
	}
	if _, err := h.db.NewInsert().Model(owner).Exec(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, owner)
}
