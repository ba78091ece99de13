package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	mw "github.com/dmpolyakov/racingclub/middleware"
	"github.com/dmpolyakov/racingclub/models"
	"github.com/dmpolyakov/racingclub/profiles"
	"github.com/dmpolyakov/racingclub/validate"
)

type profileData struct {
	ID       int            `json:"id"`
	Username string         `json:"username"`
	Role     string         `json:"role"`
	Phone    *string        `json:"phone,omitempty"`
	Address  *string        `json:"address,omitempty"`
	Jockey   *models.Jockey `json:"jockey,omitempty"`
}

func renderProfile(p *models.UserProfile) profileData {
	d := profileData{
		ID:      p.ID,
		Role:    p.Role,
		Phone:   p.Phone,
		Address: p.Address,
		Jockey:  p.Jockey,
	}
	if p.User != nil {
		d.Username = p.User.Username
	}
	return d
}

// GetProfile returns the caller's own profile. The role middleware has
// already created it on first access and synced the jockey link.
func (h *Handler) GetProfile(c echo.Context) error {
	profile, ok := c.Get(mw.ProfileKey).(*models.UserProfile)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "profile not resolved")
	}
	return c.JSON(http.StatusOK, renderProfile(profile))
}

type updateProfileRequest struct {
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// UpdateProfile lets the caller change their own contact details. Role is
// not editable here: only an admin assigns roles.
func (h *Handler) UpdateProfile(c echo.Context) error {
	profile, ok := c.Get(mw.ProfileKey).(*models.UserProfile)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "profile not resolved")
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// An explicit empty phone clears the stored number; anything else must
	// normalize to the canonical +7 form.
	if req.Phone != nil {
		if *req.Phone == "" {
			profile.Phone = nil
		} else {
			normalized, err := validate.NormalizePhone(*req.Phone)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			profile.Phone = &normalized
		}
	}
	if req.Address != nil {
		profile.Address = req.Address
	}

	_, err := h.db.NewUpdate().Model(profile).
		Column("phone", "address").
		WherePK().
		Exec(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, renderProfile(profile))
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// SetRole changes another member's role. Switching to "jockey" synthesizes
// a linked jockey record; switching away deletes it.
func (h *Handler) SetRole(c echo.Context) error {
	username := c.Param("username")

	var req setRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !models.ValidRole(req.Role) {
		return echo.NewHTTPError(http.StatusBadRequest, "role must be one of: user, jockey, admin")
	}

	ctx := c.Request().Context()
	profile, err := profiles.Find(ctx, h.db, username)
	switch {
	case errors.Is(err, profiles.ErrUnknownUser), errors.Is(err, profiles.ErrNoProfile):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := profiles.SetRole(ctx, h.db, profile, req.Role); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, renderProfile(profile))
}

// DeleteProfile removes a member's profile, cascading to the linked jockey
// record when the profile carries the jockey role.
func (h *Handler) DeleteProfile(c echo.Context) error {
	username := c.Param("username")

	ctx := c.Request().Context()
	profile, err := profiles.Find(ctx, h.db, username)
	switch {
	case errors.Is(err, profiles.ErrUnknownUser), errors.Is(err, profiles.ErrNoProfile):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := profiles.Delete(ctx, h.db, profile); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
