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

type jockeyRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Age     int    `json:"age"`
	Rating  int    `json:"rating"`
}

func (r jockeyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("name is required"), validation.Length(1, 255)),
		validation.Field(&r.Address, validation.Required.Error("address is required"), validation.Length(1, 255)),
		validation.Field(&r.Age, validation.Required.Error("age is required"), validation.Min(1), validation.Max(120)),
		validation.Field(&r.Rating,
			validation.Required.Error("rating is required"),
			validation.Min(models.JockeyRatingMin).Error("rating must be between 1 and 10"),
			validation.Max(models.JockeyRatingMax).Error("rating must be between 1 and 10"),
		),
	)
}

// jockeyData is the wire form of a roster entry: member-linked jockeys carry
// the owning account's username so they can be told apart from club ones.
type jockeyData struct {
	*models.Jockey
	IsUserJockey bool   `json:"isUserJockey"`
	Username     string `json:"username,omitempty"`
}

// ListJockeys returns the whole roster, club jockeys and member-linked ones
// alike, best rating first. Each entry says which kind it is.
func (h *Handler) ListJockeys(c echo.Context) error {
	ctx := c.Request().Context()

	var jockeys []models.Jockey
	err := h.db.NewSelect().Model(&jockeys).
		Order("rating DESC").
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var links []models.UserProfile
	err = h.db.NewSelect().Model(&links).
		Relation("User").
		Where("up.jockey_id IS NOT NULL").
		Scan(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	linked := make(map[int]string, len(links))
	for i := range links {
		if links[i].JockeyID == nil || links[i].User == nil {
			continue
		}
		linked[*links[i].JockeyID] = links[i].User.Username
	}

	out := make([]jockeyData, len(jockeys))
	for i := range jockeys {
		username, isMember := linked[jockeys[i].ID]
		out[i] = jockeyData{
			Jockey:       &jockeys[i],
			IsUserJockey: isMember,
			Username:     username,
		}
	}
	return c.JSON(http.StatusOK, out)
}

// CreateJockey adds a jockey to the club roster. Admin only; jockeys for
// members with the jockey role are synthesized automatically instead.
func (h *Handler) CreateJockey(c echo.Context) error {
	var req jockeyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	jockey := &models.Jockey{
		Name:    req.Name,
		Address: req.Address,
		Age:     req.Age,
		Rating:  req.Rating,
	}
	if _, err := h.db.NewInsert().Model(jockey).Exec(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, jockey)
}

// JockeyResults returns one jockey's race history, newest competitions first.
func (h *Handler) JockeyResults(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid jockey id")
	}

	ctx := c.Request().Context()
	jockey := &models.Jockey{ID: id}
	if err := h.db.NewSelect().Model(jockey).WherePK().Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "jockey not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var results []models.Result
	err = h.db.NewSelect().Model(&results).
		Relation("Competition").
		Relation("Competition.Hippodrome").
		Relation("Horse").
		Where("r.jockey_id = ?", id).
		OrderExpr("competition.date DESC, competition.time DESC, r.position ASC").
		Scan(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"jockey":  jockey,
		"results": renderResults(results),
	})
}
