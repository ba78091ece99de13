package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmpolyakov/racingclub/models"
)

const dashboardCacheKey = "dashboard"

type dashboardData struct {
	Competitions []models.Competition `json:"recentCompetitions"`
	Counts       struct {
		Competitions int `json:"competitions"`
		Horses       int `json:"horses"`
		Jockeys      int `json:"jockeys"`
		Hippodromes  int `json:"hippodromes"`
		Results      int `json:"results"`
	} `json:"counts"`
}

// Dashboard is the public landing payload: the five most recent meetings
// plus club totals. Served from the cache when redis is configured.
func (h *Handler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	var data dashboardData
	if h.Cache.GetJSON(ctx, dashboardCacheKey, &data) {
		return c.JSON(http.StatusOK, data)
	}

	err := h.db.NewSelect().Model(&data.Competitions).
		Relation("Hippodrome").
		Order("date DESC").
		Order("time DESC").
		Limit(5).
		Scan(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if data.Competitions == nil {
		data.Competitions = []models.Competition{}
	}

	counts := []struct {
		model interface{}
		dest  *int
	}{
		{(*models.Competition)(nil), &data.Counts.Competitions},
		{(*models.Horse)(nil), &data.Counts.Horses},
		{(*models.Jockey)(nil), &data.Counts.Jockeys},
		{(*models.Hippodrome)(nil), &data.Counts.Hippodromes},
		{(*models.Result)(nil), &data.Counts.Results},
	}
	for _, cnt := range counts {
		n, err := h.db.NewSelect().Model(cnt.model).Count(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		*cnt.dest = n
	}

	h.Cache.SetJSON(ctx, dashboardCacheKey, data)
	return c.JSON(http.StatusOK, data)
}
