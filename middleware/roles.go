package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/dmpolyakov/racingclub/models"
	"github.com/dmpolyakov/racingclub/profiles"
)

// Context keys set by Roles for downstream handlers.
const (
	ProfileKey = "profile"
	RoleKey    = "role"
)

// Allowed is the access decision: role must be in the allow-list.
func Allowed(role string, allowed []string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

func anyRole(allowed []string) bool {
	return Allowed(models.RoleUser, allowed) &&
		Allowed(models.RoleJockey, allowed) &&
		Allowed(models.RoleAdmin, allowed)
}

// Roles returns an Echo middleware gating the route by profile role. Mount
// after JWT. A missing profile is auto-created with the default role only on
// routes open to every authenticated role; elevated routes treat it as a
// denial. Denials name the required and actual roles.
func Roles(db *bun.DB, allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username, _ := c.Get("username").(string)
			if username == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}

			ctx := c.Request().Context()

			var profile *models.UserProfile
			var err error
			if anyRole(allowed) {
				profile, err = profiles.Ensure(ctx, db, username)
			} else {
				profile, err = profiles.Find(ctx, db, username)
				if err == nil {
					err = profiles.SyncJockey(ctx, db, profile)
				}
			}
			switch {
			case errors.Is(err, profiles.ErrUnknownUser):
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			case errors.Is(err, profiles.ErrNoProfile):
				return echo.NewHTTPError(http.StatusForbidden, "user profile not found, contact an administrator")
			case err != nil:
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}

			if !Allowed(profile.Role, allowed) {
				return echo.NewHTTPError(http.StatusForbidden, fmt.Sprintf(
					"access denied: requires role %s, your role is %s",
					strings.Join(allowed, " or "), profile.Role))
			}

			c.Set(ProfileKey, profile)
			c.Set(RoleKey, profile.Role)
			return next(c)
		}
	}
}
