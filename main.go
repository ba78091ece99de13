package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/dmpolyakov/racingclub/cache"
	"github.com/dmpolyakov/racingclub/config"
	"github.com/dmpolyakov/racingclub/db"
	"github.com/dmpolyakov/racingclub/handlers"
	applog "github.com/dmpolyakov/racingclub/logger"
	mw "github.com/dmpolyakov/racingclub/middleware"
	"github.com/dmpolyakov/racingclub/models"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	bdb := db.Setup(cfg)
	defer bdb.Close()

	if err := db.CreateTables(context.Background(), bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	rcache := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL)
	if rcache != nil {
		defer rcache.Close()
	}

	h := handlers.New(bdb, cfg.JWTKey(), rcache)

	e := echo.New()
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*", "Authorization"},
		AllowCredentials: true,
	}))

	// Public
	e.POST("/api/signup", h.Signup)
	e.POST("/api/signin", h.Signin)
	e.GET("/api/dashboard", h.Dashboard)
	e.GET("/api/competitions/:id", h.GetCompetition)
	e.GET("/api/jockeys/:id/results", h.JockeyResults)
	e.GET("/api/horses/:id/results", h.HorseResults)

	// Authenticated – tiered by profile role
	api := e.Group("/api", mw.JWT(cfg.JWTKey()))

	member := api.Group("", mw.Roles(bdb, models.RoleUser, models.RoleJockey, models.RoleAdmin))
	member.GET("/profile", h.GetProfile)
	member.PUT("/profile", h.UpdateProfile)
	member.GET("/competitions", h.ListCompetitions)
	member.GET("/jockeys", h.ListJockeys)
	member.GET("/horses", h.ListHorses)
	member.GET("/hippodromes", h.ListHippodromes)
	member.GET("/owners", h.ListOwners)

	staff := api.Group("", mw.Roles(bdb, models.RoleJockey, models.RoleAdmin))
	staff.POST("/competitions", h.CreateCompetition)
	staff.POST("/horses", h.CreateHorse)
	staff.POST("/owners", h.CreateOwner)
	staff.POST("/results", h.CreateResult)
	staff.PUT("/results/:id", h.UpdateResult)

	admin := api.Group("", mw.Roles(bdb, models.RoleAdmin))
	admin.POST("/jockeys", h.CreateJockey)
	admin.POST("/hippodromes", h.CreateHippodrome)
	admin.PUT("/hippodromes/:id", h.UpdateHippodrome)
	admin.PUT("/users/:username/role", h.SetRole)
	admin.DELETE("/users/:username/profile", h.DeleteProfile)

	if cfg.Debug {
		logger.Info("starting server", zap.String("mode", "debug"), zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}
