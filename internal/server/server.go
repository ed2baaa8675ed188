package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/mentorhive/achievements-backend/internal/handler"
	"github.com/mentorhive/achievements-backend/internal/logger"
	appmw "github.com/mentorhive/achievements-backend/internal/middleware"
	"github.com/mentorhive/achievements-backend/internal/repository"
	"github.com/mentorhive/achievements-backend/internal/service"
	"gorm.io/gorm"
)

type Server struct {
	e *echo.Echo
}

// New wires repositories, services and handlers onto an Echo instance.
// firebaseProjectID may be empty in local development; the authenticated
// route groups are then mounted without token verification.
func New(db *gorm.DB, firebaseProjectID string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	achievementRepo := repository.NewAchievementRepository(db)
	progressRepo := repository.NewUserAchievementRepository(db)
	levelRepo := repository.NewUserLevelRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)

	notificationSvc := service.NewNotificationService(notificationRepo)
	achievementSvc := service.NewAchievementService(achievementRepo, progressRepo, levelRepo, notificationSvc)
	catalogSvc := service.NewCatalogService(achievementRepo)

	achievementHandler := handler.NewAchievementHandler(achievementSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	adminHandler := handler.NewAdminAchievementHandler(catalogSvc)

	var authMw *appmw.AuthMiddleware
	if firebaseProjectID != "" {
		mw, err := appmw.NewAuthMiddleware(context.Background(), firebaseProjectID, userRepo)
		if err != nil {
			e.Logger.Fatalf("failed to init firebase auth: %v", err)
		}
		authMw = mw
	} else {
		logger.Warnf("FIREBASE_PROJECT_ID not set; /me and /admin routes are unauthenticated")
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	api := e.Group("/api")

	// Service-to-service surface: the caller names the user explicitly.
	api.GET("/achievements", achievementHandler.GetOverview)
	api.POST("/achievements", achievementHandler.Unlock)
	api.PUT("/achievements", achievementHandler.SetProgress)
	api.DELETE("/achievements", achievementHandler.Reset)

	me := api.Group("/me")
	admin := api.Group("/admin")
	if authMw != nil {
		me.Use(authMw.RequireAuth)
		admin.Use(authMw.RequireAuth, authMw.RequireAdmin)
	}
	me.GET("/achievements", achievementHandler.GetMyOverview)
	me.GET("/notifications", notificationHandler.List)
	me.POST("/notifications/read", notificationHandler.MarkAllRead)

	admin.GET("/achievements", adminHandler.List)
	admin.POST("/achievements", adminHandler.Create)
	admin.PUT("/achievements/:id", adminHandler.Update)
	admin.DELETE("/achievements/:id", adminHandler.Delete)

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}
