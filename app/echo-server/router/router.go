package router

import (
	"net/http"

	"nfcExperience/internal/middleware"
	"nfcExperience/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupExperienceRoutes mounts the public pages an NFC tag points to.
func SetupExperienceRoutes(e *echo.Echo, handler *rest.ExperienceHandler) {
	e.GET("/", handler.RedirectToLanguage)
	e.GET("/:lang", handler.Landing)
	e.GET("/:lang/product/:brand", handler.Resolve)
}

func SetupSessionRoutes(api *echo.Group, handler *rest.SessionHandler) {
	api.POST("/sessions", handler.Create)
}

func SetupAdminRoutes(api *echo.Group, handler *rest.AdminHandler) {
	api.POST("/admin/login", handler.Login)

	admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.AdminOnly())
	admin.GET("/settings/:key", handler.GetSetting)
	admin.PUT("/settings/:key", handler.UpdateSetting)
	admin.POST("/units", handler.RegisterUnit)
	admin.GET("/units/:uid", handler.GetUnit)
	admin.GET("/scans/export", handler.ExportScans)
	admin.GET("/scans/:uid", handler.GetScan)
	admin.GET("/nfc-url", handler.NFCURL)
}

func SetupOpsRoutes(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
