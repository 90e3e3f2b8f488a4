package api

import (
	stdhttp "net/http"

	intconfig "dashboard/internal/config"
	"dashboard/internal/domain"
	h "dashboard/internal/http/handlers"
	"dashboard/internal/http/middleware"
	"dashboard/internal/metrics"
	"dashboard/internal/services"
	"dashboard/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(env intconfig.Env, views *services.ViewService, activity *services.ActivityService) *gin.Engine {
	h.SetServices(views, activity)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.L().Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		secured := api.Group("", middleware.Auth(env.JWTSecret))
		secured.GET("/entities", h.ListEntities)
		secured.GET("/activity", h.ListActivity)

		// List views
		v := secured.Group("/views")
		v.POST("", h.MountView)
		v.GET("/:id", h.GetView)
		v.DELETE("/:id", h.UnmountView)
		v.POST("/:id/refresh", h.RefreshView)
		v.PUT("/:id/filters", h.SetViewFilter)
		v.PUT("/:id/page", h.SetViewPage)
		v.POST("/:id/sort", h.ToggleViewSort)
		v.POST("/:id/reset", h.ResetView)
		v.GET("/:id/export", h.ExportView)

		// Delete dialog
		v.POST("/:id/delete", h.RequestViewDelete)
		v.POST("/:id/delete/confirm",
			middleware.RequireRoles(env.JWTSecret != "", domain.RoleOwner, domain.RoleAdmin),
			h.ConfirmViewDelete)
		v.POST("/:id/delete/cancel", h.CancelViewDelete)
	}

	h.SetRouter(r)
	return r
}
