package handlers

import (
	"net/http"

	"dashboard/internal/http/middleware"
	"dashboard/internal/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/activity?page&limit&kind&entity
func ListActivity(c *gin.Context) {
	raw, err := activityService().Page(requestContext(c), c.Request.URL.Query())
	if err != nil {
		utils.LogError(middleware.GetRequestID(c), "activity", "list", err)
		RespondError(c, http.StatusInternalServerError, "failed to load activity", nil)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}
