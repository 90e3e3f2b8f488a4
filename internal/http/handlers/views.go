package handlers

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"dashboard/internal/domain"
	"dashboard/internal/domain/models"
	"dashboard/internal/http/middleware"
	"dashboard/internal/liststate"
	"dashboard/internal/services"

	"github.com/gin-gonic/gin"
)

var (
	servicesMu sync.RWMutex
	views      *services.ViewService
	activity   *services.ActivityService
)

// SetServices installs the view registry and activity log used by the handlers.
func SetServices(v *services.ViewService, a *services.ActivityService) {
	servicesMu.Lock()
	defer servicesMu.Unlock()
	views = v
	activity = a
}

func viewService() *services.ViewService {
	servicesMu.RLock()
	defer servicesMu.RUnlock()
	return views
}

func activityService() *services.ActivityService {
	servicesMu.RLock()
	defer servicesMu.RUnlock()
	return activity
}

type mountRequest struct {
	Entity string `json:"entity" binding:"required"`
}

type filterRequest struct {
	Key   string `json:"key" binding:"required"`
	Value any    `json:"value"`
}

type pageRequest struct {
	Page int `json:"page" binding:"required,min=1"`
}

type sortRequest struct {
	Field string `json:"field" binding:"required"`
}

type deleteRequest struct {
	ID models.FlexID `json:"id"`
}

// GET /api/entities
func ListEntities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": viewService().Entities()})
}

// POST /api/views
func MountView(c *gin.Context) {
	var req mountRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	v, err := viewService().Mount(requestContext(c), req.Entity)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v.Snapshot())
}

// GET /api/views/:id
func GetView(c *gin.Context) {
	v, ok := loadView(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, v.Snapshot())
}

// DELETE /api/views/:id
func UnmountView(c *gin.Context) {
	if err := viewService().Unmount(c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/views/:id/refresh
func RefreshView(c *gin.Context) {
	v, ok := loadView(c)
	if !ok {
		return
	}
	respondView(c, v, v.Refresh(requestContext(c)))
}

// PUT /api/views/:id/filters
func SetViewFilter(c *gin.Context) {
	v, ok := loadView(c)
	if !ok {
		return
	}
	var req filterRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	key := strings.TrimSpace(req.Key)
	if key == liststate.KeyPage {
		RespondDomainError(c, domain.ValidationError{Field: "key", Msg: "use the page endpoint to change page"})
		return
	}
	respondView(c, v, v.SetFilter(requestContext(c), key, req.Value))
}

// PUT /api/views/:id/page
func SetViewPage(c *gin.Context) {
	v, ok := loadView(c)
	if !ok {
		return
	}
	var req pageRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	respondView(c, v, v.SetPage(requestContext(c), req.Page))
}

// POST /api/views/:id/sort
func ToggleViewSort(c *gin.Context) {
	v, ok := loadView(c)
	if !ok {
		return
	}
	var req sortRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	respondView(c, v, v.ToggleSort(requestContext(c), strings.TrimSpace(req.Field)))
}

// POST /api/views/:id/reset
func ResetView(c *gin.Context) {
	v, ok := loadView(c)
	if !ok {
		return
	}
	respondView(c, v, v.Reset(requestContext(c)))
}

// POST /api/views/:id/delete
func RequestViewDelete(c *gin.Context) {
	v, ok := loadView(c)
	if !ok {
		return
	}
	var req deleteRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.ID == "" {
		RespondDomainError(c, domain.ValidationError{Field: "id", Msg: "id is required"})
		return
	}
	respondView(c, v, v.RequestDelete(req.ID.String()))
}

// POST /api/views/:id/delete/confirm
func ConfirmViewDelete(c *gin.Context) {
	v, ok := loadView(c)
	if !ok {
		return
	}
	respondView(c, v, v.ConfirmDelete(requestContext(c)))
}

// POST /api/views/:id/delete/cancel
func CancelViewDelete(c *gin.Context) {
	v, ok := loadView(c)
	if !ok {
		return
	}
	respondView(c, v, v.CancelDelete())
}

// GET /api/views/:id/export
func ExportView(c *gin.Context) {
	v, ok := loadView(c)
	if !ok {
		return
	}
	svc := services.ExportService{RequestID: middleware.GetRequestID(c)}
	pdfBytes, filename, err := svc.ExportPage(v)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func loadView(c *gin.Context) (*services.View, bool) {
	v, err := viewService().Get(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return nil, false
	}
	return v, true
}

// respondView answers with the view snapshot. A failed or superseded fetch
// is part of the snapshot, not an HTTP error.
func respondView(c *gin.Context, v *services.View, err error) {
	if err != nil && !domain.IsFetch(err) && !errors.Is(err, liststate.ErrStale) {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v.Snapshot())
}
