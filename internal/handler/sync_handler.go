package handler

import (
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/store"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	st *store.Store
}

func NewSyncHandler(st *store.Store) *SyncHandler {
	return &SyncHandler{st: st}
}

func (h *SyncHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/api/sync", middleware.AnyStaff(), h.SyncAll)
}

// SyncAll pulls every collection from the remote sheet and merges it into the
// in-memory state. Admins and managers also refresh users and settings.
func (h *SyncHandler) SyncAll(c *gin.Context) {
	_, _, role := middleware.Identity(c)
	privileged := role == model.RoleAdmin || role == model.RoleManager

	if err := h.st.SyncAll(c.Request.Context(), privileged); err != nil {
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "sync complete"))
}
