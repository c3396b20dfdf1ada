package handler

import (
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type EntryHandler struct {
	entryService service.EntryService
}

func NewEntryHandler(entryService service.EntryService) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

func (h *EntryHandler) RegisterRoutes(router *gin.RouterGroup) {
	entries := router.Group("/api/entries")
	{
		entries.GET("", middleware.AnyStaff(), h.ListEntries)
		entries.POST("", middleware.AnyStaff(), h.CreateEntry)
		entries.PUT("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.UpdateEntry)
		entries.POST("/:id/cancel", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.CancelEntry)
		entries.POST("/:id/deliver", middleware.AnyStaff(), h.DeliverEntry)
		entries.POST("/settle", middleware.AnyStaff(), h.SettleDebt)
		entries.POST("/:id/third-party", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.SettleThirdParty)
	}
}

// ListEntries returns the entries visible to the caller's branch, newest
// first, optionally filtered by ?search= and paginated.
func (h *EntryHandler) ListEntries(c *gin.Context) {
	branch := middleware.BranchScope(c)
	entries := h.entryService.List(branch, c.Query("search"))

	page := pagination.Slice(entries, pagination.Parse(c))
	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

// CreateEntry records a new service entry for the caller's branch
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	var req service.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	_, name, _ := middleware.Identity(c)
	if assigned := c.GetString("branchID"); assigned != "" {
		req.BranchID = assigned
	}

	entry, err := h.entryService.Create(c.Request.Context(), name, req)
	if err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entry))
}

// UpdateEntry replaces an existing entry's editable fields
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	var entry model.Entry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	entry.ID = c.Param("id")

	updated, err := h.entryService.Update(c.Request.Context(), entry)
	if err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// CancelEntry marks an entry as cancelled and releases its barcode
func (h *EntryHandler) CancelEntry(c *gin.Context) {
	if err := h.entryService.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "entry cancelled"))
}

// DeliverEntry marks an entry as delivered to the client
func (h *EntryHandler) DeliverEntry(c *gin.Context) {
	_, name, _ := middleware.Identity(c)
	if err := h.entryService.Deliver(c.Request.Context(), c.Param("id"), name); err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "entry delivered"))
}

// SettleDebt records a partial payment against an entry's remaining amount
func (h *EntryHandler) SettleDebt(c *gin.Context) {
	var req service.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	_, name, _ := middleware.Identity(c)
	settlement, err := h.entryService.Settle(c.Request.Context(), name, req)
	if err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, settlement))
}

// SettleThirdParty pays out an entry's third-party cost from branch cash and
// records the paired expense
func (h *EntryHandler) SettleThirdParty(c *gin.Context) {
	_, name, _ := middleware.Identity(c)
	expense, err := h.entryService.SettleThirdParty(c.Request.Context(), c.Param("id"), name)
	if err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}
