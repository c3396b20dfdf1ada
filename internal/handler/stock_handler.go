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

type StockHandler struct {
	stockService service.StockService
}

func NewStockHandler(stockService service.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

func (h *StockHandler) RegisterRoutes(router *gin.RouterGroup) {
	stock := router.Group("/api/stock")
	{
		stock.GET("", middleware.AnyStaff(), h.ListStock)
		stock.GET("/counts", middleware.AnyStaff(), h.StockCounts)
		stock.GET("/available", middleware.AnyStaff(), h.AvailableBarcode)
		stock.POST("/batch", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.AddBatch)
		stock.PUT("/status", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.UpdateStatus)
		stock.PUT("/item", middleware.RequireRole(model.RoleAdmin), h.UpdateItem)
		stock.DELETE("/:barcode", middleware.RequireRole(model.RoleAdmin), h.DeleteItem)
	}
}

// ListStock returns the stock items visible to the caller's branch
func (h *StockHandler) ListStock(c *gin.Context) {
	branch := middleware.BranchScope(c)
	items := h.stockService.List(branch)

	page := pagination.Slice(items, pagination.Parse(c))
	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

// StockCounts returns the count of currently available forms per speed tier
func (h *StockHandler) StockCounts(c *gin.Context) {
	branch := middleware.BranchScope(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.stockService.Counts(branch)))
}

// AvailableBarcode reserves the next available barcode for a branch and tier
func (h *StockHandler) AvailableBarcode(c *gin.Context) {
	branch := middleware.BranchScope(c)
	category := c.Query("category")
	if category == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "category is required"))
		return
	}

	barcode, err := h.stockService.AvailableBarcode(c.Request.Context(), branch, category)
	if err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"barcode": barcode}))
}

// AddBatch registers a batch of pre-printed barcode forms
func (h *StockHandler) AddBatch(c *gin.Context) {
	var req service.AddStockBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	_, name, _ := middleware.Identity(c)
	batchID, err := h.stockService.AddBatch(c.Request.Context(), name, req)
	if err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{"batchId": batchID}))
}

// UpdateStatus transitions a single stock item between statuses
func (h *StockHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateStockStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	_, name, _ := middleware.Identity(c)
	if err := h.stockService.UpdateStatus(c.Request.Context(), name, req); err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "stock status updated"))
}

// UpdateItem replaces a stock item's fields
func (h *StockHandler) UpdateItem(c *gin.Context) {
	var item model.StockItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.stockService.UpdateItem(c.Request.Context(), item); err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "stock item updated"))
}

// DeleteItem removes a stock item by barcode
func (h *StockHandler) DeleteItem(c *gin.Context) {
	if err := h.stockService.Delete(c.Request.Context(), c.Param("barcode")); err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "stock item deleted"))
}
