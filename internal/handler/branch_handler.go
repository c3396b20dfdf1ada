package handler

import (
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type BranchHandler struct {
	branchService service.BranchService
}

func NewBranchHandler(branchService service.BranchService) *BranchHandler {
	return &BranchHandler{branchService: branchService}
}

func (h *BranchHandler) RegisterRoutes(router *gin.RouterGroup) {
	branches := router.Group("/api/branches")
	{
		branches.GET("", middleware.AnyStaff(), h.ListBranches)
		branches.POST("", middleware.RequireRole(model.RoleAdmin), h.AddBranch)
		branches.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteBranch)
		branches.POST("/transfer", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.Transfer)
	}
}

// ListBranches returns all branches with their current cash balances
func (h *BranchHandler) ListBranches(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.branchService.List()))
}

// AddBranch creates a new branch with a zero balance
func (h *BranchHandler) AddBranch(c *gin.Context) {
	var req service.AddBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	branch, err := h.branchService.Add(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, branch))
}

// DeleteBranch removes a branch
func (h *BranchHandler) DeleteBranch(c *gin.Context) {
	if err := h.branchService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "branch deleted"))
}

// Transfer moves cash between two branch balances
func (h *BranchHandler) Transfer(c *gin.Context) {
	var req service.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	_, name, _ := middleware.Identity(c)
	if err := h.branchService.Transfer(c.Request.Context(), name, req); err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "transfer recorded"))
}
