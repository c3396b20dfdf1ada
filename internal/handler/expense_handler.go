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

type ExpenseHandler struct {
	expenseService service.ExpenseService
}

func NewExpenseHandler(expenseService service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

func (h *ExpenseHandler) RegisterRoutes(router *gin.RouterGroup) {
	expenses := router.Group("/api/expenses")
	{
		expenses.GET("", middleware.AnyStaff(), h.ListExpenses)
		expenses.POST("", middleware.AnyStaff(), h.CreateExpense)
		expenses.DELETE("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.DeleteExpense)
	}
}

// ListExpenses returns expenses visible to the caller's branch, newest first
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	branch := middleware.BranchScope(c)
	expenses := h.expenseService.List(branch)

	page := pagination.Slice(expenses, pagination.Parse(c))
	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

// CreateExpense records a new expense debited from the branch balance
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req service.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	_, name, _ := middleware.Identity(c)
	if assigned := c.GetString("branchID"); assigned != "" {
		req.BranchID = assigned
	}

	expense, err := h.expenseService.Create(c.Request.Context(), name, req)
	if err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}

// DeleteExpense removes an expense and credits its amount back to the branch
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	if err := h.expenseService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "expense deleted"))
}
