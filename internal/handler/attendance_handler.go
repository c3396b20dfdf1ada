package handler

import (
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct {
	attendanceService service.AttendanceService
}

func NewAttendanceHandler(attendanceService service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

func (h *AttendanceHandler) RegisterRoutes(router *gin.RouterGroup) {
	attendance := router.Group("/api/attendance")
	{
		attendance.POST("", middleware.AnyStaff(), h.Record)
		attendance.GET("/state", middleware.AnyStaff(), h.State)
		attendance.GET("/report", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.HRReport)
	}
}

// Record registers a check-in or check-out for the authenticated user
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req service.AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	id, name, _ := middleware.Identity(c)
	record, err := h.attendanceService.Record(c.Request.Context(), id, name, c.GetString("branchID"), req)
	if err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, record))
}

// State reports whether the caller is currently checked in today
func (h *AttendanceHandler) State(c *gin.Context) {
	id, _, _ := middleware.Identity(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.attendanceService.State(id)))
}

// HRReport returns aggregated attendance rows for a date range
func (h *AttendanceHandler) HRReport(c *gin.Context) {
	report, err := h.attendanceService.HRReport(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}
