package handler

import (
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

// NewUserHandler sets up the routing dependencies for User endpoints
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public routes
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)

	// Me route (authenticated — any valid token)
	router.GET("/me", middleware.AnyStaff(), h.GetMe)

	users := router.Group("/api/users")
	{
		users.GET("", middleware.RequireRole(model.RoleAdmin), h.ListUsers)
		users.POST("/manage", middleware.RequireRole(model.RoleAdmin), h.ManageUser)
		users.GET("/:id/logs", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.UserLogs)
	}
}

// Login authenticates against the remote sheet, falling back to cached
// credentials when the network is down, and sets the token cookie.
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	loginRes, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	middleware.SetTokenCookie(c, loginRes.Token)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, loginRes))
}

// Logout clears the token cookie
func (h *UserHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c)
	c.JSON(http.StatusOK, response.Message(http.StatusOK, "logged out"))
}

// GetMe returns the authenticated user's identity from the token claims
func (h *UserHandler) GetMe(c *gin.Context) {
	id, name, role := middleware.Identity(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"id":       id,
		"name":     name,
		"role":     role,
		"branchId": c.GetString("branchID"),
	}))
}

// ListUsers returns all users without password material
func (h *UserHandler) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.userService.ListUsers()))
}

// ManageUser adds, updates, or deletes a user depending on the op field
func (h *UserHandler) ManageUser(c *gin.Context) {
	var body struct {
		Op string `json:"op" binding:"required,oneof=add update delete"`
		service.ManageUserRequest
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.userService.ManageUser(c.Request.Context(), body.Op, body.ManageUserRequest); err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "user "+body.Op+" applied"))
}

// UserLogs returns the remote audit trail for a single user
func (h *UserHandler) UserLogs(c *gin.Context) {
	logs, err := h.userService.UserLogs(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), response.Error(statusFor(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, logs))
}
