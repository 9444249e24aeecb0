package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/printq/internal/app/models/dto"
	"github.com/yigit/printq/internal/app/services"
	"github.com/yigit/printq/internal/middleware"
)

// UserController handles account profile operations
type UserController struct {
	userService services.UserService
	logger      zerolog.Logger
}

// NewUserController creates a new user controller
func NewUserController(userService services.UserService, logger zerolog.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// GetProfile returns the caller's own account
// @Summary Get my profile
// @Description Returns the student record, including wallet and counters, or the administrator record
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Student} "Profile"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Router /users/me [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	principal, ok := middleware.RequirePrincipal(ctx)
	if !ok {
		return
	}

	if principal.IsAdmin() {
		admin, err := c.userService.GetAdmin(ctx.Request.Context(), principal.ID)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(admin, ""))
		return
	}

	student, err := c.userService.GetStudent(ctx.Request.Context(), principal.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, ""))
}

// UpdatePreferences changes the caller's preferences
// @Summary Update my preferences
// @Description Only the provided toggles change
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdatePreferencesRequest true "Preference toggles"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Updated profile"
// @Failure 400 {object} dto.ErrorResponse "Nothing to update"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Students only"
// @Router /users/me/preferences [patch]
func (c *UserController) UpdatePreferences(ctx *gin.Context) {
	principal, ok := middleware.RequirePrincipal(ctx)
	if !ok {
		return
	}

	var req dto.UpdatePreferencesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	student, err := c.userService.UpdatePreferences(ctx.Request.Context(), principal.ID, req.ToUpdate())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, "Preferences updated"))
}

// ListUsers lists every student and administrator
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UsersResponse} "Accounts, newest first"
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Router /admin/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	students, err := c.userService.ListStudents(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	admins, err := c.userService.ListAdmins(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.UsersResponse{Students: students, Admins: admins}, ""))
}

// GetStudent returns one student
// @Summary Get a student
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student"
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID"
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /admin/users/students/{id} [get]
func (c *UserController) GetStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	student, err := c.userService.GetStudent(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, ""))
}
