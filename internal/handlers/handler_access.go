package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
	portssvc "github.com/Abdulhamidsa/BimCall-sub002/internal/core/ports/services"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/dto"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/middleware"
)

// accessHandler handles HTTP requests related to permissions and project memberships.
type accessHandler struct {
	accessService portssvc.AccessSvcFacade
}

// newAccessHandler creates a new accessHandler.
func newAccessHandler(as portssvc.AccessSvcFacade) *accessHandler {
	return &accessHandler{
		accessService: as,
	}
}

// registerAccessRoutes registers permission and membership routes.
func registerAccessRoutes(rg *gin.RouterGroup, accessService portssvc.AccessSvcFacade) {
	h := newAccessHandler(accessService)

	rg.GET("/me/permissions", h.getMyPermissions)
	rg.POST("/permissions/check", h.checkPermission)

	projects := rg.Group("/projects/:projectID")
	{
		projects.GET("/permissions", h.getProjectPermissions)
		projects.PUT("/members/:userID", h.assignProjectRole)
		projects.DELETE("/members/:userID", h.removeProjectRole)
	}
}

// getMyPermissions godoc
// @Summary Get the caller's permission snapshot
// @Description Returns the flat global-scope permission map used to gate UI controls. Advisory only; every mutation re-checks on the server.
// @Tags permissions
// @Produce  json
// @Success 200 {object} dto.PermissionsResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Unknown user"
// @Failure 503 {object} dto.ErrorResponse "Role store unavailable"
// @Security BearerAuth
// @Router /me/permissions [get]
func (h *accessHandler) getMyPermissions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	perms, err := h.accessService.GetPermissions(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to resolve permissions")
		return
	}

	c.JSON(http.StatusOK, dto.ToPermissionsResponse(userID, perms))
}

// getProjectPermissions godoc
// @Summary Get the caller's permissions inside a project
// @Description Lists the project actions the caller holds through their project role. BIM managers hold every action.
// @Tags permissions
// @Produce  json
// @Param   projectID path string true "Project ID"
// @Success 200 {object} dto.ProjectPermissionsResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Unknown user"
// @Failure 503 {object} dto.ErrorResponse "Role store unavailable"
// @Security BearerAuth
// @Router /projects/{projectID}/permissions [get]
func (h *accessHandler) getProjectPermissions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	projectID := c.Param("projectID")

	perms, err := h.accessService.GetProjectPermissions(c.Request.Context(), userID, projectID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("project_id", projectID)), err, "Failed to resolve project permissions")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectPermissionsResponse(perms))
}

// checkPermission godoc
// @Summary Check one action
// @Description Decides whether the caller may perform an action, optionally inside a project.
// @Tags permissions
// @Accept  json
// @Produce  json
// @Param   request body dto.CheckPermissionRequest true "Action and optional project"
// @Success 200 {object} dto.CheckPermissionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 503 {object} dto.ErrorResponse "Role store unavailable"
// @Security BearerAuth
// @Router /permissions/check [post]
func (h *accessHandler) checkPermission(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CheckPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CheckPermission", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	action, err := domain.ParsePermissionAction(req.Action)
	if err != nil {
		respondWithError(c, logger, err, "Invalid action")
		return
	}

	allowed, err := h.accessService.CheckPermission(c.Request.Context(), userID, action, req.ProjectID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to check permission")
		return
	}

	c.JSON(http.StatusOK, dto.CheckPermissionResponse{Action: string(action), ProjectID: req.ProjectID, Allowed: allowed})
}

// assignProjectRole godoc
// @Summary Assign a project role
// @Description Sets a user's role on a project. Requires users:manage (globally or for the user's company) or projects:edit on the project.
// @Tags projects
// @Accept  json
// @Produce  json
// @Param   projectID path string true "Project ID"
// @Param   userID path string true "User ID"
// @Param   request body dto.AssignProjectRoleRequest true "Project role"
// @Success 200 {object} dto.ProjectMemberResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 503 {object} dto.ErrorResponse "Store unavailable, retry"
// @Security BearerAuth
// @Router /projects/{projectID}/members/{userID} [put]
func (h *accessHandler) assignProjectRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AssignProjectRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AssignProjectRole", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	requestingUserID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	projectID, targetUserID := c.Param("projectID"), c.Param("userID")

	role, err := domain.ParseProjectRole(req.Role)
	if err != nil {
		respondWithError(c, logger, err, "Invalid role")
		return
	}

	logger = logger.With(
		slog.String("project_id", projectID),
		slog.String("target_user_id", targetUserID))
	logger.Info("Received request to assign project role", slog.String("role", string(role)))

	member, err := h.accessService.AssignProjectRole(c.Request.Context(), requestingUserID, targetUserID, projectID, role)
	if err != nil {
		respondWithError(c, logger, err, "Failed to assign project role")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectMemberResponse(member))
}

// removeProjectRole godoc
// @Summary Remove a project membership
// @Description Removes a user's role on a project. Same authorization as assigning.
// @Tags projects
// @Param   projectID path string true "Project ID"
// @Param   userID path string true "User ID"
// @Success 204 "No Content"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Membership not found"
// @Failure 503 {object} dto.ErrorResponse "Store unavailable, retry"
// @Security BearerAuth
// @Router /projects/{projectID}/members/{userID} [delete]
func (h *accessHandler) removeProjectRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requestingUserID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	projectID, targetUserID := c.Param("projectID"), c.Param("userID")
	logger = logger.With(
		slog.String("project_id", projectID),
		slog.String("target_user_id", targetUserID))

	if err := h.accessService.RemoveProjectRole(c.Request.Context(), requestingUserID, targetUserID, projectID); err != nil {
		respondWithError(c, logger, err, "Failed to remove project role")
		return
	}

	logger.Info("Project role removed")
	c.Status(http.StatusNoContent)
}
