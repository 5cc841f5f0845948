package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/apperrors"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
	portssvc "github.com/Abdulhamidsa/BimCall-sub002/internal/core/ports/services"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/dto"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/middleware"
)

// entityPaths maps the collection segment of a URL to an entity type.
var entityPaths = map[string]domain.EntityType{
	"meetings": domain.EntityMeeting,
	"series":   domain.EntitySeries,
}

// closureHandler handles HTTP requests related to closing meetings and series.
type closureHandler struct {
	closureService portssvc.ClosureSvcFacade
}

// newClosureHandler creates a new closureHandler.
func newClosureHandler(cs portssvc.ClosureSvcFacade) *closureHandler {
	return &closureHandler{
		closureService: cs,
	}
}

// registerClosureRoutes registers the close routes for both meetings and series.
func registerClosureRoutes(rg *gin.RouterGroup, closureService portssvc.ClosureSvcFacade) {
	h := newClosureHandler(closureService)

	for segment, t := range entityPaths {
		entity := rg.Group("/"+segment+"/:entityID", withEntityType(t))
		{
			entity.GET("/close-targets", h.listCloseTargets)
			entity.GET("/close-preview", h.getClosurePreview)
			entity.POST("/close", h.closeEntity)
		}
	}
}

const entityTypeKey = "entityType"

// withEntityType records which collection the route belongs to.
func withEntityType(t domain.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(entityTypeKey, t)
		c.Next()
	}
}

// entityRef builds the reference from the route's collection and path parameter.
func entityRef(c *gin.Context) (domain.EntityRef, error) {
	v, _ := c.Get(entityTypeKey)
	t, ok := v.(domain.EntityType)
	if !ok {
		return domain.EntityRef{}, fmt.Errorf("%w: unknown entity collection", apperrors.ErrValidation)
	}
	return domain.EntityRef{Type: t, ID: c.Param("entityID")}, nil
}

// closeEntity godoc
// @Summary Close a meeting or series
// @Description Closes the entity and resolves every open point it owns in one transaction: mode=close closes them, mode=move re-owns them to an open target in the same project. Without open points the mode is irrelevant and no target is needed.
// @Tags closure
// @Accept  json
// @Produce  json
// @Param   entityType path string true "meetings or series" Enums(meetings, series)
// @Param   entityID path string true "Meeting or series ID"
// @Param   request body dto.CloseEntityRequest true "Closure decision"
// @Success 200 {object} dto.ClosureResultResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or invalid target"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Entity or target not found"
// @Failure 409 {object} dto.ErrorResponse "Already closed"
// @Failure 503 {object} dto.ErrorResponse "Nothing was applied, retry"
// @Security BearerAuth
// @Router /{entityType}/{entityID}/close [post]
func (h *closureHandler) closeEntity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CloseEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CloseEntity", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	ref, err := entityRef(c)
	if err != nil {
		respondWithError(c, logger, err, "Invalid entity")
		return
	}

	logger = logger.With(slog.String("entity", ref.String()), slog.String("mode", req.Mode))
	logger.Info("Received request to close entity")

	result, err := h.closureService.CloseEntity(c.Request.Context(), userID, req.ToClosureRequest(ref))
	if err != nil {
		respondWithError(c, logger, err, "Failed to close "+string(ref.Type))
		return
	}

	c.JSON(http.StatusOK, dto.ToClosureResultResponse(result))
}

// listCloseTargets godoc
// @Summary List move targets
// @Description Lists the open meetings and series in the same project that open points may be moved to. The entity itself is excluded.
// @Tags closure
// @Produce  json
// @Param   entityType path string true "meetings or series" Enums(meetings, series)
// @Param   entityID path string true "Meeting or series ID"
// @Success 200 {object} dto.CloseTargetsResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Entity not found"
// @Failure 503 {object} dto.ErrorResponse "Store unavailable, retry"
// @Security BearerAuth
// @Router /{entityType}/{entityID}/close-targets [get]
func (h *closureHandler) listCloseTargets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	ref, err := entityRef(c)
	if err != nil {
		respondWithError(c, logger, err, "Invalid entity")
		return
	}

	targets, err := h.closureService.ListCloseTargets(c.Request.Context(), userID, ref)
	if err != nil {
		respondWithError(c, logger.With(slog.String("entity", ref.String())), err, "Failed to list close targets")
		return
	}

	c.JSON(http.StatusOK, dto.ToCloseTargetsResponse(targets))
}

// getClosurePreview godoc
// @Summary Preview a close
// @Description Reports the number of open points and whether the caller must choose between closing and moving them.
// @Tags closure
// @Produce  json
// @Param   entityType path string true "meetings or series" Enums(meetings, series)
// @Param   entityID path string true "Meeting or series ID"
// @Success 200 {object} dto.ClosurePreviewResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Entity not found"
// @Failure 503 {object} dto.ErrorResponse "Store unavailable, retry"
// @Security BearerAuth
// @Router /{entityType}/{entityID}/close-preview [get]
func (h *closureHandler) getClosurePreview(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	ref, err := entityRef(c)
	if err != nil {
		respondWithError(c, logger, err, "Invalid entity")
		return
	}

	preview, err := h.closureService.GetClosurePreview(c.Request.Context(), userID, ref)
	if err != nil {
		respondWithError(c, logger.With(slog.String("entity", ref.String())), err, "Failed to preview closure")
		return
	}

	c.JSON(http.StatusOK, dto.ToClosurePreviewResponse(preview))
}
