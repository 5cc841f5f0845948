package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/apperrors"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/authz"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
	portsrepo "github.com/Abdulhamidsa/BimCall-sub002/internal/core/ports/repositories"
	portssvc "github.com/Abdulhamidsa/BimCall-sub002/internal/core/ports/services"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/platform/metrics"
)

// accessService resolves actors and answers permission questions.
type accessService struct {
	BaseService
	roleRepo portsrepo.RoleRepositoryFacade
	engine   *authz.Engine
	cache    *expirable.LRU[string, *domain.Actor]
	metrics  *metrics.Metrics
	clock    Clock
}

// AccessServiceOption configures an access service.
type AccessServiceOption func(*accessService)

// WithActorCache caches loaded actors per user for ttl, keeping at most size entries.
func WithActorCache(size int, ttl time.Duration) AccessServiceOption {
	return func(s *accessService) {
		if size > 0 && ttl > 0 {
			s.cache = expirable.NewLRU[string, *domain.Actor](size, nil, ttl)
		}
	}
}

// WithAccessMetrics records decisions and cache lookups on m.
func WithAccessMetrics(m *metrics.Metrics) AccessServiceOption {
	return func(s *accessService) {
		s.metrics = m
	}
}

// WithAccessClock overrides the clock used for membership audit fields.
func WithAccessClock(c Clock) AccessServiceOption {
	return func(s *accessService) {
		s.clock = c
	}
}

// NewAccessService creates an access service over the role store.
func NewAccessService(roleRepo portsrepo.RoleRepositoryFacade, engine *authz.Engine, opts ...AccessServiceOption) portssvc.AccessSvcFacade {
	s := &accessService{
		roleRepo: roleRepo,
		engine:   engine,
		clock:    systemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.AccessSvcFacade = (*accessService)(nil)

// GetActor returns the cached actor or loads it from the role store.
func (s *accessService) GetActor(ctx context.Context, userID string) (*domain.Actor, error) {
	if s.cache != nil {
		if actor, ok := s.cache.Get(userID); ok {
			s.metrics.CacheLookup(true)
			return actor, nil
		}
		s.metrics.CacheLookup(false)
	}
	return s.LoadFreshActor(ctx, userID)
}

// LoadFreshActor always reads the role store and refreshes the cache.
func (s *accessService) LoadFreshActor(ctx context.Context, userID string) (*domain.Actor, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", apperrors.ErrValidation)
	}

	actor, err := s.roleRepo.LoadActor(ctx, userID)
	if err != nil {
		return nil, s.actorLoadError(ctx, userID, err)
	}

	if s.cache != nil {
		s.cache.Add(userID, actor)
	}
	return actor, nil
}

// actorLoadError classifies a role store failure. Corrupt role data fails closed
// as an internal error; everything else from the store is retryable.
func (s *accessService) actorLoadError(ctx context.Context, userID string, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return err
	case errors.Is(err, apperrors.ErrValidation):
		s.LogError(ctx, err, "Stored roles for user are invalid", slog.String("user_id", userID))
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to resolve user roles", err)
	default:
		s.LogError(ctx, err, "Failed to load actor", slog.String("user_id", userID))
		return apperrors.NewPersistenceError("failed to load user roles", err)
	}
}

// InvalidateActor drops the cached actor of userID.
func (s *accessService) InvalidateActor(userID string) {
	if s.cache != nil {
		s.cache.Remove(userID)
	}
}

// requester resolves the caller. An authenticated subject without a user row has no roles.
func (s *accessService) requester(ctx context.Context, userID string, fresh bool) (*domain.Actor, error) {
	var (
		actor *domain.Actor
		err   error
	)
	if fresh {
		actor, err = s.LoadFreshActor(ctx, userID)
	} else {
		actor, err = s.GetActor(ctx, userID)
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		s.LogWarn(ctx, "Authenticated user has no roles", slog.String("user_id", userID))
		return nil, fmt.Errorf("%w: unknown user", apperrors.ErrForbidden)
	}
	return actor, err
}

// GetPermissions returns the global-scope snapshot for the caller.
func (s *accessService) GetPermissions(ctx context.Context, userID string) (*domain.Permissions, error) {
	actor, err := s.requester(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	perms := s.engine.ResolveGlobalPermissions(actor)
	return &perms, nil
}

// GetProjectPermissions lists what the caller may do inside projectID.
func (s *accessService) GetProjectPermissions(ctx context.Context, userID, projectID string) (*domain.ProjectPermissions, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("%w: project id is required", apperrors.ErrValidation)
	}
	actor, err := s.requester(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	out := &domain.ProjectPermissions{
		ProjectID:      projectID,
		CanAccess:      s.engine.CanAccessProject(actor, &projectID),
		AllowedActions: s.engine.AllowedProjectActions(actor, projectID),
	}
	if role, ok := actor.ProjectRole(projectID); ok {
		out.Role = &role
	}
	return out, nil
}

// CheckPermission decides one action for the caller.
func (s *accessService) CheckPermission(ctx context.Context, userID string, action domain.PermissionAction, projectID *string) (bool, error) {
	actor, err := s.requester(ctx, userID, false)
	if err != nil {
		return false, err
	}

	allowed := s.engine.CheckPermission(actor, action, projectID)
	s.metrics.Decision(allowed)

	project := ""
	if projectID != nil {
		project = *projectID
	}
	s.LogDebug(ctx, "Permission checked",
		slog.String("user_id", userID),
		slog.String("action", string(action)),
		slog.String("project_id", project),
		slog.Bool("allowed", allowed))
	return allowed, nil
}

// canManageMembers applies the membership rule: users:manage globally or in the
// target's company, or projects:edit on the project itself.
func (s *accessService) canManageMembers(requester, target *domain.Actor, projectID string) bool {
	if s.engine.CheckPermission(requester, domain.ActionUsersManage, nil) {
		return true
	}
	if target.CompanyID != nil && s.engine.HasCompanyPermission(requester, domain.ActionUsersManage, *target.CompanyID) {
		return true
	}
	return s.engine.HasProjectPermission(requester, domain.ActionProjectsEdit, &projectID)
}

func (s *accessService) authorizeMembershipChange(ctx context.Context, requestingUserID, targetUserID, projectID string) error {
	if strings.TrimSpace(projectID) == "" || strings.TrimSpace(targetUserID) == "" {
		return fmt.Errorf("%w: project id and user id are required", apperrors.ErrValidation)
	}

	requester, err := s.requester(ctx, requestingUserID, true)
	if err != nil {
		return err
	}
	target, err := s.LoadFreshActor(ctx, targetUserID)
	if err != nil {
		return err
	}

	allowed := s.canManageMembers(requester, target, projectID)
	s.metrics.Decision(allowed)
	if !allowed {
		s.LogWarn(ctx, "Membership change denied",
			slog.String("user_id", requestingUserID),
			slog.String("target_user_id", targetUserID),
			slog.String("project_id", projectID))
		return apperrors.ErrForbidden
	}
	return nil
}

// AssignProjectRole sets the target user's role on a project.
func (s *accessService) AssignProjectRole(ctx context.Context, requestingUserID, targetUserID, projectID string, role domain.ProjectRole) (*domain.ProjectMember, error) {
	if _, err := domain.ParseProjectRole(string(role)); err != nil {
		return nil, err
	}
	if err := s.authorizeMembershipChange(ctx, requestingUserID, targetUserID, projectID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	member := domain.ProjectMember{
		ProjectID: projectID,
		UserID:    targetUserID,
		Role:      role,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}
	if err := s.roleRepo.UpsertProjectMember(ctx, member); err != nil {
		s.LogError(ctx, err, "Failed to save project member",
			slog.String("project_id", projectID),
			slog.String("target_user_id", targetUserID))
		return nil, apperrors.NewPersistenceError("failed to save project member", err)
	}
	s.InvalidateActor(targetUserID)

	s.LogInfo(ctx, "Project role assigned",
		slog.String("project_id", projectID),
		slog.String("target_user_id", targetUserID),
		slog.String("role", string(role)))
	return &member, nil
}

// RemoveProjectRole deletes the target user's membership of a project.
func (s *accessService) RemoveProjectRole(ctx context.Context, requestingUserID, targetUserID, projectID string) error {
	if err := s.authorizeMembershipChange(ctx, requestingUserID, targetUserID, projectID); err != nil {
		return err
	}

	if err := s.roleRepo.DeleteProjectMember(ctx, projectID, targetUserID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		s.LogError(ctx, err, "Failed to delete project member",
			slog.String("project_id", projectID),
			slog.String("target_user_id", targetUserID))
		return apperrors.NewPersistenceError("failed to delete project member", err)
	}
	s.InvalidateActor(targetUserID)

	s.LogInfo(ctx, "Project role removed",
		slog.String("project_id", projectID),
		slog.String("target_user_id", targetUserID))
	return nil
}
