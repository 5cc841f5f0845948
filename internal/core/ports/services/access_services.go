package services

import (
	"context"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
)

// ActorProviderSvc resolves the authenticated caller.
type ActorProviderSvc interface {
	// GetActor returns the actor, served from the per-user cache when fresh.
	GetActor(ctx context.Context, userID string) (*domain.Actor, error)

	// LoadFreshActor bypasses the cache. Mutations authorize against this.
	LoadFreshActor(ctx context.Context, userID string) (*domain.Actor, error)

	// InvalidateActor drops a cached actor after its memberships changed.
	InvalidateActor(userID string)
}

// PermissionReaderSvc exposes the advisory permission snapshots and server-side checks.
type PermissionReaderSvc interface {
	// GetPermissions returns the global-scope snapshot used for UI gating.
	GetPermissions(ctx context.Context, userID string) (*domain.Permissions, error)

	// GetProjectPermissions lists what the user may do inside one project.
	GetProjectPermissions(ctx context.Context, userID, projectID string) (*domain.ProjectPermissions, error)

	// CheckPermission decides one action, optionally scoped to a project.
	CheckPermission(ctx context.Context, userID string, action domain.PermissionAction, projectID *string) (bool, error)
}

// ProjectMembershipSvc manages project role assignments.
type ProjectMembershipSvc interface {
	AssignProjectRole(ctx context.Context, requestingUserID, targetUserID, projectID string, role domain.ProjectRole) (*domain.ProjectMember, error)
	RemoveProjectRole(ctx context.Context, requestingUserID, targetUserID, projectID string) error
}

// AccessSvcFacade combines all access-related service interfaces.
type AccessSvcFacade interface {
	ActorProviderSvc
	PermissionReaderSvc
	ProjectMembershipSvc
}
