package repositories

import (
	"context"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
)

// RoleReader assembles actors from persisted membership rows.
type RoleReader interface {
	// LoadActor returns the user with every role source attached, or ErrNotFound.
	// A stored role identifier outside the catalog is an error, never skipped.
	LoadActor(ctx context.Context, userID string) (*domain.Actor, error)
}

// RoleWriter defines membership mutations.
type RoleWriter interface {
	// SaveActor persists a user together with its global and company roles and
	// project memberships, replacing what was stored before.
	SaveActor(ctx context.Context, actor domain.Actor) error

	// UpsertProjectMember sets the user's single role on a project.
	UpsertProjectMember(ctx context.Context, member domain.ProjectMember) error

	// DeleteProjectMember removes a membership. ErrNotFound if there was none.
	DeleteProjectMember(ctx context.Context, projectID, userID string) error
}

// RoleRepositoryFacade combines all role repository interfaces.
type RoleRepositoryFacade interface {
	RoleReader
	RoleWriter
}
