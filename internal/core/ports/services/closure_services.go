package services

import (
	"context"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
)

// ClosureSvc closes meetings and series and resolves their open points.
type ClosureSvc interface {
	// CloseEntity runs one closure atomically. It fails with ErrForbidden,
	// ErrAlreadyClosed, ErrInvalidTarget, ErrNotFound, ErrValidation or
	// ErrPersistence, and never leaves partial writes behind.
	CloseEntity(ctx context.Context, userID string, req domain.ClosureRequest) (*domain.ClosureResult, error)
}

// ClosureDiscoverySvc provides the read-only helpers shown before a close.
type ClosureDiscoverySvc interface {
	// ListCloseTargets lists open meetings and series a closing entity's points may move to.
	// The list is advisory; CloseEntity re-validates the chosen target.
	ListCloseTargets(ctx context.Context, userID string, ref domain.EntityRef) (*domain.OpenEntities, error)

	// GetClosurePreview reports how many open points a close would affect.
	GetClosurePreview(ctx context.Context, userID string, ref domain.EntityRef) (*domain.ClosurePreview, error)
}

// ClosureSvcFacade combines all closure-related service interfaces.
type ClosureSvcFacade interface {
	ClosureSvc
	ClosureDiscoverySvc
}
