package repositories

import (
	"context"
	"time"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
)

// MeetingReader defines read operations for meetings, series and their points.
// Reads are unlocked and may race with a concurrent closure.
type MeetingReader interface {
	// FindEntity returns the closable view of a meeting or series, or ErrNotFound.
	FindEntity(ctx context.Context, ref domain.EntityRef) (*domain.Entity, error)

	// FindOpenPoints returns the points owned by ref whose status is not closed.
	FindOpenPoints(ctx context.Context, ref domain.EntityRef) ([]domain.Point, error)

	// ListOpenEntitiesInProject lists every open meeting and series sharing
	// projectID, excluding one entity. A nil projectID selects project-less entities.
	ListOpenEntitiesInProject(ctx context.Context, projectID *string, exclude domain.EntityRef) (*domain.OpenEntities, error)

	// FindSeriesOccurrences returns the recurrence rows of a series, oldest first.
	FindSeriesOccurrences(ctx context.Context, seriesID string) ([]domain.MeetingOccurrence, error)
}

// MeetingWriter defines write operations used to seed and maintain meeting data.
type MeetingWriter interface {
	SaveMeeting(ctx context.Context, meeting domain.Meeting) error
	SaveSeries(ctx context.Context, series domain.MeetingSeries) error
	SavePoint(ctx context.Context, point domain.Point) error
}

// ClosureTx is the transactional view the closure workflow mutates through.
// Lock* reads hold the returned rows until the transaction ends.
type ClosureTx interface {
	// LockEntity reads and locks a meeting or series row, or returns ErrNotFound.
	LockEntity(ctx context.Context, ref domain.EntityRef) (*domain.Entity, error)

	// LockOpenPoints reads and locks the open points owned by ref.
	LockOpenPoints(ctx context.Context, ref domain.EntityRef) ([]domain.Point, error)

	// ClosePoints sets the given points to closed, leaving their owner unchanged.
	ClosePoints(ctx context.Context, pointIDs []string, at time.Time, by string) (int, error)

	// ReassignPoints moves the given points to a new owner, clearing the old owner key.
	ReassignPoints(ctx context.Context, pointIDs []string, to domain.PointOwner, at time.Time, by string) (int, error)

	// MarkEntityClosed sets status=closed and closed_at on an open meeting or series.
	MarkEntityClosed(ctx context.Context, ref domain.EntityRef, closedAt time.Time, by string) error
}

// MeetingRepositoryFacade combines all meeting-related repository interfaces.
type MeetingRepositoryFacade interface {
	MeetingReader
	MeetingWriter
}

// MeetingRepositoryWithTx extends MeetingRepositoryFacade with transaction capabilities.
type MeetingRepositoryWithTx interface {
	MeetingRepositoryFacade
	TransactionManager
}
