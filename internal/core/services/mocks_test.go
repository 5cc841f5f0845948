package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
	portsrepo "github.com/Abdulhamidsa/BimCall-sub002/internal/core/ports/repositories"
	portssvc "github.com/Abdulhamidsa/BimCall-sub002/internal/core/ports/services"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func strPtr(s string) *string { return &s }

// --- Mock RoleRepository ---
type MockRoleRepository struct {
	mock.Mock
}

var _ portsrepo.RoleRepositoryFacade = (*MockRoleRepository)(nil)

func (m *MockRoleRepository) LoadActor(ctx context.Context, userID string) (*domain.Actor, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Actor), args.Error(1)
}

func (m *MockRoleRepository) SaveActor(ctx context.Context, actor domain.Actor) error {
	args := m.Called(ctx, actor)
	return args.Error(0)
}

func (m *MockRoleRepository) UpsertProjectMember(ctx context.Context, member domain.ProjectMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockRoleRepository) DeleteProjectMember(ctx context.Context, projectID, userID string) error {
	args := m.Called(ctx, projectID, userID)
	return args.Error(0)
}

// --- Mock ActorProvider ---
type MockActorProvider struct {
	mock.Mock
}

var _ portssvc.ActorProviderSvc = (*MockActorProvider)(nil)

func (m *MockActorProvider) GetActor(ctx context.Context, userID string) (*domain.Actor, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Actor), args.Error(1)
}

func (m *MockActorProvider) LoadFreshActor(ctx context.Context, userID string) (*domain.Actor, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Actor), args.Error(1)
}

func (m *MockActorProvider) InvalidateActor(userID string) {
	m.Called(userID)
}

// --- Mock MeetingRepository ---
// WithinTx hands Tx to the callback. Return(beginErr, commitErr).
type MockMeetingRepository struct {
	mock.Mock
	Tx *MockClosureTx
}

var _ portsrepo.MeetingRepositoryWithTx = (*MockMeetingRepository)(nil)

func (m *MockMeetingRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.ClosureTx) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	if err := fn(ctx, m.Tx); err != nil {
		return err
	}
	return args.Error(1)
}

func (m *MockMeetingRepository) FindEntity(ctx context.Context, ref domain.EntityRef) (*domain.Entity, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entity), args.Error(1)
}

func (m *MockMeetingRepository) FindOpenPoints(ctx context.Context, ref domain.EntityRef) ([]domain.Point, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Point), args.Error(1)
}

func (m *MockMeetingRepository) ListOpenEntitiesInProject(ctx context.Context, projectID *string, exclude domain.EntityRef) (*domain.OpenEntities, error) {
	args := m.Called(ctx, projectID, exclude)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OpenEntities), args.Error(1)
}

func (m *MockMeetingRepository) FindSeriesOccurrences(ctx context.Context, seriesID string) ([]domain.MeetingOccurrence, error) {
	args := m.Called(ctx, seriesID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MeetingOccurrence), args.Error(1)
}

func (m *MockMeetingRepository) SaveMeeting(ctx context.Context, meeting domain.Meeting) error {
	return m.Called(ctx, meeting).Error(0)
}

func (m *MockMeetingRepository) SaveSeries(ctx context.Context, series domain.MeetingSeries) error {
	return m.Called(ctx, series).Error(0)
}

func (m *MockMeetingRepository) SavePoint(ctx context.Context, point domain.Point) error {
	return m.Called(ctx, point).Error(0)
}

// --- Mock ClosureTx ---
type MockClosureTx struct {
	mock.Mock
}

var _ portsrepo.ClosureTx = (*MockClosureTx)(nil)

func (m *MockClosureTx) LockEntity(ctx context.Context, ref domain.EntityRef) (*domain.Entity, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entity), args.Error(1)
}

func (m *MockClosureTx) LockOpenPoints(ctx context.Context, ref domain.EntityRef) ([]domain.Point, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Point), args.Error(1)
}

func (m *MockClosureTx) ClosePoints(ctx context.Context, pointIDs []string, at time.Time, by string) (int, error) {
	args := m.Called(ctx, pointIDs, at, by)
	return args.Int(0), args.Error(1)
}

func (m *MockClosureTx) ReassignPoints(ctx context.Context, pointIDs []string, to domain.PointOwner, at time.Time, by string) (int, error) {
	args := m.Called(ctx, pointIDs, to, at, by)
	return args.Int(0), args.Error(1)
}

func (m *MockClosureTx) MarkEntityClosed(ctx context.Context, ref domain.EntityRef, closedAt time.Time, by string) error {
	return m.Called(ctx, ref, closedAt, by).Error(0)
}
