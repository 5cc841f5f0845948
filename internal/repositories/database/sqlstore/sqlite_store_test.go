package sqlstore_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/apperrors"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/authz"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
	portsrepo "github.com/Abdulhamidsa/BimCall-sub002/internal/core/ports/repositories"
	portssvc "github.com/Abdulhamidsa/BimCall-sub002/internal/core/ports/services"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/services"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/repositories/database/sqlstore"
	"github.com/Abdulhamidsa/BimCall-sub002/pkg/database"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func strPtr(s string) *string { return &s }

// SQLiteStoreTestSuite runs the closure workflow end to end against an
// in-memory SQLite store.
type SQLiteStoreTestSuite struct {
	suite.Suite
	ctx     context.Context
	db      *sql.DB
	repos   portsrepo.RepositoryProvider
	access  portssvc.AccessSvcFacade
	closure portssvc.ClosureSvcFacade
	now     time.Time
}

func TestSQLiteStoreTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreTestSuite))
}

func (s *SQLiteStoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(s.T().Name())
	db, err := database.OpenSQLiteInMemory(s.ctx, name)
	s.Require().NoError(err)
	s.db = db

	s.repos = sqlstore.NewRepositoryProvider(db, sqlstore.SQLite)
	engine := authz.NewEngine(nil)
	s.access = services.NewAccessService(s.repos.RoleRepo, engine)
	s.closure = services.NewClosureService(s.repos.MeetingRepo, s.access, engine,
		services.WithClosureClock(fixedClock{t: s.now}))

	s.seed()
}

func (s *SQLiteStoreTestSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

func (s *SQLiteStoreTestSuite) audit() domain.AuditFields {
	created := s.now.Add(-48 * time.Hour)
	return domain.AuditFields{CreatedAt: created, CreatedBy: "seed", LastUpdatedAt: created, LastUpdatedBy: "seed"}
}

// seed builds project P1 with meeting M1 (3 open points, 1 closed), open
// series S1 and meeting M2, plus meeting X1 in project P2.
func (s *SQLiteStoreTestSuite) seed() {
	roles := s.repos.RoleRepo
	s.Require().NoError(roles.SaveActor(s.ctx, domain.Actor{
		UserID: "lead", Email: "lead@example.com",
		ProjectRoles: map[string]domain.ProjectRole{"P1": domain.ProjectLeader, "P2": domain.ProjectLeader},
	}))
	s.Require().NoError(roles.SaveActor(s.ctx, domain.Actor{
		UserID: "viewer", Email: "viewer@example.com",
		ProjectRoles: map[string]domain.ProjectRole{"P1": domain.ProjectViewer},
	}))

	meetings := s.repos.MeetingRepo
	for _, m := range []domain.Meeting{
		{MeetingID: "M1", ProjectID: strPtr("P1"), Title: "Coordination", Status: domain.StatusActive, AuditFields: s.audit()},
		{MeetingID: "M2", ProjectID: strPtr("P1"), Title: "Design review", Status: domain.StatusScheduled, AuditFields: s.audit()},
		{MeetingID: "X1", ProjectID: strPtr("P2"), Title: "Other project", Status: domain.StatusActive, AuditFields: s.audit()},
	} {
		s.Require().NoError(meetings.SaveMeeting(s.ctx, m))
	}
	s.Require().NoError(meetings.SaveSeries(s.ctx, domain.MeetingSeries{
		SeriesID: "S1", ProjectID: strPtr("P1"), Title: "Weekly BIM", Recurrence: "FREQ=WEEKLY",
		Status: domain.StatusActive, AuditFields: s.audit(),
		Occurrences: []domain.MeetingOccurrence{
			{OccurrenceID: "S1-1", OccursAt: s.now.Add(-7 * 24 * time.Hour)},
			{OccurrenceID: "S1-2", OccursAt: s.now},
		},
	}))

	for _, p := range []domain.Point{
		{PointID: "p1", Owner: domain.MeetingOwner("M1"), Title: "Clash A", Status: domain.PointNew},
		{PointID: "p2", Owner: domain.MeetingOwner("M1"), Title: "Clash B", Status: domain.PointOngoing},
		{PointID: "p3", Owner: domain.MeetingOwner("M1"), Title: "Clash C", Status: domain.PointPostponed},
		{PointID: "p4", Owner: domain.MeetingOwner("M1"), Title: "Done", Status: domain.PointClosed},
		{PointID: "s1", Owner: domain.SeriesOwner("S1"), Title: "Series item", Status: domain.PointOpen},
	} {
		p.AuditFields = s.audit()
		s.Require().NoError(meetings.SavePoint(s.ctx, p))
	}
}

type pointRow struct {
	meetingID, seriesID sql.NullString
	status              string
	closedAt            sql.NullString
}

func (s *SQLiteStoreTestSuite) point(id string) pointRow {
	var r pointRow
	err := s.db.QueryRowContext(s.ctx, `SELECT meeting_id, series_id, status, closed_at FROM points WHERE point_id = ?`, id).
		Scan(&r.meetingID, &r.seriesID, &r.status, &r.closedAt)
	s.Require().NoError(err)
	return r
}

func (s *SQLiteStoreTestSuite) entity(ref domain.EntityRef) *domain.Entity {
	e, err := s.repos.MeetingRepo.FindEntity(s.ctx, ref)
	s.Require().NoError(err)
	return e
}

var (
	m1 = domain.EntityRef{Type: domain.EntityMeeting, ID: "M1"}
	m2 = domain.EntityRef{Type: domain.EntityMeeting, ID: "M2"}
	x1 = domain.EntityRef{Type: domain.EntityMeeting, ID: "X1"}
	s1 = domain.EntityRef{Type: domain.EntitySeries, ID: "S1"}
)

func (s *SQLiteStoreTestSuite) TestCloseMode_ClosesOpenPointsOnly() {
	result, err := s.closure.CloseEntity(s.ctx, "lead", domain.ClosureRequest{Entity: m1, Mode: domain.ClosureModeClose})

	s.Require().NoError(err)
	s.Equal(3, result.AffectedPointCount)
	s.Equal(domain.StatusClosed, result.NewStatus)

	closed := s.entity(m1)
	s.Equal(domain.StatusClosed, closed.Status)
	s.Require().NotNil(closed.ClosedAt)
	s.True(s.now.Equal(*closed.ClosedAt))

	for _, id := range []string{"p1", "p2", "p3"} {
		row := s.point(id)
		s.Equal("closed", row.status, id)
		s.True(row.closedAt.Valid, id)
		s.Equal("M1", row.meetingID.String, id)
		s.False(row.seriesID.Valid, id)
	}
	// the point that was already closed keeps its original timestamp
	s.NotEqual(s.now.Format(time.RFC3339Nano), s.point("p4").closedAt.String)
}

func (s *SQLiteStoreTestSuite) TestMoveMode_ReassignsToSeries() {
	result, err := s.closure.CloseEntity(s.ctx, "lead", domain.ClosureRequest{Entity: m1, Mode: domain.ClosureModeMove, Target: &s1})

	s.Require().NoError(err)
	s.Equal(3, result.AffectedPointCount)
	s.Require().NotNil(result.Target)
	s.Equal(s1, *result.Target)

	for _, id := range []string{"p1", "p2", "p3"} {
		row := s.point(id)
		s.False(row.meetingID.Valid, id)
		s.Equal("S1", row.seriesID.String, id)
		s.NotEqual("closed", row.status, id)
		s.False(row.closedAt.Valid, id)
	}
	s.Equal("M1", s.point("p4").meetingID.String)
	s.Equal(domain.StatusActive, s.entity(s1).Status)

	open, err := s.repos.MeetingRepo.FindOpenPoints(s.ctx, s1)
	s.Require().NoError(err)
	s.Len(open, 4)
}

func (s *SQLiteStoreTestSuite) TestMoveSeriesToMeeting_LeavesOccurrences() {
	result, err := s.closure.CloseEntity(s.ctx, "lead", domain.ClosureRequest{Entity: s1, Mode: domain.ClosureModeMove, Target: &m2})

	s.Require().NoError(err)
	s.Equal(1, result.AffectedPointCount)
	row := s.point("s1")
	s.Equal("M2", row.meetingID.String)
	s.False(row.seriesID.Valid)

	occurrences, err := s.repos.MeetingRepo.FindSeriesOccurrences(s.ctx, "S1")
	s.Require().NoError(err)
	s.Len(occurrences, 2)
	s.Equal("S1-1", occurrences[0].OccurrenceID)
}

func (s *SQLiteStoreTestSuite) TestMoveToOtherProject_ChangesNothing() {
	_, err := s.closure.CloseEntity(s.ctx, "lead", domain.ClosureRequest{Entity: m1, Mode: domain.ClosureModeMove, Target: &x1})

	s.ErrorIs(err, apperrors.ErrInvalidTarget)
	s.Equal(domain.StatusActive, s.entity(m1).Status)
	s.Equal("M1", s.point("p1").meetingID.String)
}

func (s *SQLiteStoreTestSuite) TestProjectViewer_IsForbidden() {
	_, err := s.closure.CloseEntity(s.ctx, "viewer", domain.ClosureRequest{Entity: m1, Mode: domain.ClosureModeClose})

	s.ErrorIs(err, apperrors.ErrForbidden)
	s.Equal(domain.StatusActive, s.entity(m1).Status)
}

func (s *SQLiteStoreTestSuite) TestNoOpenPoints_ModeIsIrrelevant() {
	first, err := s.closure.CloseEntity(s.ctx, "lead", domain.ClosureRequest{Entity: m2, Mode: domain.ClosureModeMove})
	s.Require().NoError(err)
	s.Zero(first.AffectedPointCount)
	s.Nil(first.Target)

	_, err = s.closure.CloseEntity(s.ctx, "lead", domain.ClosureRequest{Entity: m2, Mode: domain.ClosureModeClose})
	s.ErrorIs(err, apperrors.ErrAlreadyClosed)
}

func (s *SQLiteStoreTestSuite) TestFailureAfterPointWrites_RollsBack() {
	_, err := s.db.ExecContext(s.ctx, `CREATE TRIGGER fail_close_m1 BEFORE UPDATE OF status ON meetings
		WHEN OLD.meeting_id = 'M1' AND NEW.status = 'closed'
		BEGIN SELECT RAISE(ABORT, 'disk full'); END`)
	s.Require().NoError(err)

	_, err = s.closure.CloseEntity(s.ctx, "lead", domain.ClosureRequest{Entity: m1, Mode: domain.ClosureModeMove, Target: &s1})

	s.Require().ErrorIs(err, apperrors.ErrPersistence)
	s.Equal(domain.StatusActive, s.entity(m1).Status)
	for _, id := range []string{"p1", "p2", "p3"} {
		row := s.point(id)
		s.Equal("M1", row.meetingID.String, id)
		s.False(row.seriesID.Valid, id)
	}
}

func (s *SQLiteStoreTestSuite) TestListCloseTargets() {
	targets, err := s.closure.ListCloseTargets(s.ctx, "lead", m1)

	s.Require().NoError(err)
	s.Require().Len(targets.Meetings, 1)
	s.Equal(m2, targets.Meetings[0].Ref)
	s.Require().Len(targets.Series, 1)
	s.Equal(s1, targets.Series[0].Ref)
}

func (s *SQLiteStoreTestSuite) TestGetClosurePreview() {
	preview, err := s.closure.GetClosurePreview(s.ctx, "lead", m1)

	s.Require().NoError(err)
	s.Equal(3, preview.OpenPointCount)
	s.True(preview.NeedsDecision)
	s.True(preview.CanClose)
}

func (s *SQLiteStoreTestSuite) TestLoadActor() {
	company := "C1"
	admin := domain.CompanyAdmin
	s.Require().NoError(s.repos.RoleRepo.SaveActor(s.ctx, domain.Actor{
		UserID: "u9", Email: "u9@example.com",
		GlobalRoles:  []domain.GlobalRole{domain.GlobalEngineer, domain.GlobalBimCoordinator},
		CompanyID:    &company,
		CompanyRole:  &admin,
		ProjectRoles: map[string]domain.ProjectRole{"P1": domain.ProjectEngineer},
	}))

	actor, err := s.repos.RoleRepo.LoadActor(s.ctx, "u9")

	s.Require().NoError(err)
	s.ElementsMatch([]domain.GlobalRole{domain.GlobalEngineer, domain.GlobalBimCoordinator}, actor.GlobalRoles)
	s.Equal("C1", *actor.CompanyID)
	s.Equal(domain.CompanyAdmin, *actor.CompanyRole)
	s.Equal(map[string]domain.ProjectRole{"P1": domain.ProjectEngineer}, actor.ProjectRoles)

	_, err = s.repos.RoleRepo.LoadActor(s.ctx, "nobody")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *SQLiteStoreTestSuite) TestLoadActor_UnknownStoredRoleFailsClosed() {
	_, err := s.db.ExecContext(s.ctx, `INSERT INTO user_global_roles (user_id, role) VALUES ('viewer', 'SUPERUSER')`)
	s.Require().NoError(err)

	_, err = s.repos.RoleRepo.LoadActor(s.ctx, "viewer")

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *SQLiteStoreTestSuite) TestProjectMembership() {
	roles := s.repos.RoleRepo
	member := domain.ProjectMember{ProjectID: "P3", UserID: "viewer", Role: domain.ProjectEngineer, AuditFields: s.audit()}
	s.Require().NoError(roles.UpsertProjectMember(s.ctx, member))
	member.Role = domain.ProjectDesignLead
	s.Require().NoError(roles.UpsertProjectMember(s.ctx, member))

	actor, err := roles.LoadActor(s.ctx, "viewer")
	s.Require().NoError(err)
	s.Equal(domain.ProjectDesignLead, actor.ProjectRoles["P3"])

	s.Require().NoError(roles.DeleteProjectMember(s.ctx, "P3", "viewer"))
	s.ErrorIs(roles.DeleteProjectMember(s.ctx, "P3", "viewer"), apperrors.ErrNotFound)
}

func (s *SQLiteStoreTestSuite) TestPointWithTwoOwners_IsRejectedByStore() {
	_, err := s.db.ExecContext(s.ctx, `UPDATE points SET series_id = 'S1' WHERE point_id = 'p1'`)

	s.Error(err)
	s.Equal("M1", s.point("p1").meetingID.String)
}
