package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/apperrors"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
	portsrepo "github.com/Abdulhamidsa/BimCall-sub002/internal/core/ports/repositories"
)

const (
	selectMeetingEntitySQL = `SELECT meeting_id, project_id, title, status, closed_at FROM meetings`
	selectSeriesEntitySQL  = `SELECT series_id, project_id, title, status, closed_at FROM meeting_series`
	selectPointSQL         = `SELECT point_id, meeting_id, series_id, title, status, assignee_id, closed_at,
		created_at, created_by, last_updated_at, last_updated_by FROM points`
)

// entityTable describes where one entity type lives.
type entityTable struct {
	table       string
	idColumn    string
	selectSQL   string
	ownerColumn string // points column referencing this table
}

var entityTables = map[domain.EntityType]entityTable{
	domain.EntityMeeting: {table: "meetings", idColumn: "meeting_id", selectSQL: selectMeetingEntitySQL, ownerColumn: "meeting_id"},
	domain.EntitySeries:  {table: "meeting_series", idColumn: "series_id", selectSQL: selectSeriesEntitySQL, ownerColumn: "series_id"},
}

func tableFor(t domain.EntityType) (entityTable, error) {
	et, ok := entityTables[t]
	if !ok {
		return entityTable{}, fmt.Errorf("%w: unknown entity type %q", apperrors.ErrValidation, t)
	}
	return et, nil
}

type sqlMeetingRepository struct {
	BaseRepository
}

// NewMeetingRepository creates a meeting store over db.
func NewMeetingRepository(db *sql.DB, dialect Dialect) portsrepo.MeetingRepositoryWithTx {
	return &sqlMeetingRepository{BaseRepository: BaseRepository{DB: db, Dialect: dialect}}
}

var _ portsrepo.MeetingRepositoryWithTx = (*sqlMeetingRepository)(nil)

func scanEntity(row interface{ Scan(...any) error }, t domain.EntityType) (*domain.Entity, error) {
	var (
		e         domain.Entity
		projectID sql.NullString
		status    string
		closedAt  nullTime
	)
	if err := row.Scan(&e.Ref.ID, &projectID, &e.Title, &status, &closedAt); err != nil {
		return nil, err
	}
	e.Ref.Type = t
	e.ProjectID = nullStringPtr(projectID)
	e.Status = domain.EntityStatus(status)
	e.ClosedAt = closedAt.Ptr()
	return &e, nil
}

func scanPoint(row interface{ Scan(...any) error }) (*domain.Point, error) {
	var (
		p                   domain.Point
		meetingID, seriesID sql.NullString
		assignee            sql.NullString
		status              string
		closedAt            nullTime
		createdAt, updated  nullTime
	)
	if err := row.Scan(&p.PointID, &meetingID, &seriesID, &p.Title, &status, &assignee, &closedAt,
		&createdAt, &p.CreatedBy, &updated, &p.LastUpdatedBy); err != nil {
		return nil, err
	}
	owner, err := domain.OwnerFromColumns(nullStringPtr(meetingID), nullStringPtr(seriesID))
	if err != nil {
		return nil, fmt.Errorf("point %s: %w", p.PointID, err)
	}
	if p.Status, err = domain.ParsePointStatus(status); err != nil {
		return nil, fmt.Errorf("point %s: %w", p.PointID, err)
	}
	p.Owner = owner
	p.AssigneeID = nullStringPtr(assignee)
	p.ClosedAt = closedAt.Ptr()
	p.CreatedAt = createdAt.Time
	p.LastUpdatedAt = updated.Time
	return &p, nil
}

func findEntity(ctx context.Context, q querier, d Dialect, ref domain.EntityRef, lock bool) (*domain.Entity, error) {
	et, err := tableFor(ref.Type)
	if err != nil {
		return nil, err
	}
	query := et.selectSQL + " WHERE " + et.idColumn + " = ?"
	if lock {
		query = d.locking(query)
	}
	entity, err := scanEntity(q.QueryRowContext(ctx, d.rebind(query), ref.ID), ref.Type)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, d.mapError("find "+string(ref.Type), err)
	}
	return entity, nil
}

func findOpenPoints(ctx context.Context, q querier, d Dialect, ref domain.EntityRef, lock bool) ([]domain.Point, error) {
	et, err := tableFor(ref.Type)
	if err != nil {
		return nil, err
	}
	query := selectPointSQL + " WHERE " + et.ownerColumn + " = ? AND status <> 'closed' ORDER BY created_at, point_id"
	if lock {
		query = d.locking(query)
	}
	rows, err := q.QueryContext(ctx, d.rebind(query), ref.ID)
	if err != nil {
		return nil, d.mapError("query open points", err)
	}
	defer rows.Close()

	points := []domain.Point{}
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		points = append(points, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, d.mapError("iterate open points", err)
	}
	return points, nil
}

// FindEntity returns the closable view of a meeting or series.
func (r *sqlMeetingRepository) FindEntity(ctx context.Context, ref domain.EntityRef) (*domain.Entity, error) {
	return findEntity(ctx, r.DB, r.Dialect, ref, false)
}

// FindOpenPoints returns the unlocked open points of ref.
func (r *sqlMeetingRepository) FindOpenPoints(ctx context.Context, ref domain.EntityRef) ([]domain.Point, error) {
	return findOpenPoints(ctx, r.DB, r.Dialect, ref, false)
}

// ListOpenEntitiesInProject lists open meetings and series of a project, excluding one entity.
func (r *sqlMeetingRepository) ListOpenEntitiesInProject(ctx context.Context, projectID *string, exclude domain.EntityRef) (*domain.OpenEntities, error) {
	out := &domain.OpenEntities{Meetings: []domain.Entity{}, Series: []domain.Entity{}}
	for _, t := range []domain.EntityType{domain.EntityMeeting, domain.EntitySeries} {
		et := entityTables[t]
		query := et.selectSQL + " WHERE status <> 'closed'"
		var args []any
		if projectID == nil {
			query += " AND project_id IS NULL"
		} else {
			query += " AND project_id = ?"
			args = append(args, *projectID)
		}
		if exclude.Type == t {
			query += " AND " + et.idColumn + " <> ?"
			args = append(args, exclude.ID)
		}
		query += " ORDER BY title, " + et.idColumn

		entities, err := r.queryEntities(ctx, query, t, args...)
		if err != nil {
			return nil, err
		}
		if t == domain.EntityMeeting {
			out.Meetings = entities
		} else {
			out.Series = entities
		}
	}
	return out, nil
}

func (r *sqlMeetingRepository) queryEntities(ctx context.Context, query string, t domain.EntityType, args ...any) ([]domain.Entity, error) {
	rows, err := r.DB.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, r.Dialect.mapError("list open "+string(t), err)
	}
	defer rows.Close()

	entities := []domain.Entity{}
	for rows.Next() {
		e, err := scanEntity(rows, t)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t, err)
		}
		entities = append(entities, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, r.Dialect.mapError("iterate open "+string(t), err)
	}
	return entities, nil
}

// FindSeriesOccurrences returns the occurrences of a series, oldest first.
func (r *sqlMeetingRepository) FindSeriesOccurrences(ctx context.Context, seriesID string) ([]domain.MeetingOccurrence, error) {
	rows, err := r.DB.QueryContext(ctx, r.q(`SELECT occurrence_id, series_id, occurs_at FROM meeting_occurrences
		WHERE series_id = ? ORDER BY occurs_at, occurrence_id`), seriesID)
	if err != nil {
		return nil, r.Dialect.mapError("query occurrences", err)
	}
	defer rows.Close()

	occurrences := []domain.MeetingOccurrence{}
	for rows.Next() {
		var (
			o  domain.MeetingOccurrence
			at nullTime
		)
		if err := rows.Scan(&o.OccurrenceID, &o.SeriesID, &at); err != nil {
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		o.OccursAt = at.Time
		occurrences = append(occurrences, o)
	}
	if err := rows.Err(); err != nil {
		return nil, r.Dialect.mapError("iterate occurrences", err)
	}
	return occurrences, nil
}

// SaveMeeting inserts or updates a meeting.
func (r *sqlMeetingRepository) SaveMeeting(ctx context.Context, m domain.Meeting) error {
	d := r.Dialect
	_, err := r.DB.ExecContext(ctx, r.q(`
		INSERT INTO meetings (meeting_id, project_id, title, status, scheduled_at, closed_at,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (meeting_id) DO UPDATE SET
			project_id = excluded.project_id,
			title = excluded.title,
			status = excluded.status,
			scheduled_at = excluded.scheduled_at,
			closed_at = excluded.closed_at,
			last_updated_at = excluded.last_updated_at,
			last_updated_by = excluded.last_updated_by`),
		m.MeetingID, nullableString(m.ProjectID), m.Title, string(m.Status),
		d.nullTimeArg(m.ScheduledAt), d.nullTimeArg(m.ClosedAt),
		d.timeArg(m.CreatedAt), m.CreatedBy, d.timeArg(m.LastUpdatedAt), m.LastUpdatedBy,
	)
	return d.mapError("save meeting", err)
}

// SaveSeries inserts or updates a series and replaces its occurrences.
func (r *sqlMeetingRepository) SaveSeries(ctx context.Context, s domain.MeetingSeries) error {
	d := r.Dialect
	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, r.q(`
			INSERT INTO meeting_series (series_id, project_id, title, recurrence, status, closed_at,
				created_at, created_by, last_updated_at, last_updated_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (series_id) DO UPDATE SET
				project_id = excluded.project_id,
				title = excluded.title,
				recurrence = excluded.recurrence,
				status = excluded.status,
				closed_at = excluded.closed_at,
				last_updated_at = excluded.last_updated_at,
				last_updated_by = excluded.last_updated_by`),
			s.SeriesID, nullableString(s.ProjectID), s.Title, s.Recurrence, string(s.Status), d.nullTimeArg(s.ClosedAt),
			d.timeArg(s.CreatedAt), s.CreatedBy, d.timeArg(s.LastUpdatedAt), s.LastUpdatedBy,
		)
		if err != nil {
			return d.mapError("save series", err)
		}

		if _, err := tx.ExecContext(ctx, r.q(`DELETE FROM meeting_occurrences WHERE series_id = ?`), s.SeriesID); err != nil {
			return d.mapError("clear occurrences", err)
		}
		for _, o := range s.Occurrences {
			if _, err := tx.ExecContext(ctx, r.q(`INSERT INTO meeting_occurrences (occurrence_id, series_id, occurs_at) VALUES (?, ?, ?)`),
				o.OccurrenceID, s.SeriesID, d.timeArg(o.OccursAt)); err != nil {
				return d.mapError("save occurrence", err)
			}
		}
		return nil
	})
}

// SavePoint inserts or updates a point. A closed point without a timestamp
// is stamped with its last update time.
func (r *sqlMeetingRepository) SavePoint(ctx context.Context, p domain.Point) error {
	d := r.Dialect
	if p.Owner.Ref().ID == "" {
		return fmt.Errorf("%w: point %s has no owner", apperrors.ErrValidation, p.PointID)
	}
	closedAt := p.ClosedAt
	if p.Status == domain.PointClosed && closedAt == nil {
		closedAt = &p.LastUpdatedAt
	}
	if p.Status != domain.PointClosed {
		closedAt = nil
	}
	meetingID, seriesID := p.Owner.Columns()

	_, err := r.DB.ExecContext(ctx, r.q(`
		INSERT INTO points (point_id, meeting_id, series_id, title, status, assignee_id, closed_at,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (point_id) DO UPDATE SET
			meeting_id = excluded.meeting_id,
			series_id = excluded.series_id,
			title = excluded.title,
			status = excluded.status,
			assignee_id = excluded.assignee_id,
			closed_at = excluded.closed_at,
			last_updated_at = excluded.last_updated_at,
			last_updated_by = excluded.last_updated_by`),
		p.PointID, nullableString(meetingID), nullableString(seriesID), p.Title, string(p.Status),
		nullableString(p.AssigneeID), d.nullTimeArg(closedAt),
		d.timeArg(p.CreatedAt), p.CreatedBy, d.timeArg(p.LastUpdatedAt), p.LastUpdatedBy,
	)
	return d.mapError("save point", err)
}

// WithinTx runs fn against a closure transaction.
func (r *sqlMeetingRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.ClosureTx) error) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return fn(ctx, &closureTx{tx: tx, dialect: r.Dialect})
	})
}

// closureTx implements the locked reads and writes of one closure.
type closureTx struct {
	tx      *sql.Tx
	dialect Dialect
}

var _ portsrepo.ClosureTx = (*closureTx)(nil)

func (t *closureTx) LockEntity(ctx context.Context, ref domain.EntityRef) (*domain.Entity, error) {
	return findEntity(ctx, t.tx, t.dialect, ref, true)
}

func (t *closureTx) LockOpenPoints(ctx context.Context, ref domain.EntityRef) ([]domain.Point, error) {
	return findOpenPoints(ctx, t.tx, t.dialect, ref, true)
}

// ClosePoints closes the listed points that are still open and reports how many changed.
func (t *closureTx) ClosePoints(ctx context.Context, pointIDs []string, at time.Time, by string) (int, error) {
	if len(pointIDs) == 0 {
		return 0, nil
	}
	d := t.dialect
	args := append([]any{d.timeArg(at), d.timeArg(at), by}, stringArgs(pointIDs)...)
	res, err := t.tx.ExecContext(ctx, d.rebind(`UPDATE points
		SET status = 'closed', closed_at = ?, last_updated_at = ?, last_updated_by = ?
		WHERE status <> 'closed' AND point_id IN `+inClause(len(pointIDs))), args...)
	if err != nil {
		return 0, d.mapError("close points", err)
	}
	return rowsAffected(res, "close points")
}

// ReassignPoints sets both owner columns in one statement so a point never has two owners.
func (t *closureTx) ReassignPoints(ctx context.Context, pointIDs []string, to domain.PointOwner, at time.Time, by string) (int, error) {
	if len(pointIDs) == 0 {
		return 0, nil
	}
	d := t.dialect
	meetingID, seriesID := to.Columns()
	args := append([]any{nullableString(meetingID), nullableString(seriesID), d.timeArg(at), by}, stringArgs(pointIDs)...)
	res, err := t.tx.ExecContext(ctx, d.rebind(`UPDATE points
		SET meeting_id = ?, series_id = ?, last_updated_at = ?, last_updated_by = ?
		WHERE status <> 'closed' AND point_id IN `+inClause(len(pointIDs))), args...)
	if err != nil {
		return 0, d.mapError("reassign points", err)
	}
	return rowsAffected(res, "reassign points")
}

// MarkEntityClosed closes an open entity. ErrConflict if it was closed meanwhile.
func (t *closureTx) MarkEntityClosed(ctx context.Context, ref domain.EntityRef, closedAt time.Time, by string) error {
	et, err := tableFor(ref.Type)
	if err != nil {
		return err
	}
	d := t.dialect
	res, err := t.tx.ExecContext(ctx, d.rebind(`UPDATE `+et.table+`
		SET status = 'closed', closed_at = ?, last_updated_at = ?, last_updated_by = ?
		WHERE `+et.idColumn+` = ? AND status <> 'closed'`),
		d.timeArg(closedAt), d.timeArg(closedAt), by, ref.ID)
	if err != nil {
		return d.mapError("close "+string(ref.Type), err)
	}
	n, err := rowsAffected(res, "close "+string(ref.Type))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s was not open", apperrors.ErrConflict, ref)
	}
	return nil
}
