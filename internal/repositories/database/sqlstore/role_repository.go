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

type sqlRoleRepository struct {
	BaseRepository
}

// NewRoleRepository creates a role store over db.
func NewRoleRepository(db *sql.DB, dialect Dialect) portsrepo.RoleRepositoryFacade {
	return &sqlRoleRepository{BaseRepository: BaseRepository{DB: db, Dialect: dialect}}
}

var _ portsrepo.RoleRepositoryFacade = (*sqlRoleRepository)(nil)

// LoadActor reads the user row and every role source. The reads share one
// transaction so the actor is a consistent snapshot.
func (r *sqlRoleRepository) LoadActor(ctx context.Context, userID string) (*domain.Actor, error) {
	var actor *domain.Actor
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		a, err := r.loadActor(ctx, tx, userID)
		actor = a
		return err
	})
	if err != nil {
		return nil, err
	}
	return actor, nil
}

func (r *sqlRoleRepository) loadActor(ctx context.Context, q querier, userID string) (*domain.Actor, error) {
	actor := &domain.Actor{
		UserID:       userID,
		GlobalRoles:  []domain.GlobalRole{},
		ProjectRoles: map[string]domain.ProjectRole{},
	}

	err := q.QueryRowContext(ctx, r.q(`SELECT email FROM users WHERE user_id = ?`), userID).Scan(&actor.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, r.Dialect.mapError("load user", err)
	}

	if err := r.loadGlobalRoles(ctx, q, actor); err != nil {
		return nil, err
	}
	if err := r.loadCompanyRole(ctx, q, actor); err != nil {
		return nil, err
	}
	if err := r.loadProjectRoles(ctx, q, actor); err != nil {
		return nil, err
	}
	return actor, nil
}

func (r *sqlRoleRepository) loadGlobalRoles(ctx context.Context, q querier, actor *domain.Actor) error {
	rows, err := q.QueryContext(ctx, r.q(`SELECT role FROM user_global_roles WHERE user_id = ? ORDER BY role`), actor.UserID)
	if err != nil {
		return r.Dialect.mapError("load global roles", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("scan global role: %w", err)
		}
		role, err := domain.ParseGlobalRole(raw)
		if err != nil {
			return fmt.Errorf("user %s: %w", actor.UserID, err)
		}
		actor.GlobalRoles = append(actor.GlobalRoles, role)
	}
	if err := rows.Err(); err != nil {
		return r.Dialect.mapError("iterate global roles", err)
	}
	return nil
}

func (r *sqlRoleRepository) loadCompanyRole(ctx context.Context, q querier, actor *domain.Actor) error {
	var (
		companyID string
		role      sql.NullString
	)
	err := q.QueryRowContext(ctx, r.q(`SELECT company_id, role FROM company_members WHERE user_id = ?`), actor.UserID).
		Scan(&companyID, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return r.Dialect.mapError("load company role", err)
	}

	actor.CompanyID = &companyID
	if role.Valid {
		parsed, err := domain.ParseCompanyRole(role.String)
		if err != nil {
			return fmt.Errorf("user %s: %w", actor.UserID, err)
		}
		actor.CompanyRole = &parsed
	}
	return nil
}

func (r *sqlRoleRepository) loadProjectRoles(ctx context.Context, q querier, actor *domain.Actor) error {
	rows, err := q.QueryContext(ctx, r.q(`SELECT project_id, role FROM project_members WHERE user_id = ?`), actor.UserID)
	if err != nil {
		return r.Dialect.mapError("load project roles", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID, raw string
		if err := rows.Scan(&projectID, &raw); err != nil {
			return fmt.Errorf("scan project role: %w", err)
		}
		role, err := domain.ParseProjectRole(raw)
		if err != nil {
			return fmt.Errorf("user %s project %s: %w", actor.UserID, projectID, err)
		}
		actor.ProjectRoles[projectID] = role
	}
	if err := rows.Err(); err != nil {
		return r.Dialect.mapError("iterate project roles", err)
	}
	return nil
}

// SaveActor upserts the user and replaces every stored role source with the actor's.
// Project memberships are stamped as created by the user itself.
func (r *sqlRoleRepository) SaveActor(ctx context.Context, actor domain.Actor) error {
	if actor.CompanyRole != nil && actor.CompanyID == nil {
		return fmt.Errorf("%w: company role without company", apperrors.ErrValidation)
	}
	d := r.Dialect
	now := d.timeArg(time.Now())

	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, r.q(`
			INSERT INTO users (user_id, email, created_at, created_by, last_updated_at, last_updated_by)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET
				email = excluded.email,
				last_updated_at = excluded.last_updated_at,
				last_updated_by = excluded.last_updated_by`),
			actor.UserID, actor.Email, now, actor.UserID, now, actor.UserID)
		if err != nil {
			return d.mapError("save user", err)
		}

		for _, stmt := range []string{
			`DELETE FROM user_global_roles WHERE user_id = ?`,
			`DELETE FROM company_members WHERE user_id = ?`,
			`DELETE FROM project_members WHERE user_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, r.q(stmt), actor.UserID); err != nil {
				return d.mapError("clear roles", err)
			}
		}

		for _, role := range actor.GlobalRoles {
			if _, err := tx.ExecContext(ctx, r.q(`INSERT INTO user_global_roles (user_id, role) VALUES (?, ?)`),
				actor.UserID, string(role)); err != nil {
				return d.mapError("save global role", err)
			}
		}

		if actor.CompanyID != nil {
			var role any
			if actor.CompanyRole != nil {
				role = string(*actor.CompanyRole)
			}
			if _, err := tx.ExecContext(ctx, r.q(`INSERT INTO company_members (user_id, company_id, role) VALUES (?, ?, ?)`),
				actor.UserID, *actor.CompanyID, role); err != nil {
				return d.mapError("save company role", err)
			}
		}

		for projectID, role := range actor.ProjectRoles {
			if _, err := tx.ExecContext(ctx, r.q(`
				INSERT INTO project_members (project_id, user_id, role, created_at, created_by, last_updated_at, last_updated_by)
				VALUES (?, ?, ?, ?, ?, ?, ?)`),
				projectID, actor.UserID, string(role), now, actor.UserID, now, actor.UserID); err != nil {
				return d.mapError("save project role", err)
			}
		}
		return nil
	})
}

// UpsertProjectMember sets the user's role on a project, keeping the original creation stamp.
func (r *sqlRoleRepository) UpsertProjectMember(ctx context.Context, m domain.ProjectMember) error {
	d := r.Dialect
	_, err := r.DB.ExecContext(ctx, r.q(`
		INSERT INTO project_members (project_id, user_id, role, created_at, created_by, last_updated_at, last_updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (project_id, user_id) DO UPDATE SET
			role = excluded.role,
			last_updated_at = excluded.last_updated_at,
			last_updated_by = excluded.last_updated_by`),
		m.ProjectID, m.UserID, string(m.Role),
		d.timeArg(m.CreatedAt), m.CreatedBy, d.timeArg(m.LastUpdatedAt), m.LastUpdatedBy)
	if err != nil {
		return d.mapError("upsert project member", err)
	}
	return nil
}

// DeleteProjectMember removes a membership row.
func (r *sqlRoleRepository) DeleteProjectMember(ctx context.Context, projectID, userID string) error {
	res, err := r.DB.ExecContext(ctx, r.q(`DELETE FROM project_members WHERE project_id = ? AND user_id = ?`), projectID, userID)
	if err != nil {
		return r.Dialect.mapError("delete project member", err)
	}
	n, err := rowsAffected(res, "delete project member")
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
