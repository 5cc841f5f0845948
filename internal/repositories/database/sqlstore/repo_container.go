package sqlstore

import (
	"database/sql"

	portsrepo "github.com/Abdulhamidsa/BimCall-sub002/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every store over one connection pool.
func NewRepositoryProvider(db *sql.DB, dialect Dialect) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		MeetingRepo: NewMeetingRepository(db, dialect),
		RoleRepo:    NewRoleRepository(db, dialect),
	}
}
