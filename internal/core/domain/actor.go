package domain

// Actor is the authenticated caller together with every role source the
// authorization engine reads. It is built once per request from membership
// rows and must not be mutated while a check is running.
type Actor struct {
	UserID       string                 `json:"userID"`
	Email        string                 `json:"email"`
	GlobalRoles  []GlobalRole           `json:"globalRoles"`
	CompanyID    *string                `json:"companyID,omitempty"`
	CompanyRole  *CompanyRole           `json:"companyRole,omitempty"`
	ProjectRoles map[string]ProjectRole `json:"projectRoles"`
}

// HasGlobalRole reports whether the actor holds the given global role.
func (a *Actor) HasGlobalRole(role GlobalRole) bool {
	for _, r := range a.GlobalRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsBimManager reports whether the global override applies to this actor.
func (a *Actor) IsBimManager() bool {
	return a.HasGlobalRole(GlobalBimManager)
}

// ProjectRole returns the actor's role on a project, if any.
func (a *Actor) ProjectRole(projectID string) (ProjectRole, bool) {
	role, ok := a.ProjectRoles[projectID]
	return role, ok
}

// ProjectIDs returns the projects the actor is a member of.
func (a *Actor) ProjectIDs() []string {
	ids := make([]string, 0, len(a.ProjectRoles))
	for id := range a.ProjectRoles {
		ids = append(ids, id)
	}
	return ids
}

// ProjectMember is one persisted project membership row.
type ProjectMember struct {
	ProjectID string      `json:"projectID"`
	UserID    string      `json:"userID"`
	Role      ProjectRole `json:"role"`
	AuditFields
}
