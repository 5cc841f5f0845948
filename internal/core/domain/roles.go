package domain

import (
	"fmt"
	"strings"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/apperrors"
)

// GlobalRole is an application-wide role. A user may hold several at once.
type GlobalRole string

const (
	GlobalBimManager        GlobalRole = "BIM_MANAGER"
	GlobalBimProjectManager GlobalRole = "BIM_PROJECT_MANAGER"
	GlobalBimCoordinator    GlobalRole = "BIM_COORDINATOR"
	GlobalBimDesigner       GlobalRole = "BIM_DESIGNER"
	GlobalEngineer          GlobalRole = "ENGINEER"
	GlobalProjectManager    GlobalRole = "PROJECT_MANAGER"
	GlobalDesignManager     GlobalRole = "DESIGN_MANAGER"
	GlobalViewer            GlobalRole = "VIEWER"
)

// AllGlobalRoles lists the closed set of global roles.
var AllGlobalRoles = []GlobalRole{
	GlobalBimManager,
	GlobalBimProjectManager,
	GlobalBimCoordinator,
	GlobalBimDesigner,
	GlobalEngineer,
	GlobalProjectManager,
	GlobalDesignManager,
	GlobalViewer,
}

// CompanyRole is the role a user holds inside their company. At most one per user.
type CompanyRole string

const (
	CompanyOwner             CompanyRole = "OWNER"
	CompanyAdmin             CompanyRole = "ADMIN"
	CompanyDepartmentManager CompanyRole = "DEPARTMENT_MANAGER"
	CompanyEmployee          CompanyRole = "EMPLOYEE"
	CompanyGuest             CompanyRole = "GUEST"
)

// AllCompanyRoles lists the closed set of company roles.
var AllCompanyRoles = []CompanyRole{
	CompanyOwner,
	CompanyAdmin,
	CompanyDepartmentManager,
	CompanyEmployee,
	CompanyGuest,
}

// ProjectRole is the role a user holds on one project.
type ProjectRole string

const (
	ProjectLeader             ProjectRole = "PROJECT_LEADER"
	ProjectBimManager         ProjectRole = "BIM_MANAGER"
	ProjectBimCoordinator     ProjectRole = "BIM_COORDINATOR"
	ProjectDesignLead         ProjectRole = "DESIGN_LEAD"
	ProjectDesignManager      ProjectRole = "DESIGN_MANAGER"
	ProjectDesignTeamMember   ProjectRole = "DESIGN_TEAM_MEMBER"
	ProjectEngineer           ProjectRole = "ENGINEER"
	ProjectExternalConsultant ProjectRole = "EXTERNAL_CONSULTANT"
	ProjectViewer             ProjectRole = "PROJECT_VIEWER"
)

// AllProjectRoles lists the closed set of project roles.
var AllProjectRoles = []ProjectRole{
	ProjectLeader,
	ProjectBimManager,
	ProjectBimCoordinator,
	ProjectDesignLead,
	ProjectDesignManager,
	ProjectDesignTeamMember,
	ProjectEngineer,
	ProjectExternalConsultant,
	ProjectViewer,
}

// ParseGlobalRole converts a stored identifier into a GlobalRole.
// Unknown identifiers are rejected rather than ignored.
func ParseGlobalRole(s string) (GlobalRole, error) {
	for _, r := range AllGlobalRoles {
		if string(r) == strings.TrimSpace(s) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: unknown global role %q", apperrors.ErrValidation, s)
}

// ParseCompanyRole converts a stored identifier into a CompanyRole.
func ParseCompanyRole(s string) (CompanyRole, error) {
	for _, r := range AllCompanyRoles {
		if string(r) == strings.TrimSpace(s) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: unknown company role %q", apperrors.ErrValidation, s)
}

// ParseProjectRole converts a stored identifier into a ProjectRole.
func ParseProjectRole(s string) (ProjectRole, error) {
	for _, r := range AllProjectRoles {
		if string(r) == strings.TrimSpace(s) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: unknown project role %q", apperrors.ErrValidation, s)
}
