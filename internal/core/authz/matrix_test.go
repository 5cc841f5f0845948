package authz_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/apperrors"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/authz"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
)

const validMatrix = `
version: 3
global:
  BIM_MANAGER: [meetings:close]
  BIM_PROJECT_MANAGER: []
  BIM_COORDINATOR: []
  BIM_DESIGNER: []
  ENGINEER: []
  PROJECT_MANAGER: []
  DESIGN_MANAGER: []
  VIEWER: []
company:
  OWNER: [users:manage]
  ADMIN: []
  DEPARTMENT_MANAGER: []
  EMPLOYEE: []
  GUEST: []
project:
  PROJECT_LEADER: [meetings:close]
  BIM_MANAGER: []
  BIM_COORDINATOR: []
  DESIGN_LEAD: []
  DESIGN_MANAGER: []
  DESIGN_TEAM_MEMBER: []
  ENGINEER: []
  EXTERNAL_CONSULTANT: []
  PROJECT_VIEWER: []
`

func TestDefaultMatrix(t *testing.T) {
	m := authz.DefaultMatrix()

	assert.Positive(t, m.Version())
	for _, r := range domain.AllGlobalRoles {
		assert.NotNil(t, m.GlobalActions(r), "global %s", r)
	}
	for _, r := range domain.AllCompanyRoles {
		assert.NotNil(t, m.CompanyActions(r), "company %s", r)
	}
	for _, r := range domain.AllProjectRoles {
		assert.NotNil(t, m.ProjectActions(r), "project %s", r)
	}
	assert.Empty(t, m.GlobalActions(domain.GlobalViewer))
	assert.Empty(t, m.ProjectActions(domain.ProjectViewer))
	assert.Len(t, m.GlobalActions(domain.GlobalBimManager), len(domain.AllPermissionActions))
}

func TestLoadMatrix_Valid(t *testing.T) {
	m, err := authz.LoadMatrix(strings.NewReader(validMatrix))
	require.NoError(t, err)

	assert.Equal(t, 3, m.Version())
	assert.True(t, m.ProjectActions(domain.ProjectLeader).Has(domain.ActionMeetingsClose))
	assert.True(t, m.CompanyActions(domain.CompanyOwner).Has(domain.ActionUsersManage))
}

func TestLoadMatrix_FailsClosed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"unknown action", strings.Replace(validMatrix, "[users:manage]", "[users:impersonate]", 1)},
		{"unknown role", strings.Replace(validMatrix, "GUEST: []", "GUEST: []\n  INTERN: []", 1)},
		{"missing role", strings.Replace(validMatrix, "  VIEWER: []\n", "", 1)},
		{"duplicate role", strings.Replace(validMatrix, "GUEST: []", "GUEST: []\n  GUEST: []", 1)},
		{"duplicate action", strings.Replace(validMatrix, "[users:manage]", "[users:manage, users:manage]", 1)},
		{"unknown top-level key", validMatrix + "\nsuperusers: []\n"},
		{"missing version", strings.Replace(validMatrix, "version: 3", "", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := authz.LoadMatrix(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Nil(t, m)
		})
	}
}
