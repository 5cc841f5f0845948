package authz

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/apperrors"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
)

//go:embed matrix.yaml
var embeddedMatrix []byte

// Matrix holds the role to action tables of all three role tiers.
// A loaded Matrix is read-only and safe for concurrent use.
type Matrix struct {
	version int
	global  map[domain.GlobalRole]domain.ActionSet
	company map[domain.CompanyRole]domain.ActionSet
	project map[domain.ProjectRole]domain.ActionSet
}

type matrixFile struct {
	Version int                 `yaml:"version"`
	Global  map[string][]string `yaml:"global"`
	Company map[string][]string `yaml:"company"`
	Project map[string][]string `yaml:"project"`
}

// LoadMatrix parses and validates a role matrix. Any unknown role or action,
// and any catalog role without an entry, fails the whole load.
func LoadMatrix(r io.Reader) (*Matrix, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f matrixFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: role matrix is empty", apperrors.ErrValidation)
		}
		return nil, fmt.Errorf("%w: decode role matrix: %v", apperrors.ErrValidation, err)
	}
	if f.Version <= 0 {
		return nil, fmt.Errorf("%w: role matrix version must be positive", apperrors.ErrValidation)
	}

	global, err := buildTable("global", f.Global, domain.AllGlobalRoles, domain.ParseGlobalRole)
	if err != nil {
		return nil, err
	}
	company, err := buildTable("company", f.Company, domain.AllCompanyRoles, domain.ParseCompanyRole)
	if err != nil {
		return nil, err
	}
	project, err := buildTable("project", f.Project, domain.AllProjectRoles, domain.ParseProjectRole)
	if err != nil {
		return nil, err
	}

	return &Matrix{
		version: f.Version,
		global:  global,
		company: company,
		project: project,
	}, nil
}

// DefaultMatrix returns the matrix embedded in the binary.
func DefaultMatrix() *Matrix {
	m, err := LoadMatrix(bytes.NewReader(embeddedMatrix))
	if err != nil {
		panic(fmt.Sprintf("authz: embedded role matrix is invalid: %v", err))
	}
	return m
}

func buildTable[R ~string](
	tier string,
	raw map[string][]string,
	catalog []R,
	parse func(string) (R, error),
) (map[R]domain.ActionSet, error) {
	table := make(map[R]domain.ActionSet, len(raw))
	for name, actions := range raw {
		role, err := parse(name)
		if err != nil {
			return nil, fmt.Errorf("%s table: %w", tier, err)
		}
		set := make(domain.ActionSet, len(actions))
		for _, a := range actions {
			action, err := domain.ParsePermissionAction(a)
			if err != nil {
				return nil, fmt.Errorf("%s table, role %s: %w", tier, name, err)
			}
			if set.Has(action) {
				return nil, fmt.Errorf("%w: %s table, role %s lists %s twice", apperrors.ErrValidation, tier, name, action)
			}
			set[action] = struct{}{}
		}
		table[role] = set
	}
	for _, role := range catalog {
		if _, ok := table[role]; !ok {
			return nil, fmt.Errorf("%w: %s table has no entry for role %s", apperrors.ErrValidation, tier, role)
		}
	}
	return table, nil
}

// Version identifies the action catalog and tables this matrix was built from.
func (m *Matrix) Version() int {
	return m.version
}

// GlobalActions returns the actions granted by one global role.
func (m *Matrix) GlobalActions(role domain.GlobalRole) domain.ActionSet {
	return m.global[role]
}

// CompanyActions returns the actions granted by one company role.
func (m *Matrix) CompanyActions(role domain.CompanyRole) domain.ActionSet {
	return m.company[role]
}

// ProjectActions returns the actions granted by one project role.
func (m *Matrix) ProjectActions(role domain.ProjectRole) domain.ActionSet {
	return m.project[role]
}
