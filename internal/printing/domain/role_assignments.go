package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RoleAssignments maps a job type to the device configured for it. The file
// is operator-maintained and consumed read-only: the print pipeline never
// writes it.
type RoleAssignments map[JobType]string

// validJobTypes guards the assignment file against typos in role names.
var validJobTypes = map[JobType]bool{
	JobTypeReceipt: true,
	JobTypeInvoice: true,
	JobTypeKitchen: true,
}

// LoadRoleAssignments reads the role-to-device mapping from a YAML file.
// A missing file is not an error: it yields an empty mapping, and every
// submit fails fast with a configuration error until the operator assigns
// devices.
func LoadRoleAssignments(path string) (RoleAssignments, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return RoleAssignments{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read printer assignments: %w", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse printer assignments: %w", err)
	}

	assignments := RoleAssignments{}
	for role, device := range raw {
		jobType := JobType(role)
		if !validJobTypes[jobType] {
			return nil, fmt.Errorf("unknown printer role %q in assignments file", role)
		}
		assignments[jobType] = device
	}

	return assignments, nil
}

// DeviceFor returns the device assigned to a job type, if any.
func (a RoleAssignments) DeviceFor(jobType JobType) (string, bool) {
	device, ok := a[jobType]
	if !ok || device == "" {
		return "", false
	}
	return device, true
}
