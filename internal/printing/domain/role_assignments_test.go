package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAssignmentsFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "printers.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRoleAssignments(t *testing.T) {
	path := writeAssignmentsFile(t, "receipt: thermal-front\nkitchen: thermal-kitchen\n")

	assignments, err := LoadRoleAssignments(path)

	require.NoError(t, err)
	device, ok := assignments.DeviceFor(JobTypeReceipt)
	assert.True(t, ok)
	assert.Equal(t, "thermal-front", device)

	device, ok = assignments.DeviceFor(JobTypeKitchen)
	assert.True(t, ok)
	assert.Equal(t, "thermal-kitchen", device)
}

func TestLoadRoleAssignments_MissingFile(t *testing.T) {
	assignments, err := LoadRoleAssignments(filepath.Join(t.TempDir(), "nope.yml"))

	require.NoError(t, err)
	_, ok := assignments.DeviceFor(JobTypeReceipt)
	assert.False(t, ok)
}

func TestLoadRoleAssignments_UnknownRole(t *testing.T) {
	path := writeAssignmentsFile(t, "receipt: thermal-front\nlabel: zebra-1\n")

	_, err := LoadRoleAssignments(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown printer role")
}

func TestLoadRoleAssignments_MalformedYAML(t *testing.T) {
	path := writeAssignmentsFile(t, "receipt: [unclosed\n")

	_, err := LoadRoleAssignments(path)

	assert.Error(t, err)
}

func TestRoleAssignments_DeviceFor_EmptyDevice(t *testing.T) {
	assignments := RoleAssignments{JobTypeInvoice: ""}

	_, ok := assignments.DeviceFor(JobTypeInvoice)
	assert.False(t, ok)
}
