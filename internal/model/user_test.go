package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		minimum  string
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleSeller, true},
		{RoleSeller, RoleAdmin, false},
		{RoleSeller, RoleSeller, true},
		// Unknown roles fail-closed.
		{"unknown", RoleSeller, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RoleSeller, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, RoleAtLeast(tt.role, tt.minimum), "RoleAtLeast(%q, %q)", tt.role, tt.minimum)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if tt.wantErr {
			assert.Error(t, err, tt.password)
		} else {
			assert.NoError(t, err, tt.password)
		}
	}
}
