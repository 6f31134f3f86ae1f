package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"manager role", RoleManager, true},
		{"clerk role", RoleClerk, true},
		{"viewer role", RoleViewer, true},
		{"invalid role", "invalid", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestUser_HasPermission(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	manager := &User{Role: RoleManager}
	clerk := &User{Role: RoleClerk}
	viewer := &User{Role: RoleViewer}

	tests := []struct {
		name     string
		user     *User
		action   string
		expected bool
	}{
		// Admin permissions - should have all permissions
		{"admin can manage users", admin, "manage_users", true},
		{"admin can manage invoices", admin, "manage_invoices", true},
		{"admin can approve invoices", admin, "approve_invoices", true},

		// Manager permissions - everything except user management
		{"manager cannot manage users", manager, "manage_users", false},
		{"manager can approve invoices", manager, "approve_invoices", true},
		{"manager can manage vehicles", manager, "manage_vehicles", true},
		{"manager can resolve alerts", manager, "resolve_alerts", true},

		// Clerk permissions - invoice entry, no approvals
		{"clerk can manage invoices", clerk, "manage_invoices", true},
		{"clerk can manage line items", clerk, "manage_line_items", true},
		{"clerk can manage documents", clerk, "manage_documents", true},
		{"clerk cannot approve invoices", clerk, "approve_invoices", false},
		{"clerk cannot resolve alerts", clerk, "resolve_alerts", false},
		{"clerk cannot manage users", clerk, "manage_users", false},

		// Viewer permissions - read-only access
		{"viewer can view invoices", viewer, "view_invoices", true},
		{"viewer can view vehicles", viewer, "view_vehicles", true},
		{"viewer can view alerts", viewer, "view_alerts", true},
		{"viewer cannot manage invoices", viewer, "manage_invoices", false},
		{"viewer cannot manage users", viewer, "manage_users", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.user.HasPermission(tt.action)
			if result != tt.expected {
				t.Errorf("User with role %s HasPermission(%s) = %v, want %v",
					tt.user.Role, tt.action, result, tt.expected)
			}
		})
	}
}
