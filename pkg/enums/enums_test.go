package enums

import "testing"

func TestParseStaffRole(t *testing.T) {
	role, err := ParseStaffRole("Manager")
	if err != nil {
		t.Fatalf("parse manager: %v", err)
	}
	if role != StaffRoleManager {
		t.Fatalf("expected Manager, got %s", role)
	}

	if _, err := ParseStaffRole("manager"); err == nil {
		t.Fatal("roles are case sensitive; expected error")
	}
	if _, err := ParseStaffRole("Owner"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestOrderStatusTransHelpers(t *testing.T) {
	if !OrderStatusPending.IsValid() {
		t.Fatal("Pending should be valid")
	}
	if OrderStatusPending.IsTerminal() {
		t.Fatal("Pending should not be terminal")
	}
	if !OrderStatusCompleted.IsTerminal() || !OrderStatusCancelled.IsTerminal() {
		t.Fatal("Completed and Cancelled should be terminal")
	}

	if _, err := ParseOrderStatus("Shipped"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestParseAuditAction(t *testing.T) {
	for _, raw := range []string{"INSERT", "UPDATE", "DELETE"} {
		action, err := ParseAuditAction(raw)
		if err != nil {
			t.Fatalf("parse %s: %v", raw, err)
		}
		if !action.IsValid() {
			t.Fatalf("expected %s to be valid", raw)
		}
	}
	if _, err := ParseAuditAction("TRUNCATE"); err == nil {
		t.Fatal("expected error for unknown action")
	}
}
