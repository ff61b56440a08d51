// Package permissions maps (role, operation) pairs to an allow/deny decision.
// It replaces the conditional screen-by-screen gating the staff UI used to
// carry, so every surface checks the same table.
package permissions

import "github.com/eldorado-books/bookstore-backend/pkg/enums"

// Operation names a guarded capability of the API.
type Operation string

const (
	OpBooksRead          Operation = "books.read"
	OpBooksWrite         Operation = "books.write"
	OpBooksDelete        Operation = "books.delete"
	OpCustomersRead      Operation = "customers.read"
	OpCustomersWrite     Operation = "customers.write"
	OpCustomersDelete    Operation = "customers.delete"
	OpOrdersPlace        Operation = "orders.place"
	OpOrdersRead         Operation = "orders.read"
	OpOrdersUpdateStatus Operation = "orders.update_status"
	OpStaffManage        Operation = "staff.manage"
	OpReportsView        Operation = "reports.view"
	OpAuditView          Operation = "audit.view"
)

var grants = map[enums.StaffRole]map[Operation]bool{
	enums.StaffRoleManager: {
		OpBooksRead:          true,
		OpBooksWrite:         true,
		OpBooksDelete:        true,
		OpCustomersRead:      true,
		OpCustomersWrite:     true,
		OpCustomersDelete:    true,
		OpOrdersPlace:        true,
		OpOrdersRead:         true,
		OpOrdersUpdateStatus: true,
		OpStaffManage:        true,
		OpReportsView:        true,
		OpAuditView:          true,
	},
	enums.StaffRoleClerk: {
		OpBooksRead:          true,
		OpBooksWrite:         true,
		OpCustomersRead:      true,
		OpCustomersWrite:     true,
		OpOrdersPlace:        true,
		OpOrdersRead:         true,
		OpOrdersUpdateStatus: true,
	},
	enums.StaffRoleLibrarian: {
		OpBooksRead:     true,
		OpBooksWrite:    true,
		OpCustomersRead: true,
		OpCustomersWrite: true,
		OpOrdersPlace:   true,
		OpOrdersRead:    true,
	},
}

// Allowed reports whether the role may perform the operation.
// Unknown roles and unknown operations are denied.
func Allowed(role enums.StaffRole, op Operation) bool {
	ops, ok := grants[role]
	if !ok {
		return false
	}
	return ops[op]
}

// OperationsFor lists every operation granted to the role.
func OperationsFor(role enums.StaffRole) []Operation {
	ops := grants[role]
	out := make([]Operation, 0, len(ops))
	for op, allowed := range ops {
		if allowed {
			out = append(out, op)
		}
	}
	return out
}
