package domain

// Staff roles issued by the store backend. Only owners and admins may
// confirm a delete.
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
	RoleStaff = "staff"
)
