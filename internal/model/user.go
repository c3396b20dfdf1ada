package model

// Role constants
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// ValidRole reports whether role is one of the fixed enumeration.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleManager || role == RoleEmployee
}

// User is a staff record. The remote sheet keeps the credential; we never persist
// it locally in the clear (see snapshot.CachedCredential).
type User struct {
	ID               string `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name             string `gorm:"type:varchar(255)" json:"name"`
	Username         string `gorm:"type:varchar(100);uniqueIndex" json:"username"`
	Password         string `gorm:"-" json:"-"`
	Role             string `gorm:"type:varchar(30)" json:"role"`
	AssignedBranchID string `gorm:"type:varchar(50)" json:"assignedBranchId,omitempty"` // empty = all branches
}
