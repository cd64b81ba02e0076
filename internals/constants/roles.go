package constants

import "fmt"

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// Roles allowed to manage listings and categories.
var ManagerRoles = []string{RoleAdmin, RoleEditor}

var AllRoles = []string{RoleAdmin, RoleEditor}

const ErrOnlyManagersCanAccess = "❌ Only admins may manage %s."

func RoleErrorManager(feature string) string {
	return fmt.Sprintf(ErrOnlyManagersCanAccess, feature)
}

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
