package domain

// Role enumerates portal roles as reported by the directory.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleTeamManager Role = "TEAM_MANAGER"
	RolePrincipal   Role = "PRINCIPAL"
	RoleCoordinator Role = "COORDINATOR"
	RoleTeacher     Role = "TEACHER"
	RoleStaff       Role = "STAFF"
	RoleCounselor   Role = "COUNSELOR"
)

// Capability is a permission evaluated by the escalation policy.
type Capability string

const (
	CapRaiseEscalations   Capability = "RAISE_ESCALATIONS"
	CapHandleEscalations  Capability = "HANDLE_ESCALATIONS"
	CapRespondEscalations Capability = "RESPOND_ESCALATIONS"
	CapManageEscalations  Capability = "MANAGE_ESCALATIONS"
	CapManageDayClose     Capability = "MANAGE_DAY_CLOSE"
)

// CapabilitySet is an unordered set of capabilities.
type CapabilitySet map[Capability]struct{}

// Has reports whether every capability in caps is present.
func (s CapabilitySet) Has(caps ...Capability) bool {
	for _, c := range caps {
		if _, ok := s[c]; !ok {
			return false
		}
	}
	return true
}

// Actor is the authenticated caller of a lifecycle operation.
type Actor struct {
	UserID string
	Name   string
	Role   Role
}
