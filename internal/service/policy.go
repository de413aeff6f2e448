package service

import (
	"strings"

	"github.com/spec-kit/escalation-service/internal/config"
	"github.com/spec-kit/escalation-service/internal/domain"
)

// Policy maps roles to escalation capabilities. Every authorization decision
// goes through Capabilities so role names are never compared elsewhere.
type Policy struct {
	grants map[domain.Role]domain.CapabilitySet
}

// NewPolicy builds a policy from the configured role sets.
func NewPolicy(cfg config.EscalationConfig) *Policy {
	p := &Policy{grants: map[domain.Role]domain.CapabilitySet{}}
	p.grant(domain.CapRaiseEscalations, cfg.RaiseRoles)
	p.grant(domain.CapHandleEscalations, cfg.L1Roles)
	p.grant(domain.CapRespondEscalations, cfg.ResponderRoles)
	p.grant(domain.CapManageEscalations, cfg.ManagerRoles)
	p.grant(domain.CapManageDayClose, cfg.DayCloseRoles)
	return p
}

func (p *Policy) grant(capability domain.Capability, roles []string) {
	for _, r := range roles {
		role := domain.Role(strings.ToUpper(strings.TrimSpace(r)))
		if role == "" {
			continue
		}
		set, ok := p.grants[role]
		if !ok {
			set = domain.CapabilitySet{}
			p.grants[role] = set
		}
		set[capability] = struct{}{}
	}
}

// Capabilities returns the capability set for role. Unknown roles get none.
func (p *Policy) Capabilities(role domain.Role) domain.CapabilitySet {
	set := domain.CapabilitySet{}
	for c := range p.grants[role] {
		set[c] = struct{}{}
	}
	return set
}

// Can reports whether actor holds every capability in caps.
func (p *Policy) Can(actor domain.Actor, caps ...domain.Capability) bool {
	return p.Capabilities(actor.Role).Has(caps...)
}

// IsManager reports whether actor may act on any matter.
func (p *Policy) IsManager(actor domain.Actor) bool {
	return p.Can(actor, domain.CapManageEscalations)
}
