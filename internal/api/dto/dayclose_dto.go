package dto

import (
	"time"

	"github.com/spec-kit/escalation-service/internal/domain"
)

// GrantOverrideRequest payload for POST /day-close/overrides.
type GrantOverrideRequest struct {
	UserID   string `json:"userId"`
	MatterID string `json:"matterId"`
	Reason   string `json:"reason"`
}

// RevokeOverrideRequest payload for POST /day-close/overrides/revoke.
type RevokeOverrideRequest struct {
	UserID   string `json:"userId"`
	MatterID string `json:"matterId"`
}

// DayCloseStatusResponse answers whether a user may close their day.
type DayCloseStatusResponse struct {
	UserID         string `json:"userId"`
	Paused         bool   `json:"paused"`
	OpenCount      int    `json:"openCount"`
	OverrideActive bool   `json:"overrideActive"`
}

// OverrideResponse is one day-close override.
type OverrideResponse struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	MatterID  *string    `json:"matterId"`
	Reason    string     `json:"reason"`
	Active    bool       `json:"active"`
	CreatedBy string     `json:"createdBy"`
	CreatedAt time.Time  `json:"createdAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	EndedBy   *string    `json:"endedBy,omitempty"`
}

// RevokeResponse reports how many overrides were ended.
type RevokeResponse struct {
	Revoked int `json:"revoked"`
}

// NewDayCloseStatusResponse maps a gate status.
func NewDayCloseStatusResponse(s *domain.DayCloseStatus) DayCloseStatusResponse {
	return DayCloseStatusResponse{
		UserID:         s.UserID,
		Paused:         s.Paused,
		OpenCount:      s.OpenCount,
		OverrideActive: s.OverrideActive,
	}
}

// NewOverrideResponse maps an override.
func NewOverrideResponse(o *domain.DayCloseOverride) OverrideResponse {
	return OverrideResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		MatterID:  o.MatterID,
		Reason:    o.Reason,
		Active:    o.Active,
		CreatedBy: o.CreatedBy,
		CreatedAt: o.CreatedAt,
		EndedAt:   o.EndedAt,
		EndedBy:   o.EndedBy,
	}
}
