package domain

import "time"

// DayCloseOverride is an admin-granted exemption from the day-close gate.
// Overrides are deactivated, never deleted.
type DayCloseOverride struct {
	ID        string
	UserID    string
	MatterID  *string
	Reason    string
	Active    bool
	CreatedBy string
	CreatedAt time.Time
	EndedAt   *time.Time
	EndedBy   *string
}

// DayCloseStatus answers whether a user may close their day.
type DayCloseStatus struct {
	UserID         string
	Paused         bool
	OpenCount      int
	OverrideActive bool
}
