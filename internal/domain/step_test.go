package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoteBuilders(t *testing.T) {
	assert.Equal(t, "On hold:", HoldNote("  "))
	assert.Equal(t, "On hold: waiting for parents", HoldNote("waiting for parents"))
	assert.Equal(t, "Withdrawn by creator: duplicate", WithdrawNote(" duplicate "))
	assert.Equal(t, "Reminder sent: to Ms Rao", ReminderNote("Ms Rao", ""))
	assert.Equal(t, "Reminder sent: to Ms Rao - please update", ReminderNote("Ms Rao", "please update"))
	assert.Equal(t, "Linked to ticket T-9", TicketLinkNote("T-9"))
}

func TestStepMarkers(t *testing.T) {
	hold := Step{Action: StepActionProgress, Note: StringPtr(HoldNote("x"))}
	assert.True(t, hold.IsHold())
	assert.False(t, hold.IsWithdrawal())

	withdrawal := Step{Action: StepActionClose, Note: StringPtr(WithdrawNote("x"))}
	assert.True(t, withdrawal.IsWithdrawal())
	assert.False(t, withdrawal.IsHold())

	// a hold prefix on a non-PROGRESS step is not a hold
	assert.False(t, Step{Action: StepActionClose, Note: StringPtr(HoldNote("x"))}.IsHold())
	assert.Equal(t, "", Step{}.NoteText())
}

func TestHasReservedPrefix(t *testing.T) {
	assert.True(t, HasReservedPrefix(" On hold: sneaky"))
	assert.True(t, HasReservedPrefix("Withdrawn by creator:"))
	assert.False(t, HasReservedPrefix("on hold until Monday"))
	assert.False(t, HasReservedPrefix("Reminder sent: fine"))
}

func TestCapabilitySetHas(t *testing.T) {
	set := CapabilitySet{CapRaiseEscalations: {}, CapHandleEscalations: {}}
	assert.True(t, set.Has(CapRaiseEscalations))
	assert.True(t, set.Has(CapRaiseEscalations, CapHandleEscalations))
	assert.False(t, set.Has(CapRaiseEscalations, CapManageDayClose))
	assert.True(t, set.Has())
}
