package domain

import (
	"sort"
	"strings"
	"time"
)

// StepAction is the audit vocabulary for matter steps. It is coarser than the
// set of lifecycle intents: holds record as PROGRESS and withdrawals as CLOSE,
// distinguished by their note prefix.
type StepAction string

const (
	StepActionCreated  StepAction = "CREATED"
	StepActionEscalate StepAction = "ESCALATE"
	StepActionProgress StepAction = "PROGRESS"
	StepActionClose    StepAction = "CLOSE"
)

// Valid reports whether a is a known action.
func (a StepAction) Valid() bool {
	switch a {
	case StepActionCreated, StepActionEscalate, StepActionProgress, StepActionClose:
		return true
	}
	return false
}

// Note prefixes that carry intent inside the audit trail.
const (
	HoldNotePrefix       = "On hold:"
	WithdrawNotePrefix   = "Withdrawn by creator:"
	ReminderNotePrefix   = "Reminder sent:"
	TicketLinkNotePrefix = "Linked to ticket"
)

// Step is an immutable audit entry for a matter.
type Step struct {
	ID         string
	Seq        int64
	MatterID   string
	Level      int
	Action     StepAction
	FromUserID string
	ToUserID   *string
	Note       *string
	CreatedAt  time.Time
}

// NoteText returns the note or "" when absent.
func (s Step) NoteText() string {
	if s.Note == nil {
		return ""
	}
	return *s.Note
}

// IsHold reports whether the step records a hold.
func (s Step) IsHold() bool {
	return s.Action == StepActionProgress && strings.HasPrefix(s.NoteText(), HoldNotePrefix)
}

// IsWithdrawal reports whether the step records a creator withdrawal.
func (s Step) IsWithdrawal() bool {
	return s.Action == StepActionClose && strings.HasPrefix(s.NoteText(), WithdrawNotePrefix)
}

// HoldNote builds the note recorded for a hold.
func HoldNote(note string) string {
	return prefixed(HoldNotePrefix, note)
}

// WithdrawNote builds the note recorded for a withdrawal.
func WithdrawNote(note string) string {
	return prefixed(WithdrawNotePrefix, note)
}

// ReminderNote builds the note recorded for a reminder to recipientName.
func ReminderNote(recipientName, note string) string {
	text := "to " + recipientName
	if note = strings.TrimSpace(note); note != "" {
		text += " - " + note
	}
	return prefixed(ReminderNotePrefix, text)
}

// TicketLinkNote builds the note recorded when a ticket is linked.
func TicketLinkNote(ticketID string) string {
	return TicketLinkNotePrefix + " " + ticketID
}

// HasReservedPrefix reports whether a free-form note would be read back as a
// hold or withdrawal marker.
func HasReservedPrefix(note string) bool {
	note = strings.TrimSpace(note)
	return strings.HasPrefix(note, HoldNotePrefix) || strings.HasPrefix(note, WithdrawNotePrefix)
}

// SortSteps orders steps by creation time, ties broken by insertion sequence.
func SortSteps(steps []Step) {
	sort.SliceStable(steps, func(i, j int) bool {
		if !steps[i].CreatedAt.Equal(steps[j].CreatedAt) {
			return steps[i].CreatedAt.Before(steps[j].CreatedAt)
		}
		return steps[i].Seq < steps[j].Seq
	})
}

func prefixed(prefix, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return prefix
	}
	return prefix + " " + note
}
