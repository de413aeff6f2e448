package dto

import (
	"time"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/service"
)

// CreateMatterRequest payload for POST /escalations.
type CreateMatterRequest struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	L1AssigneeID       string   `json:"l1AssigneeId"`
	SuggestedLevel2ID  string   `json:"suggestedLevel2Id"`
	InvolvedUserIDs    []string `json:"involvedUserIds"`
	InvolvedStudentIDs []string `json:"involvedStudentIds"`
	TicketID           string   `json:"ticketId"`
}

// TransitionRequest payload for hold, withdraw, close and progress.
type TransitionRequest struct {
	Note string `json:"note"`
}

// EscalateRequest payload for POST /escalations/:id/escalate.
type EscalateRequest struct {
	L2AssigneeID string `json:"l2AssigneeId"`
	Note         string `json:"note"`
}

// RemindRequest payload for POST /escalations/:id/remind.
type RemindRequest struct {
	MemberIDs []string `json:"memberIds"`
	Note      string   `json:"note"`
}

// LinkTicketRequest payload for POST /escalations/:id/link-ticket.
type LinkTicketRequest struct {
	TicketID string `json:"ticketId"`
}

// MatterResponse is the canonical matter representation.
type MatterResponse struct {
	ID                string              `json:"id"`
	Title             string              `json:"title"`
	Description       *string             `json:"description"`
	Status            domain.MatterStatus `json:"status"`
	Level             int                 `json:"level"`
	CreatedByID       string              `json:"createdById"`
	CurrentAssigneeID *string             `json:"currentAssigneeId"`
	SuggestedLevel2ID *string             `json:"suggestedLevel2Id"`
	TicketID          *string             `json:"ticketId"`
	Version           int                 `json:"version"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// StepResponse is one audit entry.
type StepResponse struct {
	ID         string            `json:"id"`
	Level      int               `json:"level"`
	Action     domain.StepAction `json:"action"`
	FromUserID string            `json:"fromUserId"`
	FromName   string            `json:"fromName,omitempty"`
	ToUserID   *string           `json:"toUserId"`
	ToName     string            `json:"toName,omitempty"`
	Note       *string           `json:"note"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// DeliveryResultResponse is a per-recipient delivery outcome.
type DeliveryResultResponse struct {
	RecipientID string                `json:"recipientId"`
	Channel     string                `json:"channel"`
	Status      domain.DeliveryStatus `json:"status"`
	Error       string                `json:"error,omitempty"`
}

// MutationResponse is returned by every accepted lifecycle mutation.
type MutationResponse struct {
	Matter   MatterResponse `json:"matter"`
	StepID   string         `json:"stepId"`
	Notified []string       `json:"notified"`
	Warnings []string       `json:"warnings"`
}

// RemindResponse reports a reminder fan-out.
type RemindResponse struct {
	Matter    MatterResponse           `json:"matter"`
	StepIDs   []string                 `json:"stepIds"`
	SentCount int                      `json:"sentCount"`
	Results   []DeliveryResultResponse `json:"results"`
	Warnings  []string                 `json:"warnings"`
}

// MatterListResponse is one page of matters.
type MatterListResponse struct {
	Items    []MatterResponse `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// CountsResponse summarizes the actor's listings.
type CountsResponse struct {
	ForYou     int `json:"forYou"`
	RaisedByMe int `json:"raisedByMe"`
	Open       int `json:"open"`
	Closed     int `json:"closed"`
}

// PersonResponse is a member or student reference.
type PersonResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role,omitempty"`
	Class string      `json:"class,omitempty"`
}

// ReplayResponse is the state implied by the step history.
type ReplayResponse struct {
	Status domain.MatterStatus `json:"status"`
	Level  int                 `json:"level"`
	Steps  int                 `json:"steps"`
}

// MatterDetailResponse is the full view of a matter.
type MatterDetailResponse struct {
	Matter           MatterResponse   `json:"matter"`
	Steps            []StepResponse   `json:"steps"`
	Members          []PersonResponse `json:"members"`
	Students         []PersonResponse `json:"students"`
	Replayed         ReplayResponse   `json:"replayed"`
	ReplayConsistent bool             `json:"replayConsistent"`
}

// TimelineResponse is the ordered step history of a matter.
type TimelineResponse struct {
	MatterID         string         `json:"matterId"`
	Steps            []StepResponse `json:"steps"`
	Replayed         ReplayResponse `json:"replayed"`
	ReplayConsistent bool           `json:"replayConsistent"`
	ReplayError      string         `json:"replayError,omitempty"`
}

// NewMatterResponse maps a matter.
func NewMatterResponse(m *domain.Matter) MatterResponse {
	return MatterResponse{
		ID:                m.ID,
		Title:             m.Title,
		Description:       m.Description,
		Status:            m.Status,
		Level:             m.Level,
		CreatedByID:       m.CreatedByID,
		CurrentAssigneeID: m.CurrentAssigneeID,
		SuggestedLevel2ID: m.SuggestedLevel2ID,
		TicketID:          m.TicketID,
		Version:           m.Version,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// NewMutationResponse maps a lifecycle result.
func NewMutationResponse(r *service.MatterResult) MutationResponse {
	return MutationResponse{
		Matter:   NewMatterResponse(r.Matter),
		StepID:   r.StepID,
		Notified: nonNil(r.Notified),
		Warnings: nonNil(r.Warnings),
	}
}

// NewRemindResponse maps a reminder result.
func NewRemindResponse(r *service.RemindResult) RemindResponse {
	resp := RemindResponse{
		Matter:    NewMatterResponse(r.Matter),
		StepIDs:   nonNil(r.StepIDs),
		SentCount: r.SentCount,
		Results:   make([]DeliveryResultResponse, 0, len(r.Results)),
		Warnings:  nonNil(r.Warnings),
	}
	for _, res := range r.Results {
		resp.Results = append(resp.Results, DeliveryResultResponse{
			RecipientID: res.RecipientID,
			Channel:     res.Channel,
			Status:      res.Status,
			Error:       res.Error,
		})
	}
	return resp
}

// NewMatterListResponse maps a page of matters.
func NewMatterListResponse(list *service.MatterList) MatterListResponse {
	resp := MatterListResponse{
		Items:    make([]MatterResponse, 0, len(list.Items)),
		Total:    list.Total,
		Page:     list.Page,
		PageSize: list.Size,
	}
	for i := range list.Items {
		resp.Items = append(resp.Items, NewMatterResponse(&list.Items[i]))
	}
	return resp
}

// NewCountsResponse maps listing counts.
func NewCountsResponse(c *service.MatterCounts) CountsResponse {
	return CountsResponse{ForYou: c.ForYou, RaisedByMe: c.RaisedByMe, Open: c.Open, Closed: c.Closed}
}

// NewMatterDetailResponse maps a matter detail.
func NewMatterDetailResponse(d *service.MatterDetail) MatterDetailResponse {
	resp := MatterDetailResponse{
		Matter:           NewMatterResponse(d.Matter),
		Steps:            stepResponses(d.Steps, d.Names),
		Members:          personResponses(d.Members),
		Students:         personResponses(d.Students),
		Replayed:         replayResponse(d.Replayed),
		ReplayConsistent: d.ReplayConsistent,
	}
	return resp
}

// NewTimelineResponse maps a timeline.
func NewTimelineResponse(t *service.MatterTimeline) TimelineResponse {
	return TimelineResponse{
		MatterID:         t.MatterID,
		Steps:            stepResponses(t.Steps, nil),
		Replayed:         replayResponse(t.Replayed),
		ReplayConsistent: t.ReplayConsistent,
		ReplayError:      t.ReplayError,
	}
}

func stepResponses(steps []domain.Step, names map[string]string) []StepResponse {
	out := make([]StepResponse, 0, len(steps))
	for _, s := range steps {
		item := StepResponse{
			ID:         s.ID,
			Level:      s.Level,
			Action:     s.Action,
			FromUserID: s.FromUserID,
			FromName:   names[s.FromUserID],
			ToUserID:   s.ToUserID,
			Note:       s.Note,
			CreatedAt:  s.CreatedAt,
		}
		if s.ToUserID != nil {
			item.ToName = names[*s.ToUserID]
		}
		out = append(out, item)
	}
	return out
}

func personResponses(refs []service.PersonRef) []PersonResponse {
	out := make([]PersonResponse, 0, len(refs))
	for _, r := range refs {
		out = append(out, PersonResponse{ID: r.ID, Name: r.Name, Role: r.Role, Class: r.Class})
	}
	return out
}

func replayResponse(r domain.ReplayedState) ReplayResponse {
	return ReplayResponse{Status: r.Status, Level: r.Level, Steps: r.Steps}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
