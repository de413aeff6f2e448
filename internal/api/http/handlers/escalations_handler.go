package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-service/internal/api/dto"
	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/service"
)

// EscalationsHandler exposes the matter lifecycle.
type EscalationsHandler struct {
	matters *service.MatterService
}

// NewEscalationsHandler constructs handler.
func NewEscalationsHandler(matters *service.MatterService) *EscalationsHandler {
	return &EscalationsHandler{matters: matters}
}

// Create POST /escalations.
func (h *EscalationsHandler) Create(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateMatterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.matters.CreateMatter(c.UserContext(), actor, service.CreateMatterInput{
		Title:              req.Title,
		Description:        req.Description,
		L1AssigneeID:       req.L1AssigneeID,
		SuggestedLevel2ID:  req.SuggestedLevel2ID,
		InvolvedUserIDs:    req.InvolvedUserIDs,
		InvolvedStudentIDs: req.InvolvedStudentIDs,
		TicketID:           req.TicketID,
	})
	if err != nil {
		return err
	}
	setVersion(c, result.Matter)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewMutationResponse(result)})
}

// ForYou GET /escalations/for-you.
func (h *EscalationsHandler) ForYou(c *fiber.Ctx) error {
	return h.list(c, h.matters.ListForYou)
}

// RaisedByMe GET /escalations/raised-by-me.
func (h *EscalationsHandler) RaisedByMe(c *fiber.Ctx) error {
	return h.list(c, h.matters.ListRaisedByMe)
}

// Open GET /escalations/open.
func (h *EscalationsHandler) Open(c *fiber.Ctx) error {
	return h.list(c, h.matters.ListOpen)
}

// Closed GET /escalations/closed.
func (h *EscalationsHandler) Closed(c *fiber.Ctx) error {
	return h.list(c, h.matters.ListClosed)
}

// Counts GET /escalations/counts.
func (h *EscalationsHandler) Counts(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	counts, err := h.matters.Counts(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCountsResponse(counts)})
}

// Detail GET /escalations/:id.
func (h *EscalationsHandler) Detail(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	detail, err := h.matters.GetDetail(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	setVersion(c, detail.Matter)
	return c.JSON(fiber.Map{"data": dto.NewMatterDetailResponse(detail)})
}

// Timeline GET /escalations/:id/timeline.
func (h *EscalationsHandler) Timeline(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	timeline, err := h.matters.Timeline(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTimelineResponse(timeline)})
}

// Escalate POST /escalations/:id/escalate.
func (h *EscalationsHandler) Escalate(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.EscalateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	version, err := expectedVersion(c)
	if err != nil {
		return err
	}
	result, err := h.matters.Escalate(c.UserContext(), actor, service.EscalateInput{
		TransitionInput: service.TransitionInput{MatterID: c.Params("id"), Note: req.Note, ExpectedVersion: version},
		L2AssigneeID:    req.L2AssigneeID,
	})
	return h.mutation(c, result, err)
}

// Hold POST /escalations/:id/hold.
func (h *EscalationsHandler) Hold(c *fiber.Ctx) error {
	return h.transition(c, h.matters.Hold)
}

// Withdraw POST /escalations/:id/withdraw.
func (h *EscalationsHandler) Withdraw(c *fiber.Ctx) error {
	return h.transition(c, h.matters.Withdraw)
}

// Close POST /escalations/:id/close.
func (h *EscalationsHandler) Close(c *fiber.Ctx) error {
	return h.transition(c, h.matters.Close)
}

// Progress POST /escalations/:id/progress.
func (h *EscalationsHandler) Progress(c *fiber.Ctx) error {
	return h.transition(c, h.matters.Progress)
}

// LinkTicket POST /escalations/:id/link-ticket.
func (h *EscalationsHandler) LinkTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.LinkTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	version, err := expectedVersion(c)
	if err != nil {
		return err
	}
	result, err := h.matters.LinkTicket(c.UserContext(), actor, service.LinkTicketInput{
		MatterID:        c.Params("id"),
		TicketID:        req.TicketID,
		ExpectedVersion: version,
	})
	return h.mutation(c, result, err)
}

// Remind POST /escalations/:id/remind.
func (h *EscalationsHandler) Remind(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.RemindRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.matters.RemindMembers(c.UserContext(), actor, service.RemindInput{
		MatterID:  c.Params("id"),
		MemberIDs: req.MemberIDs,
		Note:      req.Note,
	})
	if err != nil {
		return err
	}
	setVersion(c, result.Matter)
	return c.JSON(fiber.Map{"data": dto.NewRemindResponse(result)})
}

type transitionFunc func(ctx context.Context, actor domain.Actor, input service.TransitionInput) (*service.MatterResult, error)

func (h *EscalationsHandler) transition(c *fiber.Ctx, fn transitionFunc) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	version, err := expectedVersion(c)
	if err != nil {
		return err
	}
	result, err := fn(c.UserContext(), actor, service.TransitionInput{
		MatterID:        c.Params("id"),
		Note:            req.Note,
		ExpectedVersion: version,
	})
	return h.mutation(c, result, err)
}

func (h *EscalationsHandler) mutation(c *fiber.Ctx, result *service.MatterResult, err error) error {
	if err != nil {
		return err
	}
	setVersion(c, result.Matter)
	return c.JSON(fiber.Map{"data": dto.NewMutationResponse(result)})
}

type listFunc func(ctx context.Context, actor domain.Actor, page service.Page) (*service.MatterList, error)

func (h *EscalationsHandler) list(c *fiber.Ctx, fn listFunc) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	list, err := fn(c.UserContext(), actor, page)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMatterListResponse(list)})
}
