package service

import (
	"fmt"
	"strings"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/events"
)

func lifecycleSubject(eventType events.EventType, matter *domain.Matter) string {
	switch eventType {
	case events.EventMatterCreated:
		return "New escalation: " + matter.Title
	case events.EventMatterEscalated:
		return "Escalated to level 2: " + matter.Title
	case events.EventMatterHeld:
		return "Escalation on hold: " + matter.Title
	case events.EventMatterWithdrawn:
		return "Escalation withdrawn: " + matter.Title
	case events.EventMatterClosed:
		return "Escalation closed: " + matter.Title
	}
	return "Escalation update: " + matter.Title
}

func lifecycleBody(eventType events.EventType, actor domain.Actor, matter *domain.Matter, note string) string {
	var b strings.Builder
	name := actorName(actor)
	switch eventType {
	case events.EventMatterCreated:
		fmt.Fprintf(&b, "%s raised \"%s\" and assigned it to you.", name, matter.Title)
	case events.EventMatterEscalated:
		fmt.Fprintf(&b, "%s escalated \"%s\" to level 2.", name, matter.Title)
	case events.EventMatterHeld:
		fmt.Fprintf(&b, "%s put \"%s\" on hold.", name, matter.Title)
	case events.EventMatterWithdrawn:
		fmt.Fprintf(&b, "%s withdrew \"%s\".", name, matter.Title)
	case events.EventMatterClosed:
		fmt.Fprintf(&b, "%s closed \"%s\".", name, matter.Title)
	default:
		fmt.Fprintf(&b, "%s updated \"%s\".", name, matter.Title)
	}
	if note != "" {
		b.WriteString("\nNote: ")
		b.WriteString(note)
	}
	return b.String()
}

func reminderBody(actor domain.Actor, matter *domain.Matter, note string) string {
	body := fmt.Sprintf("%s is asking for your attention on \"%s\" (%s, level %d).",
		actorName(actor), matter.Title, matter.Status, matter.Level)
	if note != "" {
		body += "\nNote: " + note
	}
	return body
}

func actorName(actor domain.Actor) string {
	if actor.Name != "" {
		return actor.Name
	}
	return actor.UserID
}
