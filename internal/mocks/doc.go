// Package mocks holds gomock doubles for outbound collaborators.
package mocks

//go:generate mockgen -destination=mock_channel.go -package=mocks github.com/spec-kit/escalation-service/internal/service Channel
//go:generate mockgen -destination=mock_ticket_target.go -package=mocks github.com/spec-kit/escalation-service/internal/repository TicketTarget
