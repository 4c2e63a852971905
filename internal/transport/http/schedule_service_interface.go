package http

import (
	"context"

	"examsched/internal/acquisition"
	"examsched/internal/services"
	"examsched/pkg/contracts/domain"
)

// ScheduleServiceInterface defines the contract the schedule handler
// depends on, so tests can substitute the service.
type ScheduleServiceInterface interface {
	// GenerateFromTexts builds the merged schedule from raw document text.
	GenerateFromTexts(ctx context.Context, req services.ParseRequest) (*domain.ScheduleResult, error)
	// GenerateFromDocuments builds the merged schedule from two extracted
	// documents.
	GenerateFromDocuments(ctx context.Context, dateSheet, rollList *acquisition.Document, forceText bool) (*domain.ScheduleResult, error)
}
