// Package services contains the orchestration layer between transport
// and the parsers.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"examsched/internal/acquisition"
	"examsched/internal/config"
	"examsched/internal/datesheet"
	"examsched/internal/rolllist"
	"examsched/internal/schedule"
	"examsched/pkg/contracts/domain"
)

// ParseRequest carries one merge request: the raw text of both documents
// and the toggle that forces the roll-list parser into text mode.
type ParseRequest struct {
	DateSheetText string `json:"date_sheet_text" validate:"required"`
	RollListText  string `json:"roll_list_text" validate:"required"`
	ForceTextMode bool   `json:"force_text_mode"`
}

// ScheduleService turns a pair of documents into a merged schedule. All
// state is request-scoped; the service itself only holds configuration.
type ScheduleService struct {
	cfg        config.ParsingConfig
	logger     *slog.Logger
	validate   *validator.Validate
	dateParser *datesheet.Parser
	rollParser *rolllist.Parser
}

// NewScheduleService creates a schedule service with the given parser
// configuration.
func NewScheduleService(cfg config.ParsingConfig, logger *slog.Logger) *ScheduleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleService{
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "schedule_service")),
		validate:   validator.New(),
		dateParser: datesheet.NewParser(cfg, logger),
		rollParser: rolllist.NewParser(cfg, logger),
	}
}

// GenerateFromTexts builds the merged schedule from raw document text.
// This is the pure entry point: no file handles, no tabular structure.
func (s *ScheduleService) GenerateFromTexts(ctx context.Context, req ParseRequest) (*domain.ScheduleResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid parse request: %w", err)
	}

	return s.generate(ctx,
		[]string{req.DateSheetText},
		[]string{req.RollListText}, nil,
		req.ForceTextMode), nil
}

// GenerateFromDocuments builds the merged schedule from two extracted
// documents, using the roll list's tabular structure when available.
func (s *ScheduleService) GenerateFromDocuments(ctx context.Context, dateSheet, rollList *acquisition.Document, forceText bool) (*domain.ScheduleResult, error) {
	if dateSheet == nil || rollList == nil {
		return nil, fmt.Errorf("both documents are required")
	}

	return s.generate(ctx,
		dateSheet.PageTexts(),
		rollList.PageTexts(), rollList.Rows(),
		forceText), nil
}

// GenerateFromFiles extracts both PDF files and builds the merged
// schedule.
func (s *ScheduleService) GenerateFromFiles(ctx context.Context, dateSheetPath, rollListPath string, forceText bool) (*domain.ScheduleResult, error) {
	dateSheet, err := acquisition.ExtractFile(dateSheetPath)
	if err != nil {
		return nil, fmt.Errorf("date sheet: %w", err)
	}
	rollList, err := acquisition.ExtractFile(rollListPath)
	if err != nil {
		return nil, fmt.Errorf("roll list: %w", err)
	}

	return s.GenerateFromDocuments(ctx, dateSheet, rollList, forceText)
}

// generate is the single merge path: parse both documents, join on paper
// id, and collect diagnostics. Parse failures degrade to sentinel values
// and warnings; the only terminal condition is an entirely empty result,
// which the caller surfaces together with the raw-text previews.
func (s *ScheduleService) generate(ctx context.Context, datePages []string, rollPages []string, rollRows [][]string, forceText bool) *domain.ScheduleResult {
	examMap, dateStats := s.dateParser.Parse(datePages)
	students, rollStats := s.rollParser.Parse(rollPages, rollRows, rolllist.Options{ForceTextMode: forceText})
	rows := schedule.Build(examMap, students)

	result := &domain.ScheduleResult{
		Rows:             rows,
		EntryCount:       len(examMap),
		StudentCount:     len(students),
		RowCount:         len(rows),
		RollListStrategy: rollStats.Strategy,
	}
	result.MissingCount = len(result.Missing())
	result.Warnings = append(result.Warnings, dateStats.Warnings...)
	result.Warnings = append(result.Warnings, rollStats.Warnings...)

	// Raw previews only when a parser came up empty; they are the manual
	// inspection aid for the troubleshooting view.
	if len(examMap) == 0 {
		result.DateSheetPreview = preview(datePages, s.cfg.PreviewChars)
	}
	if len(students) == 0 {
		result.RollListPreview = preview(rollPages, s.cfg.PreviewChars)
	}

	s.logger.InfoContext(ctx, "schedule generated",
		slog.Int("entry_count", result.EntryCount),
		slog.Int("student_count", result.StudentCount),
		slog.Int("row_count", result.RowCount),
		slog.Int("missing_count", result.MissingCount),
		slog.String("roll_list_strategy", result.RollListStrategy),
		slog.Int("warning_count", len(result.Warnings)))

	return result
}

// preview returns the first n characters of the concatenated pages.
func preview(pages []string, n int) string {
	var total int
	var out []byte
	for i, page := range pages {
		if i > 0 {
			out = append(out, '\n')
			total++
		}
		runes := []rune(page)
		remaining := n - total
		if remaining <= 0 {
			break
		}
		if len(runes) > remaining {
			runes = runes[:remaining]
		}
		out = append(out, string(runes)...)
		total += len(runes)
	}
	return string(out)
}
