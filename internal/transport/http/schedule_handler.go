package http

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"examsched/internal/acquisition"
	apierrors "examsched/internal/errors"
	"examsched/internal/exporter"
	"examsched/internal/services"
	"examsched/pkg/contracts/domain"
)

// ScheduleHandler handles schedule generation requests.
type ScheduleHandler struct {
	service        ScheduleServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(service ScheduleServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64) *ScheduleHandler {
	return &ScheduleHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "schedule_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the schedule routes.
func (h *ScheduleHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Generate)
	r.Post("/upload", h.GenerateFromUpload)
	r.Post("/export", h.Export)

	return r
}

// ScheduleResponse is the success envelope of a merge request.
type ScheduleResponse struct {
	Success bool                   `json:"success"`
	Result  *domain.ScheduleResult `json:"result"`
	// MissingRows is the filtered view of rows whose exam date is the
	// not-found sentinel.
	MissingRows []domain.ScheduleRow `json:"missing_rows,omitempty"`
}

// Generate handles POST /api/schedule with raw document text.
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req services.ParseRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	result, err := h.service.GenerateFromTexts(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	h.respond(w, r, result)
}

// GenerateFromUpload handles POST /api/schedule/upload with two PDF
// files in a multipart form.
func (h *ScheduleHandler) GenerateFromUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrUploadTooLarge)
		return
	}

	dateSheet, err := h.extractUpload(r, "date_sheet")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	rollList, err := h.extractUpload(r, "roll_list")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	forceText, _ := strconv.ParseBool(r.FormValue("force_text"))

	result, genErr := h.service.GenerateFromDocuments(r.Context(), dateSheet, rollList, forceText)
	if genErr != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(genErr))
		return
	}

	h.respond(w, r, result)
}

// Export handles POST /api/schedule/export: same input as Generate, but
// the response is the xlsx workbook as a download.
func (h *ScheduleHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req services.ParseRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	result, err := h.service.GenerateFromTexts(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if result.Empty() {
		h.errorHandler.HandleError(w, r, emptyResultError(result))
		return
	}

	buf, err := exporter.ScheduleXLSXBytes(result.Rows)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build workbook",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.ErrInternalServer)
		return
	}

	filename := fmt.Sprintf("exam_schedule_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// extractUpload reads one uploaded PDF from the form and extracts its
// text.
func (h *ScheduleHandler) extractUpload(r *http.Request, field string) (*acquisition.Document, *apierrors.APIError) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, apierrors.ErrValidation(field, fmt.Sprintf("%s file is required", field))
	}
	defer file.Close()

	doc, err := extractMultipart(file, header.Size)
	if err != nil {
		return nil, apierrors.ErrDocumentUnreadable(field, err)
	}
	return doc, nil
}

// extractMultipart runs text extraction against an uploaded file handle.
func extractMultipart(file multipart.File, size int64) (*acquisition.Document, error) {
	return acquisition.Extract(file, size)
}

// respond writes the success envelope, or the empty-result problem when
// nothing could be extracted from either document.
func (h *ScheduleHandler) respond(w http.ResponseWriter, r *http.Request, result *domain.ScheduleResult) {
	if result.Empty() {
		h.errorHandler.HandleError(w, r, emptyResultError(result))
		return
	}

	render.JSON(w, r, ScheduleResponse{
		Success:     true,
		Result:      result,
		MissingRows: result.Missing(),
	})
}

// emptyResultError packs the raw-text previews into the empty-result
// error so the caller can show them for manual inspection.
func emptyResultError(result *domain.ScheduleResult) *apierrors.APIError {
	return apierrors.NewWithDetails(
		http.StatusUnprocessableEntity,
		"EMPTY_RESULT",
		"No schedule rows could be extracted from the documents",
		result,
	)
}
