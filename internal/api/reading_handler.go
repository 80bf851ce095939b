// Package api provides the HTTP handlers for the tarot reading API.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/arcanalab/tarot-api/internal/api/shared"
	"github.com/arcanalab/tarot-api/internal/domain"
	"github.com/arcanalab/tarot-api/internal/platform/logger"
	"github.com/arcanalab/tarot-api/internal/service"
)

// SubmitReadingRequest is the request body for submitting a tarot draw.
// Cards arrive as a JSON object whose key order is the draw order.
type SubmitReadingRequest struct {
	Question  string          `json:"question"`
	Cards     domain.CardDraw `json:"cards"`
	Spread    string          `json:"spread"`
	Positions []string        `json:"positions,omitempty"`
}

// SubmitReadingResponse acknowledges a submission with the id to poll.
type SubmitReadingResponse struct {
	shared.Envelope
	ReadingID string `json:"reading_id"`
}

// PollResultResponse reports the current state of one reading. Result is
// present only when the reading completed; a failed reading carries its
// failure message in Msg with a nonzero code.
type PollResultResponse struct {
	Code   int                   `json:"code"`
	Status domain.ReadingStatus  `json:"status"`
	Msg    string                `json:"msg"`
	Result *domain.ReadingResult `json:"result,omitempty"`
}

// HistoryEntry is one reading in the history listing.
type HistoryEntry struct {
	ID        string                `json:"id"`
	Question  string                `json:"question"`
	Cards     domain.CardDraw       `json:"cards"`
	Spread    string                `json:"spread"`
	Positions []string              `json:"positions,omitempty"`
	Status    domain.ReadingStatus  `json:"status"`
	Result    *domain.ReadingResult `json:"result,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// HistoryData is the paginated payload of the history endpoint.
type HistoryData struct {
	List     []HistoryEntry `json:"list"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// HistoryResponse wraps the history payload in the envelope.
type HistoryResponse struct {
	shared.Envelope
	Data HistoryData `json:"data"`
}

// DeleteReadingRequest identifies the reading to soft-delete.
type DeleteReadingRequest struct {
	ID string `json:"id" validate:"required"`
}

// DeleteAllResponse reports how many readings a bulk delete touched.
type DeleteAllResponse struct {
	shared.Envelope
	DeletedCount int64 `json:"deleted_count"`
}

// ReadingHandler handles reading-related HTTP requests.
type ReadingHandler struct {
	readingService *service.ReadingService
	logger         *slog.Logger
}

// NewReadingHandler creates a new ReadingHandler.
func NewReadingHandler(readingService *service.ReadingService, log *slog.Logger) *ReadingHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ReadingHandler{
		readingService: readingService,
		logger:         log.With(slog.String("component", "reading_handler")),
	}
}

// SubmitReading handles POST /api/tarot. It persists the draw, schedules
// the interpretation, and returns the reading id without waiting.
func (h *ReadingHandler) SubmitReading(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID := shared.GetOwnerID(r.Context())

	var req SubmitReadingRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid submission body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	reading, err := h.readingService.SubmitReading(r.Context(),
		ownerID, req.Question, req.Cards, req.Spread, req.Positions)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubmitReadingResponse{
		Envelope:  shared.OK("reading submitted, poll for the result"),
		ReadingID: reading.ID.String(),
	})
}

// GetResult handles GET /api/tarot/result?id=. Identity is optional here so
// a poll started before a session refresh keeps working; when present it
// must match the reading's owner.
func (h *ReadingHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid reading id")
		return
	}

	reading, err := h.readingService.GetReading(r.Context(), id, shared.GetOwnerID(r.Context()))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	resp := PollResultResponse{Status: reading.Status}
	switch reading.Status {
	case domain.ReadingStatusCompleted:
		result := domain.ParseStoredResult(reading.Result)
		resp.Code = shared.CodeOK
		resp.Msg = "ok"
		resp.Result = &result
	case domain.ReadingStatusFailed:
		resp.Code = shared.CodeError
		resp.Msg = reading.Result
		if resp.Msg == "" {
			resp.Msg = "the reading failed"
		}
	default:
		resp.Code = shared.CodeOK
		resp.Msg = "the reading is still being prepared"
	}

	log.Debug("reading polled",
		slog.String("reading_id", id.String()),
		slog.String("status", string(reading.Status)))
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// ListHistory handles GET /api/tarot/history?page=&page_size=.
func (h *ReadingHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	ownerID := shared.GetOwnerID(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	result, err := h.readingService.ListReadings(r.Context(), ownerID, page, pageSize)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	entries := make([]HistoryEntry, 0, len(result.Readings))
	for _, reading := range result.Readings {
		entries = append(entries, readingToHistoryEntry(reading))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, HistoryResponse{
		Envelope: shared.OK("ok"),
		Data: HistoryData{
			List:     entries,
			Total:    result.Total,
			Page:     result.Page,
			PageSize: result.PageSize,
		},
	})
}

// DeleteReading handles POST /api/tarot/delete.
func (h *ReadingHandler) DeleteReading(w http.ResponseWriter, r *http.Request) {
	ownerID := shared.GetOwnerID(r.Context())

	var req DeleteReadingRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "reading id is required")
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid reading id")
		return
	}

	if err := h.readingService.DeleteReading(r.Context(), id, ownerID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, shared.OK("reading deleted"))
}

// DeleteAllReadings handles POST /api/tarot/delete_all.
func (h *ReadingHandler) DeleteAllReadings(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID := shared.GetOwnerID(r.Context())

	count, err := h.readingService.DeleteAllReadings(r.Context(), ownerID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("history cleared", slog.Int64("deleted_count", count))
	shared.RespondWithJSON(w, r, http.StatusOK, DeleteAllResponse{
		Envelope:     shared.OK("history cleared"),
		DeletedCount: count,
	})
}

// readingToHistoryEntry maps a reading to its listing shape. Completed
// readings expose the parsed result; failed ones expose nothing beyond the
// status, matching the poll endpoint.
func readingToHistoryEntry(reading *domain.ReadingTask) HistoryEntry {
	entry := HistoryEntry{
		ID:        reading.ID.String(),
		Question:  reading.Question,
		Cards:     reading.Cards,
		Spread:    reading.Spread,
		Positions: reading.Positions,
		Status:    reading.Status,
		CreatedAt: reading.CreatedAt,
	}
	if reading.Status == domain.ReadingStatusCompleted {
		result := domain.ParseStoredResult(reading.Result)
		entry.Result = &result
	}
	return entry
}
