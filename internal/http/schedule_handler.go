package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/fieldops-scheduler/internal/application"
	"github.com/example/fieldops-scheduler/internal/scheduling"
)

type scheduleCoordinator interface {
	ScheduleTask(ctx context.Context, params application.ScheduleTaskParams) (scheduling.ScheduleEntry, error)
	RescheduleTask(ctx context.Context, scheduleID string, newAt time.Time, reason string) (scheduling.ScheduleEntry, error)
	CancelScheduledTask(ctx context.Context, scheduleID string, reason string) (scheduling.ScheduleEntry, error)
	ConfirmScheduledTask(ctx context.Context, scheduleID string) (scheduling.ScheduleEntry, error)
	ScheduledTasks(workerID string, query application.ScheduleQuery) []scheduling.ScheduleEntry
	ScheduledTasksForBuilding(buildingID string, query application.ScheduleQuery) []scheduling.ScheduleEntry
	LastError() error
}

type ScheduleHandler struct {
	coordinator scheduleCoordinator
	responder   responder
}

func NewScheduleHandler(coordinator scheduleCoordinator, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{coordinator: coordinator, responder: newResponder(logger)}
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.coordinator == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	entry, err := h.coordinator.ScheduleTask(r.Context(), req.toParams())
	if err != nil && entry.ID == "" {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	// A non-empty entry alongside an error means the placement was applied
	// but a side effect failed. The entry is still returned; the condition
	// surfaces through the warning field.
	response := scheduleResponse{Entry: toScheduleEntryDTO(entry)}
	if err != nil {
		response.Warning = err.Error()
	} else if lastErr := h.coordinator.LastError(); errors.Is(lastErr, application.ErrOptimizationFailed) {
		response.Warning = lastErr.Error()
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, response)
}

func (h *ScheduleHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.coordinator == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	scheduleID, ok := ScheduleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(scheduleID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidScheduleID)
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	newAt := parseTime(req.NewTime)
	if newAt.IsZero() {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("new_time must be an RFC3339 timestamp"))
		return
	}

	entry, err := h.coordinator.RescheduleTask(r.Context(), scheduleID, newAt, strings.TrimSpace(req.Reason))
	if err != nil && entry.ID == "" {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	response := scheduleResponse{Entry: toScheduleEntryDTO(entry)}
	if err != nil {
		response.Warning = err.Error()
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *ScheduleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.coordinator == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	scheduleID, ok := ScheduleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(scheduleID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidScheduleID)
		return
	}

	var req cancelRequest
	if r.Body != nil {
		// An empty body is a valid cancellation without a reason.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	entry, err := h.coordinator.CancelScheduledTask(r.Context(), scheduleID, strings.TrimSpace(req.Reason))
	if err != nil && entry.ID == "" {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	response := scheduleResponse{Entry: toScheduleEntryDTO(entry)}
	if err != nil {
		response.Warning = err.Error()
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *ScheduleHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.coordinator == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	scheduleID, ok := ScheduleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(scheduleID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidScheduleID)
		return
	}

	entry, err := h.coordinator.ConfirmScheduledTask(r.Context(), scheduleID)
	if err != nil && entry.ID == "" {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	response := scheduleResponse{Entry: toScheduleEntryDTO(entry)}
	if err != nil {
		response.Warning = err.Error()
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.coordinator == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	values := r.URL.Query()
	workerID := strings.TrimSpace(values.Get("worker_id"))
	buildingID := strings.TrimSpace(values.Get("building_id"))
	if workerID == "" && buildingID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("worker_id or building_id is required"))
		return
	}

	query := buildScheduleQuery(values)

	var entries []scheduling.ScheduleEntry
	if workerID != "" {
		entries = h.coordinator.ScheduledTasks(workerID, query)
	} else {
		entries = h.coordinator.ScheduledTasksForBuilding(buildingID, query)
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSchedulesResponse{
		Entries: toScheduleEntryDTOs(entries),
	})
}

type createScheduleRequest struct {
	TaskID                     string `json:"task_id"`
	ScheduledAt                string `json:"scheduled_at"`
	AssignedWorkerID           string `json:"assigned_worker_id"`
	BuildingID                 string `json:"building_id"`
	CreatedBy                  string `json:"created_by"`
	Priority                   string `json:"priority"`
	EstimatedDurationMinutes   int    `json:"estimated_duration_minutes"`
	RequiresWorkerConfirmation bool   `json:"requires_worker_confirmation"`
	SmartSchedulingEnabled     bool   `json:"smart_scheduling_enabled"`
}

func (r createScheduleRequest) toParams() application.ScheduleTaskParams {
	return application.ScheduleTaskParams{
		TaskID:                     strings.TrimSpace(r.TaskID),
		ScheduledAt:                parseTime(r.ScheduledAt),
		AssignedWorkerID:           strings.TrimSpace(r.AssignedWorkerID),
		BuildingID:                 strings.TrimSpace(r.BuildingID),
		CreatedBy:                  strings.TrimSpace(r.CreatedBy),
		Priority:                   scheduling.Priority(strings.TrimSpace(r.Priority)),
		EstimatedDuration:          time.Duration(r.EstimatedDurationMinutes) * time.Minute,
		RequiresWorkerConfirmation: r.RequiresWorkerConfirmation,
		SmartSchedulingEnabled:     r.SmartSchedulingEnabled,
	}
}

type rescheduleRequest struct {
	NewTime string `json:"new_time"`
	Reason  string `json:"reason"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type scheduleResponse struct {
	Entry   scheduleEntryDTO `json:"entry"`
	Warning string           `json:"warning,omitempty"`
}

type listSchedulesResponse struct {
	Entries []scheduleEntryDTO `json:"entries"`
}

type scheduleEntryDTO struct {
	ID                         string `json:"id"`
	TaskID                     string `json:"task_id"`
	ScheduledAt                string `json:"scheduled_at"`
	AssignedWorkerID           string `json:"assigned_worker_id,omitempty"`
	BuildingID                 string `json:"building_id"`
	CreatedBy                  string `json:"created_by,omitempty"`
	Priority                   string `json:"priority"`
	EstimatedDurationMinutes   int    `json:"estimated_duration_minutes"`
	Status                     string `json:"status"`
	RequiresWorkerConfirmation bool   `json:"requires_worker_confirmation"`
	SmartSchedulingEnabled     bool   `json:"smart_scheduling_enabled"`
	CreatedAt                  string `json:"created_at"`
	UpdatedAt                  string `json:"updated_at"`
}

func toScheduleEntryDTO(entry scheduling.ScheduleEntry) scheduleEntryDTO {
	return scheduleEntryDTO{
		ID:                         entry.ID,
		TaskID:                     entry.TaskID,
		ScheduledAt:                entry.ScheduledAt.UTC().Format(time.RFC3339Nano),
		AssignedWorkerID:           entry.AssignedWorkerID,
		BuildingID:                 entry.BuildingID,
		CreatedBy:                  entry.CreatedBy,
		Priority:                   string(entry.Priority),
		EstimatedDurationMinutes:   int(entry.EstimatedDuration / time.Minute),
		Status:                     string(entry.Status),
		RequiresWorkerConfirmation: entry.RequiresWorkerConfirmation,
		SmartSchedulingEnabled:     entry.SmartSchedulingEnabled,
		CreatedAt:                  entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:                  entry.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toScheduleEntryDTOs(entries []scheduling.ScheduleEntry) []scheduleEntryDTO {
	if len(entries) == 0 {
		return nil
	}
	out := make([]scheduleEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toScheduleEntryDTO(entry))
	}
	return out
}

func buildScheduleQuery(values url.Values) application.ScheduleQuery {
	var query application.ScheduleQuery

	if from := parseTime(values.Get("from")); !from.IsZero() {
		query.From = &from
	}
	if to := parseTime(values.Get("to")); !to.IsZero() {
		query.To = &to
	}
	if active := strings.TrimSpace(values.Get("active")); active == "true" || active == "1" {
		query.ActiveOnly = true
	}

	return query
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Time{}
}
