package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/fieldops-scheduler/internal/application"
	"github.com/example/fieldops-scheduler/internal/scheduling"
)

type workerContextProvider interface {
	WorkerScheduleContext(ctx context.Context, workerID string) (application.WorkerScheduleContext, error)
}

type WorkerHandler struct {
	provider  workerContextProvider
	responder responder
}

func NewWorkerHandler(provider workerContextProvider, logger *slog.Logger) *WorkerHandler {
	return &WorkerHandler{provider: provider, responder: newResponder(logger)}
}

// Context serves the derived schedule context for one worker.
func (h *WorkerHandler) Context(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.provider == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workerID, ok := WorkerIDFromContext(r.Context())
	if !ok || strings.TrimSpace(workerID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkerID)
		return
	}

	workerContext, err := h.provider.WorkerScheduleContext(r.Context(), workerID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toWorkerContextDTO(workerContext))
}

type workerContextDTO struct {
	WorkerID              string                  `json:"worker_id"`
	CurrentSchedule       []scheduleEntryDTO      `json:"current_schedule"`
	AvailabilityWindows   []availabilityWindowDTO `json:"availability_windows,omitempty"`
	PreferredWorkingHours workingHoursDTO         `json:"preferred_working_hours"`
	BuildingAssignments   []string                `json:"building_assignments,omitempty"`
	ConflictingTasks      []scheduleEntryDTO      `json:"conflicting_tasks"`
	RecommendedSlots      []recommendedSlotDTO    `json:"recommended_slots"`
	LastUpdated           string                  `json:"last_updated"`
}

type availabilityWindowDTO struct {
	Weekday     string `json:"weekday"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
}

type workingHoursDTO struct {
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

type recommendedSlotDTO struct {
	Start         string  `json:"start"`
	End           string  `json:"end"`
	Confidence    float64 `json:"confidence"`
	Reasoning     string  `json:"reasoning"`
	ConflictLevel string  `json:"conflict_level"`
	BuildingID    string  `json:"building_id,omitempty"`
}

func toWorkerContextDTO(in application.WorkerScheduleContext) workerContextDTO {
	out := workerContextDTO{
		WorkerID:        in.WorkerID,
		CurrentSchedule: toScheduleEntryDTOs(in.CurrentSchedule),
		PreferredWorkingHours: workingHoursDTO{
			StartMinute: in.PreferredWorkingHours.StartMinute,
			EndMinute:   in.PreferredWorkingHours.EndMinute,
		},
		BuildingAssignments: append([]string(nil), in.BuildingAssignments...),
		ConflictingTasks:    toScheduleEntryDTOs(in.ConflictingTasks),
		RecommendedSlots:    toRecommendedSlotDTOs(in.RecommendedSlots),
		LastUpdated:         in.LastUpdated.UTC().Format(time.RFC3339Nano),
	}
	for _, window := range in.AvailabilityWindows {
		out.AvailabilityWindows = append(out.AvailabilityWindows, availabilityWindowDTO{
			Weekday:     window.Weekday.String(),
			StartMinute: window.StartMinute,
			EndMinute:   window.EndMinute,
		})
	}
	return out
}

func toRecommendedSlotDTOs(slots []scheduling.Slot) []recommendedSlotDTO {
	if len(slots) == 0 {
		return nil
	}
	out := make([]recommendedSlotDTO, 0, len(slots))
	for _, slot := range slots {
		out = append(out, recommendedSlotDTO{
			Start:         slot.Start.UTC().Format(time.RFC3339Nano),
			End:           slot.End.UTC().Format(time.RFC3339Nano),
			Confidence:    slot.Confidence,
			Reasoning:     slot.Reasoning,
			ConflictLevel: string(slot.ConflictLevel),
			BuildingID:    slot.BuildingID,
		})
	}
	return out
}
