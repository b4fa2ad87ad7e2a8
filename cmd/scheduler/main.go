package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/fieldops-scheduler/internal/application"
	"github.com/example/fieldops-scheduler/internal/config"
	httptransport "github.com/example/fieldops-scheduler/internal/http"
	"github.com/example/fieldops-scheduler/internal/notify"
	"github.com/example/fieldops-scheduler/internal/persistence"
	"github.com/example/fieldops-scheduler/internal/persistence/sqlite"
	"github.com/example/fieldops-scheduler/internal/scheduling"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	store, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := store.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	notifier := notify.NewService(logger)

	coordinator := application.NewCoordinator(
		newScheduleSaverAdapter(store),
		newWorkerDirectoryAdapter(store),
		newTaskAnnotatorAdapter(store),
		notifier,
		uuid.NewString,
		time.Now,
		logger,
	)

	unsubscribe := coordinator.Subscribe(func(event application.Event) {
		logger.Info("schedule mutation applied",
			"event", string(event.Type),
			"schedule_id", event.Entry.ID,
			"worker_id", event.Entry.AssignedWorkerID,
			"scheduled_at", event.Entry.ScheduledAt,
		)
	})
	defer unsubscribe()

	if err := reloadSchedules(ctx, store, coordinator); err != nil {
		logger.Error("failed to reload persisted schedules", "error", err)
		os.Exit(1)
	}

	scheduleHandler := httptransport.NewScheduleHandler(coordinator, logger)
	workerHandler := httptransport.NewWorkerHandler(coordinator, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Schedules:  scheduleHandler,
		Workers:    workerHandler,
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("scheduling API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// reloadSchedules seeds the coordinator's in-memory state from the durable
// store so active entries survive a restart.
func reloadSchedules(ctx context.Context, store persistence.ScheduleStore, coordinator *application.Coordinator) error {
	stored, err := store.ListSchedules(ctx, persistence.ScheduleFilter{})
	if err != nil {
		return err
	}
	entries := make([]scheduling.ScheduleEntry, 0, len(stored))
	for _, model := range stored {
		entries = append(entries, toSchedulingEntry(model))
	}
	coordinator.LoadEntries(entries)
	return nil
}

type scheduleSaverAdapter struct {
	store persistence.ScheduleStore
}

func newScheduleSaverAdapter(store persistence.ScheduleStore) *scheduleSaverAdapter {
	return &scheduleSaverAdapter{store: store}
}

func (a *scheduleSaverAdapter) SaveSchedule(ctx context.Context, entry scheduling.ScheduleEntry) error {
	return a.store.SaveSchedule(ctx, toPersistenceEntry(entry))
}

type workerDirectoryAdapter struct {
	directory persistence.WorkerDirectory
}

func newWorkerDirectoryAdapter(directory persistence.WorkerDirectory) *workerDirectoryAdapter {
	return &workerDirectoryAdapter{directory: directory}
}

func (a *workerDirectoryAdapter) WorkerProfile(ctx context.Context, workerID string) (application.WorkerProfile, error) {
	worker, err := a.directory.GetWorker(ctx, workerID)
	if err != nil {
		return application.WorkerProfile{}, err
	}

	windows := make([]scheduling.AvailabilityWindow, 0, len(worker.AvailabilityWindows))
	for _, window := range worker.AvailabilityWindows {
		windows = append(windows, scheduling.AvailabilityWindow{
			Weekday:     window.Weekday,
			StartMinute: window.StartMinute,
			EndMinute:   window.EndMinute,
		})
	}

	return application.WorkerProfile{
		WorkerID:            worker.ID,
		AvailabilityWindows: windows,
		PreferredWorkingHours: scheduling.WorkingHours{
			StartMinute: worker.PreferredStartMinute,
			EndMinute:   worker.PreferredEndMinute,
		},
		BuildingAssignments: append([]string(nil), worker.BuildingIDs...),
	}, nil
}

type taskAnnotatorAdapter struct {
	store persistence.TaskAnnotator
}

func newTaskAnnotatorAdapter(store persistence.TaskAnnotator) *taskAnnotatorAdapter {
	return &taskAnnotatorAdapter{store: store}
}

func (a *taskAnnotatorAdapter) AnnotateTask(ctx context.Context, taskID, scheduleID string, scheduledAt time.Time, workerID string) error {
	return a.store.AnnotateTask(ctx, persistence.TaskAnnotation{
		TaskID:      taskID,
		ScheduleID:  scheduleID,
		ScheduledAt: scheduledAt,
		WorkerID:    workerID,
		UpdatedAt:   time.Now().UTC(),
	})
}

func toPersistenceEntry(entry scheduling.ScheduleEntry) persistence.ScheduleEntry {
	return persistence.ScheduleEntry{
		ID:                         entry.ID,
		TaskID:                     entry.TaskID,
		ScheduledAt:                entry.ScheduledAt,
		AssignedWorkerID:           entry.AssignedWorkerID,
		BuildingID:                 entry.BuildingID,
		CreatedBy:                  entry.CreatedBy,
		Priority:                   string(entry.Priority),
		EstimatedDuration:          entry.EstimatedDuration,
		Status:                     string(entry.Status),
		RequiresWorkerConfirmation: entry.RequiresWorkerConfirmation,
		SmartSchedulingEnabled:     entry.SmartSchedulingEnabled,
		CreatedAt:                  entry.CreatedAt,
		UpdatedAt:                  entry.UpdatedAt,
	}
}

func toSchedulingEntry(model persistence.ScheduleEntry) scheduling.ScheduleEntry {
	return scheduling.ScheduleEntry{
		ID:                         model.ID,
		TaskID:                     model.TaskID,
		ScheduledAt:                model.ScheduledAt,
		AssignedWorkerID:           model.AssignedWorkerID,
		BuildingID:                 model.BuildingID,
		CreatedBy:                  model.CreatedBy,
		Priority:                   scheduling.Priority(model.Priority),
		EstimatedDuration:          model.EstimatedDuration,
		Status:                     scheduling.Status(model.Status),
		RequiresWorkerConfirmation: model.RequiresWorkerConfirmation,
		SmartSchedulingEnabled:     model.SmartSchedulingEnabled,
		CreatedAt:                  model.CreatedAt,
		UpdatedAt:                  model.UpdatedAt,
	}
}
