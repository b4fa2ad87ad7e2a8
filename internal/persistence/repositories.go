package persistence

import "context"

// ScheduleStore persists schedule entries. Saving is an upsert so the
// coordinator can issue the same call for creation and mutation.
type ScheduleStore interface {
	SaveSchedule(ctx context.Context, entry ScheduleEntry) error
	GetSchedule(ctx context.Context, id string) (ScheduleEntry, error)
	ListSchedules(ctx context.Context, filter ScheduleFilter) ([]ScheduleEntry, error)
}

// WorkerDirectory exposes read-only worker attributes to the scheduling core.
type WorkerDirectory interface {
	GetWorker(ctx context.Context, id string) (Worker, error)
	ListWorkers(ctx context.Context) ([]Worker, error)
}

// WorkerRegistry extends the directory with writes used by provisioning and
// test setup; the scheduling core itself never mutates workers.
type WorkerRegistry interface {
	WorkerDirectory
	UpsertWorker(ctx context.Context, worker Worker) error
}

// TaskAnnotator stamps schedule metadata onto an originating task record.
type TaskAnnotator interface {
	AnnotateTask(ctx context.Context, annotation TaskAnnotation) error
}
