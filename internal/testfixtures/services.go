package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/fieldops-scheduler/internal/application"
	"github.com/example/fieldops-scheduler/internal/notify"
)

// ServiceFactory assists tests with constructing coordinators using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator(""),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// CoordinatorDeps captures dependencies for constructing a coordinator. All
// collaborators are optional; a nil collaborator skips that side effect.
type CoordinatorDeps struct {
	Saver       application.ScheduleSaver
	Directory   application.WorkerDirectory
	Tasks       application.TaskAnnotator
	Notifier    notify.Notifier
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewCoordinator builds a coordinator using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewCoordinator(deps CoordinatorDeps) *application.Coordinator {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewCoordinator(
		deps.Saver,
		deps.Directory,
		deps.Tasks,
		deps.Notifier,
		idGen,
		now,
		deps.Logger,
	)
}
