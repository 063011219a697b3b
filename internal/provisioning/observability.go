package provisioning

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// Observer defines the interface for structured observability during provisioning.
type Observer interface {
	// Printf logs a free-form message.
	Printf(format string, v ...any)

	// Event emits a structured event
	Event(event Event)

	// Progress reports progress for a phase
	Progress(phase string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType         // Type of event
	Phase     string            // Phase name (e.g., "storage", "collection")
	Message   string            // Human-readable message
	Resource  string            // Resource name/ID if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventPhaseStarted indicates a provisioning phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a provisioning phase completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a provisioning phase failed.
	EventPhaseFailed EventType = "phase.failed"

	// EventResourceCreating indicates a resource is being created.
	EventResourceCreating EventType = "resource.creating"
	// EventResourceCreated indicates a resource was created successfully.
	EventResourceCreated EventType = "resource.created"
	// EventResourceExists indicates a resource already exists.
	EventResourceExists EventType = "resource.exists"
	// EventResourceFailed indicates resource creation failed.
	EventResourceFailed EventType = "resource.failed"
	// EventResourceDeleting indicates a resource is being deleted.
	EventResourceDeleting EventType = "resource.deleting"
	// EventResourceDeleted indicates a resource was deleted successfully.
	EventResourceDeleted EventType = "resource.deleted"
	// EventResourceDeleteFailed indicates a resource could not be deleted.
	EventResourceDeleteFailed EventType = "resource.delete_failed"

	// EventPolling indicates one status check of a resource that is not ready yet.
	EventPolling EventType = "resource.polling"
	// EventSettling indicates a wait for eventually consistent changes to propagate.
	EventSettling EventType = "settle"

	// EventDocumentsFailed indicates documents that could not be indexed.
	EventDocumentsFailed EventType = "documents.failed"
	// EventValidationWarning indicates a validation warning.
	EventValidationWarning EventType = "validation.warning"
	// EventValidationError indicates a validation error.
	EventValidationError EventType = "validation.error"

	// EventProgress indicates progress in a long-running operation.
	EventProgress EventType = "progress"
)

func (t EventType) isFailure() bool {
	switch t {
	case EventPhaseFailed, EventResourceFailed, EventResourceDeleteFailed, EventValidationError:
		return true
	}
	return false
}

// LogObserver implements Observer on top of a logr.Logger.
type LogObserver struct {
	log           logr.Logger
	contextFields map[string]string
}

// NewObserver creates an observer that writes to logger.
func NewObserver(logger logr.Logger) *LogObserver {
	return &LogObserver{
		log:           logger,
		contextFields: make(map[string]string),
	}
}

// NewConsoleObserver creates an observer that writes key/value lines to stderr.
func NewConsoleObserver() *LogObserver {
	return NewObserver(NewConsoleLogger())
}

// NewConsoleLogger returns a funcr logger writing to stderr.
func NewConsoleLogger() logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s %s %s\n", time.Now().Format(time.TimeOnly), prefix, args)
			return
		}
		fmt.Fprintf(os.Stderr, "%s %s\n", time.Now().Format(time.TimeOnly), args)
	}, funcr.Options{})
}

// NewDiscardObserver creates an observer that drops everything.
func NewDiscardObserver() *LogObserver {
	return NewObserver(logr.Discard())
}

// Logger returns the underlying logger.
func (o *LogObserver) Logger() logr.Logger {
	return o.log
}

// Printf implements Observer.
func (o *LogObserver) Printf(format string, v ...any) {
	o.log.Info(fmt.Sprintf(format, v...))
}

// Event implements Observer.
func (o *LogObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Merge context fields
	fields := make(map[string]string, len(event.Fields)+len(o.contextFields))
	for k, v := range o.contextFields {
		fields[k] = v
	}
	for k, v := range event.Fields {
		fields[k] = v
	}

	kv := []any{"event", string(event.Type)}
	if event.Phase != "" {
		kv = append(kv, "phase", event.Phase)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}

	if event.Type.isFailure() {
		o.log.Error(nil, event.Message, kv...)
		return
	}
	o.log.Info(event.Message, kv...)
}

// Progress implements Observer.
func (o *LogObserver) Progress(phase string, current, total int) {
	kv := []any{"event", string(EventProgress), "phase", phase, "current", current, "total", total}
	if total > 0 {
		kv = append(kv, "percent", (current*100)/total)
	}
	o.log.V(1).Info("progress", kv...)
}

// WithFields implements Observer.
func (o *LogObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string, len(o.contextFields)+len(fields))
	for k, v := range o.contextFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &LogObserver{
		log:           o.log,
		contextFields: newFields,
	}
}

// Helper functions for common events

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
		Fields: map[string]string{
			"kind": string(Classify(err)),
		},
	})
}

// LogResourceCreating logs a resource creation start event.
func LogResourceCreating(observer Observer, phase string, kind ResourceKind, name string) {
	observer.Event(Event{
		Type:     EventResourceCreating,
		Phase:    phase,
		Resource: name,
		Message:  fmt.Sprintf("creating %s", kind),
		Fields: map[string]string{
			"type": string(kind),
		},
	})
}

// LogResourceCreated logs a successful resource creation event.
func LogResourceCreated(observer Observer, phase string, kind ResourceKind, name, id string) {
	observer.Event(Event{
		Type:     EventResourceCreated,
		Phase:    phase,
		Resource: name,
		Message:  fmt.Sprintf("%s created", kind),
		Fields: map[string]string{
			"type": string(kind),
			"id":   id,
		},
	})
}

// LogResourceExists logs when a resource already exists.
func LogResourceExists(observer Observer, phase string, kind ResourceKind, name string) {
	observer.Event(Event{
		Type:     EventResourceExists,
		Phase:    phase,
		Resource: name,
		Message:  fmt.Sprintf("%s already exists", kind),
		Fields: map[string]string{
			"type": string(kind),
		},
	})
}

// LogResourceDeleting logs a resource deletion start event.
func LogResourceDeleting(observer Observer, phase string, kind ResourceKind, name string) {
	observer.Event(Event{
		Type:     EventResourceDeleting,
		Phase:    phase,
		Resource: name,
		Message:  fmt.Sprintf("deleting %s", kind),
		Fields: map[string]string{
			"type": string(kind),
		},
	})
}

// LogResourceDeleted logs a successful resource deletion event.
func LogResourceDeleted(observer Observer, phase string, kind ResourceKind, name string) {
	observer.Event(Event{
		Type:     EventResourceDeleted,
		Phase:    phase,
		Resource: name,
		Message:  fmt.Sprintf("%s deleted", kind),
		Fields: map[string]string{
			"type": string(kind),
		},
	})
}

// LogResourceDeleteFailed logs a failed resource deletion.
func LogResourceDeleteFailed(observer Observer, phase string, kind ResourceKind, name string, err error) {
	observer.Event(Event{
		Type:     EventResourceDeleteFailed,
		Phase:    phase,
		Resource: name,
		Message:  fmt.Sprintf("failed to delete %s: %v", kind, err),
		Fields: map[string]string{
			"type": string(kind),
		},
	})
}

// LogPolling logs one status check of a resource that is not ready yet.
func LogPolling(observer Observer, phase, resource, status string, attempt int) {
	observer.Event(Event{
		Type:     EventPolling,
		Phase:    phase,
		Resource: resource,
		Message:  fmt.Sprintf("waiting, status %s", status),
		Fields: map[string]string{
			"attempt": fmt.Sprint(attempt),
		},
	})
}

// LogSettle logs the start of a settle step.
func LogSettle(observer Observer, phase, reason string, d time.Duration) {
	observer.Event(Event{
		Type:    EventSettling,
		Phase:   phase,
		Message: fmt.Sprintf("waiting %v for %s", d, reason),
	})
}

// LogDocumentsFailed warns about documents an otherwise successful ingestion
// job could not index.
func LogDocumentsFailed(observer Observer, phase, jobID string, failed, scanned int64) {
	observer.Event(Event{
		Type:     EventDocumentsFailed,
		Phase:    phase,
		Resource: jobID,
		Message:  fmt.Sprintf("%d of %d documents failed to index", failed, scanned),
		Fields: map[string]string{
			"failed":  fmt.Sprint(failed),
			"scanned": fmt.Sprint(scanned),
		},
	})
}
