package provisioning

import (
	"fmt"
	"sync"
)

// RecordingObserver is an Observer that keeps every event and message in memory.
// Tests use it to assert on what a phase reported.
type RecordingObserver struct {
	mu       sync.Mutex
	events   []Event
	messages []string
	fields   map[string]string
}

// NewRecordingObserver creates an empty recording observer.
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{fields: make(map[string]string)}
}

// Printf implements Observer.
func (m *RecordingObserver) Printf(format string, v ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, fmt.Sprintf(format, v...))
}

// Event implements Observer.
func (m *RecordingObserver) Event(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Progress implements Observer.
func (m *RecordingObserver) Progress(phase string, current, total int) {
	m.Event(Event{
		Type:    EventProgress,
		Phase:   phase,
		Message: "progress",
		Fields: map[string]string{
			"current": fmt.Sprint(current),
			"total":   fmt.Sprint(total),
		},
	})
}

// WithFields implements Observer. The returned observer shares the event log.
func (m *RecordingObserver) WithFields(fields map[string]string) Observer {
	return m
}

// Events returns a copy of the recorded events.
func (m *RecordingObserver) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// EventsOfType returns the recorded events of one type.
func (m *RecordingObserver) EventsOfType(t EventType) []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Messages returns a copy of the recorded Printf messages.
func (m *RecordingObserver) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}
