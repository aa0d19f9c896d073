package store

// EventKind names the classification outcomes the store emits.
type EventKind string

const (
	EventFirstVersion EventKind = "first-version-created"
	EventRevision     EventKind = "revision-applied"
	EventDuplicate    EventKind = "duplicate-dropped"
)

// Event describes one classification outcome for one candidate record.
type Event struct {
	Kind       EventKind
	Table      string
	Identifier any
	Version    int
}

// EventSink receives classification events. Implementations must not block;
// the store publishes synchronously from inside the write transaction.
type EventSink interface {
	Publish(Event)
}
