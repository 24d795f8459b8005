package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeDocumentStored is emitted after a document is appended to
	// the long-term store.
	EventTypeDocumentStored = "engram.document.stored"

	// EventTypeStoreCleared is emitted after the long-term store is
	// cleared on its own.
	EventTypeStoreCleared = "engram.store.cleared"

	// EventTypeMemoryReset is emitted after both memory tiers are cleared
	// together.
	EventTypeMemoryReset = "engram.memory.reset"
)

// Event is a transport-neutral payload describing a memory mutation.
type Event struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	// DocumentLength is the character length of the stored document.
	// Populated only for document.stored events.
	DocumentLength int `json:"document_length,omitempty"`

	// DocumentCount is the number of stored documents after the mutation.
	DocumentCount int `json:"document_count"`
}

// NewDocumentStoredEvent builds the event emitted after a successful insert.
func NewDocumentStoredEvent(length, count int) *Event {
	return newEvent(EventTypeDocumentStored, length, count)
}

// NewStoreClearedEvent builds the event emitted after the store is cleared.
func NewStoreClearedEvent() *Event {
	return newEvent(EventTypeStoreCleared, 0, 0)
}

// NewMemoryResetEvent builds the event emitted after a full memory reset.
func NewMemoryResetEvent() *Event {
	return newEvent(EventTypeMemoryReset, 0, 0)
}

func newEvent(eventType string, length, count int) *Event {
	return &Event{
		SchemaVersion:  SchemaVersionV1,
		EventType:      eventType,
		EventID:        uuid.NewString(),
		EmittedAt:      time.Now().UTC(),
		DocumentLength: length,
		DocumentCount:  count,
	}
}
