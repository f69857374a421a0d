// Package pubsub carries analysis and log events from producers to any number
// of non-blocking subscribers.
package pubsub

import "time"

// EventType names what happened.
type EventType string

const (
	// AnalyzedEvent follows a pass whose results may differ from the last one.
	AnalyzedEvent EventType = "analyzed"
	// ClearedEvent follows dropping cached analysis state.
	ClearedEvent EventType = "cleared"
	// LoggedEvent carries a log entry.
	LoggedEvent EventType = "logged"
)

// Event is one published payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}
