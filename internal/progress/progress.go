// Package progress reports how far a batch of transformations has got.
package progress

import "time"

// Event carries progress from a batch run to the renderer.
type Event struct {
	Done    int
	Total   int
	Message string
	Elapsed time.Duration
	Error   error
}

// Percent is Done/Total, clamped to 0..1.
func (e Event) Percent() float64 {
	if e.Total <= 0 {
		return 0
	}
	return min(1, max(0, float64(e.Done)/float64(e.Total)))
}

// Complete reports whether every item has been processed.
func (e Event) Complete() bool {
	return e.Total > 0 && e.Done >= e.Total
}

// Callback is the function signature for progress event handlers.
type Callback func(Event)

// NopCallback is a no-op progress callback for tests and quiet mode.
func NopCallback(Event) {}

// NewEvent creates an Event with the elapsed time filled in.
func NewEvent(done, total int, msg string, start time.Time) Event {
	return Event{
		Done:    done,
		Total:   total,
		Message: msg,
		Elapsed: time.Since(start),
	}
}
