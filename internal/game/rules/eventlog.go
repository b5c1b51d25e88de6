package rules

import (
	"sync"
)

// Listener defines a callback that reacts to appended entries.
type Listener func(Event)

// EventLog is the append-only record of Effect Results for one match.
// Sequence numbers start at 1 and increase by one per entry.
type EventLog struct {
	mu        sync.RWMutex
	entries   []Event
	listeners []Listener // Called in subscription order
}

// NewEventLog constructs an empty event log.
func NewEventLog() *EventLog {
	return &EventLog{
		entries: make([]Event, 0, 64),
	}
}

// Append stamps the events with sequence numbers, records them and notifies
// listeners. The stamped copies are returned in order.
func (l *EventLog) Append(events ...Event) []Event {
	if len(events) == 0 {
		return nil
	}

	l.mu.Lock()
	stamped := make([]Event, 0, len(events))
	for _, evt := range events {
		evt.Seq = int64(len(l.entries)) + 1
		if evt.Timing == "" {
			evt.Timing = TimingAfter
		}
		evt.CardIDs = append([]string(nil), evt.CardIDs...)
		evt.Metadata = copyMetadata(evt.Metadata)
		l.entries = append(l.entries, evt)
		stamped = append(stamped, evt)
	}
	listeners := append([]Listener(nil), l.listeners...)
	l.mu.Unlock()

	// Listeners run outside the lock so they may read the log.
	for _, evt := range stamped {
		for _, listener := range listeners {
			listener(evt)
		}
	}
	return stamped
}

// LastSeq returns the sequence number of the newest entry, or 0 when empty.
func (l *EventLog) LastSeq() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(len(l.entries))
}

// Len returns the number of entries.
func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Entry returns the entry with the given sequence number.
func (l *EventLog) Entry(seq int64) (Event, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if seq < 1 || seq > int64(len(l.entries)) {
		return Event{}, false
	}
	return l.entries[seq-1], true
}

// Since returns every entry with a sequence number greater than seq.
func (l *EventLog) Since(seq int64) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if seq < 0 {
		seq = 0
	}
	if seq >= int64(len(l.entries)) {
		return nil
	}
	out := make([]Event, len(l.entries)-int(seq))
	copy(out, l.entries[seq:])
	return out
}

// All returns a copy of the whole log.
func (l *EventLog) All() []Event {
	return l.Since(0)
}

// Subscribe registers a listener for all entries. Listeners are called in
// the order they subscribed. A nil listener is ignored.
func (l *EventLog) Subscribe(listener Listener) {
	if listener == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, listener)
}

func copyMetadata(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
