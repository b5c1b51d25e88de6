package action

type firing struct {
	trigger string
	seq     int64
}

// FiredSet remembers which triggers already fired for which log entries, so
// re-evaluating a window never fires a trigger twice for one entry.
type FiredSet struct {
	fired map[firing]struct{}
}

// NewFiredSet creates an empty set.
func NewFiredSet() *FiredSet {
	return &FiredSet{fired: make(map[firing]struct{})}
}

// Mark records a firing. It returns false if the trigger already fired for the entry.
func (f *FiredSet) Mark(triggerID string, seq int64) bool {
	key := firing{trigger: triggerID, seq: seq}
	if _, ok := f.fired[key]; ok {
		return false
	}
	f.fired[key] = struct{}{}
	return true
}

// Fired reports whether the trigger fired for the entry.
func (f *FiredSet) Fired(triggerID string, seq int64) bool {
	_, ok := f.fired[firing{trigger: triggerID, seq: seq}]
	return ok
}

// Len returns the number of recorded firings.
func (f *FiredSet) Len() int {
	return len(f.fired)
}
