package action

// Queue holds actions waiting to begin, in the order they were queued.
type Queue struct {
	items []*Action
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{items: make([]*Action, 0, 8)}
}

// Push adds actions to the back of the queue.
func (q *Queue) Push(actions ...*Action) {
	q.items = append(q.items, actions...)
}

// PopFront removes and returns the oldest action.
func (q *Queue) PopFront() (*Action, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	a := q.items[0]
	q.items = q.items[1:]
	return a, true
}

// Remove deletes an action by ID.
func (q *Queue) Remove(id string) (*Action, bool) {
	for idx, a := range q.items {
		if a.ID == id {
			q.items = append(q.items[:idx], q.items[idx+1:]...)
			return a, true
		}
	}
	return nil, false
}

// List returns a copy of the queued actions, oldest first.
func (q *Queue) List() []*Action {
	return append([]*Action(nil), q.items...)
}

// Len returns the number of queued actions.
func (q *Queue) Len() int {
	return len(q.items)
}

// IsEmpty reports whether nothing is queued.
func (q *Queue) IsEmpty() bool {
	return len(q.items) == 0
}

// Prune drops every action keep rejects and returns their IDs.
func (q *Queue) Prune(keep func(*Action) bool) []string {
	var removed []string
	kept := q.items[:0]
	for _, a := range q.items {
		if keep(a) {
			kept = append(kept, a)
		} else {
			removed = append(removed, a.ID)
		}
	}
	q.items = kept
	return removed
}
