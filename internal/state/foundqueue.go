package state

import (
	"container/list"

	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// FoundQueue orders currently visible trackables by when they became
// visible. The head is the oldest continuously visible id.
type FoundQueue struct {
	order *list.List
	index map[types.TrackableID]*list.Element
}

// NewFoundQueue returns an empty queue.
func NewFoundQueue() *FoundQueue {
	return &FoundQueue{
		order: list.New(),
		index: make(map[types.TrackableID]*list.Element),
	}
}

// Update appends newly visible ids in delivery order and drops ids that are
// no longer visible or absent from the frame.
func (q *FoundQueue) Update(set *FrameResultSet) {
	for _, r := range set.Results() {
		if r.Status.Visible() {
			if _, ok := q.index[r.ID]; !ok {
				q.index[r.ID] = q.order.PushBack(r.ID)
			}
		}
	}
	for e := q.order.Front(); e != nil; {
		next := e.Next()
		id := e.Value.(types.TrackableID)
		if !set.Visible(id) {
			q.order.Remove(e)
			delete(q.index, id)
		}
		e = next
	}
}

// EvictDisabled removes every id for which disabled returns true.
func (q *FoundQueue) EvictDisabled(disabled func(types.TrackableID) bool) {
	for e := q.order.Front(); e != nil; {
		next := e.Next()
		id := e.Value.(types.TrackableID)
		if disabled(id) {
			q.order.Remove(e)
			delete(q.index, id)
		}
		e = next
	}
}

// Remove drops id from the queue.
func (q *FoundQueue) Remove(id types.TrackableID) {
	if e, ok := q.index[id]; ok {
		q.order.Remove(e)
		delete(q.index, id)
	}
}

// Head returns the oldest visible id.
func (q *FoundQueue) Head() (types.TrackableID, bool) {
	e := q.order.Front()
	if e == nil {
		return types.NoTrackable, false
	}
	return e.Value.(types.TrackableID), true
}

func (q *FoundQueue) Contains(id types.TrackableID) bool {
	_, ok := q.index[id]
	return ok
}

func (q *FoundQueue) Len() int { return q.order.Len() }

// IDs returns the queue from oldest to newest.
func (q *FoundQueue) IDs() []types.TrackableID {
	ids := make([]types.TrackableID, 0, q.order.Len())
	for e := q.order.Front(); e != nil; e = e.Next() {
		ids = append(ids, e.Value.(types.TrackableID))
	}
	return ids
}
