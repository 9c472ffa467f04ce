package state

import (
	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// FrameResultSet indexes one frame's trackable results by id. When a frame
// reports the same id twice the later entry wins and the id keeps its first
// delivery position.
type FrameResultSet struct {
	results map[types.TrackableID]types.TrackableResult
	order   []types.TrackableID
}

// NewFrameResultSet builds a set from results in delivery order.
func NewFrameResultSet(results []types.TrackableResult) *FrameResultSet {
	s := &FrameResultSet{
		results: make(map[types.TrackableID]types.TrackableResult, len(results)),
		order:   make([]types.TrackableID, 0, len(results)),
	}
	for _, r := range results {
		if _, seen := s.results[r.ID]; !seen {
			s.order = append(s.order, r.ID)
		}
		s.results[r.ID] = r
	}
	return s
}

// Get returns the result for id.
func (s *FrameResultSet) Get(id types.TrackableID) (types.TrackableResult, bool) {
	if s == nil {
		return types.TrackableResult{}, false
	}
	r, ok := s.results[id]
	return r, ok
}

// Status returns the reported status for id, or NOT_FOUND when the frame
// carries no result for it.
func (s *FrameResultSet) Status(id types.TrackableID) types.Status {
	if r, ok := s.Get(id); ok {
		return r.Status
	}
	return types.StatusNotFound
}

// Visible reports whether id was reported DETECTED or TRACKED.
func (s *FrameResultSet) Visible(id types.TrackableID) bool {
	return s.Status(id).Visible()
}

func (s *FrameResultSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Results returns one result per id in delivery order.
func (s *FrameResultSet) Results() []types.TrackableResult {
	if s == nil {
		return nil
	}
	out := make([]types.TrackableResult, len(s.order))
	for i, id := range s.order {
		out[i] = s.results[id]
	}
	return out
}

// FrameInput is everything the reconcilers consume for one frame.
type FrameInput struct {
	Index          int32
	Results        *FrameResultSet
	VirtualButtons []types.VirtualButtonResult
	NewWords       []types.NewWordData
	WordResults    []types.WordResultData
}
