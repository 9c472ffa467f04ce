package types

// TrackableEventHandler is notified when a trackable behaviour's status
// changes.
type TrackableEventHandler interface {
	OnTrackableStateChanged(previous, current Status)
}

// VirtualButtonEventHandler is notified on virtual button edges.
type VirtualButtonEventHandler interface {
	OnButtonPressed(id TrackableID)
	OnButtonReleased(id TrackableID)
}

// FrameObserver receives every outbound event of a session, tagged with the
// frame index it happened in. Used for journaling.
type FrameObserver interface {
	TrackableStatusChanged(frame int32, id TrackableID, previous, current Status)
	VirtualButtonChanged(frame int32, id TrackableID, pressed bool)
	WordDetected(frame int32, word Word)
	WordLost(frame int32, word Word)
	CameraMoved(frame int32, anchor TrackableID, camera Transform)
}

// TrackableEventFunc adapts a function to TrackableEventHandler.
type TrackableEventFunc func(previous, current Status)

// OnTrackableStateChanged calls f.
func (f TrackableEventFunc) OnTrackableStateChanged(previous, current Status) {
	f(previous, current)
}

// NopObserver discards every event.
type NopObserver struct{}

func (NopObserver) TrackableStatusChanged(int32, TrackableID, Status, Status) {}
func (NopObserver) VirtualButtonChanged(int32, TrackableID, bool)             {}
func (NopObserver) WordDetected(int32, Word)                                  {}
func (NopObserver) WordLost(int32, Word)                                      {}
func (NopObserver) CameraMoved(int32, TrackableID, Transform)                 {}
