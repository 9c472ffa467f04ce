package session

import "github.com/mesh-intelligence/trackstate/pkg/types"

// multiObserver fans events out to every observer in order.
type multiObserver []types.FrameObserver

func (m multiObserver) TrackableStatusChanged(frame int32, id types.TrackableID, prev, cur types.Status) {
	for _, o := range m {
		o.TrackableStatusChanged(frame, id, prev, cur)
	}
}

func (m multiObserver) VirtualButtonChanged(frame int32, id types.TrackableID, pressed bool) {
	for _, o := range m {
		o.VirtualButtonChanged(frame, id, pressed)
	}
}

func (m multiObserver) WordDetected(frame int32, w types.Word) {
	for _, o := range m {
		o.WordDetected(frame, w)
	}
}

func (m multiObserver) WordLost(frame int32, w types.Word) {
	for _, o := range m {
		o.WordLost(frame, w)
	}
}

func (m multiObserver) CameraMoved(frame int32, anchor types.TrackableID, camera types.Transform) {
	for _, o := range m {
		o.CameraMoved(frame, anchor, camera)
	}
}
