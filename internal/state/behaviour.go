package state

import (
	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// TrackableBehaviour is the application-side object that represents one
// trackable. It holds the world transform written by the pose reconciler and
// the last reported status.
type TrackableBehaviour struct {
	Trackable types.Trackable
	Origin    types.Origin

	// Enabled behaviours take part in pose and status reconciliation.
	Enabled bool

	// Transform is the world-space transform. Applications may set it on
	// the world center anchor.
	Transform types.Transform

	status    types.Status
	handlers  []types.TrackableEventHandler
	buttons   []*VirtualButtonBehaviour
	destroyed bool
}

// NewBehaviour returns an enabled behaviour for t at the world origin with
// status UNKNOWN. Virtual buttons listed on t are created as auto buttons.
func NewBehaviour(t types.Trackable, origin types.Origin) *TrackableBehaviour {
	b := &TrackableBehaviour{
		Trackable: t,
		Origin:    origin,
		Enabled:   true,
		Transform: types.IdentityTransform(),
		status:    types.StatusUnknown,
	}
	for _, vb := range t.VirtualButtons {
		b.AddVirtualButton(vb)
	}
	return b
}

func (b *TrackableBehaviour) ID() types.TrackableID { return b.Trackable.ID }

func (b *TrackableBehaviour) Status() types.Status { return b.status }

// RegisterHandler adds h to the handlers notified on status changes.
func (b *TrackableBehaviour) RegisterHandler(h types.TrackableEventHandler) {
	b.handlers = append(b.handlers, h)
}

// UnregisterHandler removes h. It reports whether h was registered.
func (b *TrackableBehaviour) UnregisterHandler(h types.TrackableEventHandler) bool {
	for i, cur := range b.handlers {
		if cur == h {
			b.handlers = append(b.handlers[:i], b.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// setStatus records s and notifies handlers when it differs from the
// previous status.
func (b *TrackableBehaviour) setStatus(s types.Status) (previous types.Status, changed bool) {
	previous = b.status
	if previous == s {
		return previous, false
	}
	b.status = s
	for _, h := range b.handlers {
		h.OnTrackableStateChanged(previous, s)
	}
	return previous, true
}

// VirtualButtons returns the behaviour's buttons in creation order.
func (b *TrackableBehaviour) VirtualButtons() []*VirtualButtonBehaviour {
	return b.buttons
}

// VirtualButton returns the button named name.
func (b *TrackableBehaviour) VirtualButton(name string) (*VirtualButtonBehaviour, bool) {
	for _, vb := range b.buttons {
		if vb.Button.Name == name {
			return vb, true
		}
	}
	return nil, false
}

// AddVirtualButton attaches an enabled button to the behaviour. An existing
// button with the same name takes the new id instead.
func (b *TrackableBehaviour) AddVirtualButton(vb types.VirtualButton) *VirtualButtonBehaviour {
	if existing, ok := b.VirtualButton(vb.Name); ok {
		existing.Button.ID = vb.ID
		return existing
	}
	v := &VirtualButtonBehaviour{Button: vb, Enabled: true}
	b.buttons = append(b.buttons, v)
	return v
}

// VirtualButtonBehaviour mirrors one virtual button and fires edge events.
type VirtualButtonBehaviour struct {
	Button  types.VirtualButton
	Enabled bool

	pressed  bool
	handlers []types.VirtualButtonEventHandler
}

func (v *VirtualButtonBehaviour) Pressed() bool { return v.pressed }

// RegisterHandler adds h to the handlers notified on press and release.
func (v *VirtualButtonBehaviour) RegisterHandler(h types.VirtualButtonEventHandler) {
	v.handlers = append(v.handlers, h)
}

// setPressed fires OnButtonPressed or OnButtonReleased on an edge and reports
// whether one happened.
func (v *VirtualButtonBehaviour) setPressed(pressed bool) bool {
	if v.pressed == pressed {
		return false
	}
	v.pressed = pressed
	for _, h := range v.handlers {
		if pressed {
			h.OnButtonPressed(v.Button.ID)
		} else {
			h.OnButtonReleased(v.Button.ID)
		}
	}
	return true
}
