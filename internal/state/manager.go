package state

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// WordReconciler is the word side of a frame. Update runs before the camera
// is positioned; UpdatePoses runs once the camera transform is final.
type WordReconciler interface {
	Update(frame int32, newWords []types.NewWordData, results []types.WordResultData)
	UpdatePoses(camera types.Transform)
	SetSlotsNotFound()
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	Mode          types.WorldCenterMode
	WorldCenterID types.TrackableID

	// Words may be nil when text tracking is not used.
	Words    WordReconciler
	Observer types.FrameObserver
	Logger   *slog.Logger
}

// Manager runs the per-frame reconciliation order over the registry:
// found queue, anchor selection, words, camera, trackable poses, statuses,
// word poses, then virtual buttons.
type Manager struct {
	mode     types.WorldCenterMode
	centerID types.TrackableID
	words    WordReconciler
	observer types.FrameObserver
	logger   *slog.Logger

	registry *Registry
	queue    *FoundQueue
	camera   types.Transform
	anchor   types.TrackableID
	active   []*TrackableBehaviour

	last    FrameInput
	hasLast bool
}

// NewManager returns a manager with an empty registry and the camera at the
// world origin.
func NewManager(cfg ManagerConfig) *Manager {
	m := &Manager{
		mode:     cfg.Mode,
		centerID: cfg.WorldCenterID,
		words:    cfg.Words,
		observer: cfg.Observer,
		logger:   cfg.Logger,
		registry: NewRegistry(),
		queue:    NewFoundQueue(),
		camera:   types.IdentityTransform(),
		anchor:   types.NoTrackable,
	}
	if m.mode == "" {
		m.mode = types.WorldCenterCamera
	}
	if m.observer == nil {
		m.observer = types.NopObserver{}
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

func (m *Manager) Registry() *Registry { return m.registry }

func (m *Manager) FoundQueue() *FoundQueue { return m.queue }

func (m *Manager) Mode() types.WorldCenterMode { return m.mode }

// Camera returns the current camera transform.
func (m *Manager) Camera() types.Transform { return m.camera }

// SetCamera places the camera. In camera mode the transform is kept as is;
// in the anchored modes it holds until an anchor is next visible.
func (m *Manager) SetCamera(t types.Transform) { m.camera = t }

// Anchor returns the world center anchor chosen in the last frame, or
// NoTrackable.
func (m *Manager) Anchor() types.TrackableID { return m.anchor }

// ActiveTrackables returns the enabled behaviours that were visible in the
// last frame, in id order.
func (m *Manager) ActiveTrackables() []*TrackableBehaviour {
	out := make([]*TrackableBehaviour, len(m.active))
	copy(out, m.active)
	return out
}

// LastFrame returns the most recently reconciled input.
func (m *Manager) LastFrame() (FrameInput, bool) { return m.last, m.hasLast }

// Reconcile applies one frame. Reconciling the same input twice in a row
// leaves the state unchanged the second time.
func (m *Manager) Reconcile(in FrameInput) {
	if in.Results == nil {
		in.Results = NewFrameResultSet(nil)
	}

	m.queue.Update(in.Results)
	m.queue.EvictDisabled(func(id types.TrackableID) bool {
		b, ok := m.registry.Lookup(id)
		return ok && !b.Enabled
	})
	m.anchor = m.selectAnchor()

	if m.words != nil {
		m.words.Update(in.Index, in.NewWords, in.WordResults)
	}

	m.positionCamera(in)
	m.positionTrackables(in)
	m.updateStatuses(in)

	if m.words != nil {
		m.words.UpdatePoses(m.camera)
	}

	ReconcileButtons(m.registry.Behaviours(), in.VirtualButtons, func(id types.TrackableID, pressed bool) {
		m.observer.VirtualButtonChanged(in.Index, id, pressed)
	})

	m.last = in
	m.hasLast = true
}

// ReconcileLast re-applies the last frame, as done while paused.
func (m *Manager) ReconcileLast() bool {
	if !m.hasLast {
		return false
	}
	m.Reconcile(m.last)
	return true
}

func (m *Manager) selectAnchor() types.TrackableID {
	switch m.mode {
	case types.WorldCenterSpecificTarget:
		return m.centerID
	case types.WorldCenterFirstTarget:
		if id, ok := m.queue.Head(); ok {
			return id
		}
	}
	return types.NoTrackable
}

func (m *Manager) positionCamera(in FrameInput) {
	if m.anchor == types.NoTrackable {
		return
	}
	b, ok := m.registry.Lookup(m.anchor)
	if !ok || !b.Enabled {
		return
	}
	r, ok := in.Results.Get(m.anchor)
	if !ok || !r.Status.Visible() {
		return
	}
	m.camera = PositionCamera(b.Transform, r.Pose)
	m.observer.CameraMoved(in.Index, m.anchor, m.camera)
}

func (m *Manager) positionTrackables(in FrameInput) {
	for _, r := range in.Results.Results() {
		if r.ID == m.anchor || !r.Status.Visible() {
			continue
		}
		b, ok := m.registry.Lookup(r.ID)
		if !ok || !b.Enabled {
			continue
		}
		b.Transform = PositionTrackable(m.camera, r.Pose)
	}
}

func (m *Manager) updateStatuses(in FrameInput) {
	m.active = m.active[:0]
	for _, b := range m.registry.Behaviours() {
		if !b.Enabled {
			continue
		}
		cur := in.Results.Status(b.ID())
		if prev, changed := b.setStatus(cur); changed {
			m.observer.TrackableStatusChanged(in.Index, b.ID(), prev, cur)
		}
		if cur.Visible() {
			m.active = append(m.active, b)
		}
	}
}

// AssociateDataSet binds every trackable of ds. A trackable whose name
// matches one of authored is bound to that behaviour as user-authored; the
// rest get auto-created placeholders. Returns the bound behaviours in data
// set order.
func (m *Manager) AssociateDataSet(ds types.DataSet, authored []*TrackableBehaviour) ([]*TrackableBehaviour, error) {
	byName := make(map[string]*TrackableBehaviour, len(authored))
	for _, b := range authored {
		if b != nil && !m.registry.IsDestroyed(b) {
			byName[b.Trackable.Name] = b
		}
	}

	bound := make([]*TrackableBehaviour, 0, len(ds.Trackables))
	for _, t := range ds.Trackables {
		b, ok := byName[t.Name]
		if ok {
			b.Origin = types.OriginUserAuthored
			b.Trackable.ID = t.ID
			b.Trackable.Type = t.Type
			for _, vb := range t.VirtualButtons {
				b.AddVirtualButton(vb)
			}
			delete(byName, t.Name)
		} else {
			if existing, found := m.registry.Lookup(t.ID); found && existing.Origin == types.OriginUserAuthored {
				bound = append(bound, existing)
				continue
			}
			b = NewBehaviour(t, types.OriginAutoCreated)
			m.logger.Debug("state: auto-creating behaviour", "id", t.ID, "name", t.Name, "type", t.Type)
		}
		if err := m.registry.Bind(t.ID, b); err != nil {
			return bound, fmt.Errorf("associating %q from %s: %w", t.Name, ds.Path, err)
		}
		bound = append(bound, b)
	}
	return bound, nil
}

// UnloadDataSet unbinds every trackable of ds. Auto-created behaviours are
// destroyed; user-authored ones are marked NOT_FOUND and kept for a later
// AssociateDataSet.
func (m *Manager) UnloadDataSet(ds types.DataSet) {
	for _, t := range ds.Trackables {
		b, ok := m.registry.Lookup(t.ID)
		if !ok {
			continue
		}
		m.markNotFound(b)
		m.queue.Remove(t.ID)
		if b.Origin == types.OriginAutoCreated {
			m.registry.MarkDestroyed(b)
		} else {
			m.registry.Unbind(t.ID)
		}
	}
	m.rebuildActive()
}

// DestroyTrackableBehaviour destroys the behaviour bound to id. A destroyed
// behaviour is never bound again.
func (m *Manager) DestroyTrackableBehaviour(id types.TrackableID) error {
	b, ok := m.registry.Lookup(id)
	if !ok {
		return fmt.Errorf("destroying %d: %w", id, types.ErrNotBound)
	}
	m.registry.MarkDestroyed(b)
	m.queue.Remove(id)
	m.rebuildActive()
	return nil
}

// EnableTrackable switches reconciliation for id on or off.
func (m *Manager) EnableTrackable(id types.TrackableID, enabled bool) error {
	b, ok := m.registry.Lookup(id)
	if !ok {
		return fmt.Errorf("enabling %d: %w", id, types.ErrNotBound)
	}
	b.Enabled = enabled
	if !enabled {
		m.rebuildActive()
	}
	return nil
}

// SetNotFound marks every behaviour handled by kind NOT_FOUND, as when that
// tracker stops.
func (m *Manager) SetNotFound(kind types.TrackerKind) {
	for _, b := range m.registry.Behaviours() {
		if kind.Handles(b.Trackable.Type) {
			m.markNotFound(b)
			m.queue.Remove(b.ID())
		}
	}
	if kind == types.TrackerText && m.words != nil {
		m.words.SetSlotsNotFound()
	}
	m.rebuildActive()
}

func (m *Manager) markNotFound(b *TrackableBehaviour) {
	if prev, changed := b.setStatus(types.StatusNotFound); changed {
		m.observer.TrackableStatusChanged(m.last.Index, b.ID(), prev, types.StatusNotFound)
	}
}

func (m *Manager) rebuildActive() {
	kept := m.active[:0]
	for _, b := range m.active {
		cur, ok := m.registry.Lookup(b.ID())
		if ok && cur == b && b.Enabled && b.status.Visible() {
			kept = append(kept, b)
		}
	}
	m.active = kept
}
