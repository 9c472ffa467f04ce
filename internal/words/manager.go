// Package words tracks recognized words across frames and binds them to
// pooled augmentation slots.
package words

import (
	"log/slog"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mesh-intelligence/trackstate/internal/state"
	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// Config configures a Manager.
type Config struct {
	Mode types.WordPrefabMode

	// MaxInstances caps the slots in each pool and the number of words bound
	// at once across all pools.
	MaxInstances int

	// AutoTemplate adds a generic template slot on the first frame when
	// none was added by the application.
	AutoTemplate bool

	Observer types.FrameObserver
	Logger   *slog.Logger
}

// Manager owns the tracked word set, the slot pools, and the waiting queue.
// A word moves from new to bound or waiting, and from any of those to lost.
type Manager struct {
	mode         types.WordPrefabMode
	maxInstances int
	autoTemplate bool
	observer     types.FrameObserver
	logger       *slog.Logger
	lower        cases.Caser

	tracked      map[types.TrackableID]types.Word
	trackedOrder []types.TrackableID

	frame     int32
	hasFrame  bool
	newWords  []types.Word
	lostWords []types.Word

	raw     []types.WordResultData
	results []types.WordResult

	pools      map[string][]*Slot
	poolOrder  []string
	active     map[types.TrackableID]*Slot
	waiting    []types.TrackableID
	nextSlotID int
	templated  bool
}

// NewManager returns a manager with no slots.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		mode:         cfg.Mode,
		maxInstances: cfg.MaxInstances,
		autoTemplate: cfg.AutoTemplate,
		observer:     cfg.Observer,
		logger:       cfg.Logger,
		lower:        cases.Lower(language.Und),
		tracked:      make(map[types.TrackableID]types.Word),
		pools:        make(map[string][]*Slot),
		active:       make(map[types.TrackableID]*Slot),
	}
	if m.mode == "" {
		m.mode = types.WordPrefabNone
	}
	if m.maxInstances <= 0 {
		m.maxInstances = 1
	}
	if m.observer == nil {
		m.observer = types.NopObserver{}
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// PoolKey returns the pool key for a word string.
func (m *Manager) PoolKey(s string) string {
	return m.lower.String(s)
}

// AddSlot adds an application-authored slot for words equal to word,
// ignoring case. An empty word adds a template slot.
func (m *Manager) AddSlot(word string) *Slot {
	key := TemplateKey
	if word != "" {
		key = m.PoolKey(word)
	}
	return m.addSlot(key, types.OriginUserAuthored)
}

func (m *Manager) addSlot(key string, origin types.Origin) *Slot {
	m.nextSlotID++
	s := &Slot{
		ID:        m.nextSlotID,
		Key:       key,
		Origin:    origin,
		Transform: types.IdentityTransform(),
		status:    types.StatusUnknown,
	}
	if _, ok := m.pools[key]; !ok {
		m.poolOrder = append(m.poolOrder, key)
	}
	m.pools[key] = append(m.pools[key], s)
	return s
}

// DestroySlot removes s from its pool. A bound word loses its slot and is
// not rebound until it is detected again. Template slots may be destroyed.
func (m *Manager) DestroySlot(s *Slot) {
	pool := m.pools[s.Key]
	i := slices.Index(pool, s)
	if i < 0 {
		return
	}
	if w, ok := s.Word(); ok {
		delete(m.active, w.ID)
		s.unbind()
	}
	pool = slices.Delete(pool, i, i+1)
	if len(pool) == 0 {
		delete(m.pools, s.Key)
		m.poolOrder = slices.DeleteFunc(m.poolOrder, func(k string) bool { return k == s.Key })
		return
	}
	m.pools[s.Key] = pool
}

// Update applies the word side of a frame: new words are registered, words
// missing from results are lost and release their slots, the waiting queue
// is retried, then new words are bound.
func (m *Manager) Update(frame int32, newWords []types.NewWordData, results []types.WordResultData) {
	if !m.hasFrame || frame != m.frame {
		m.newWords = nil
		m.lostWords = nil
	}
	m.frame = frame
	m.hasFrame = true
	m.ensureTemplate()

	var added []types.Word
	for _, nw := range newWords {
		if _, ok := m.tracked[nw.ID]; ok {
			continue
		}
		w := types.Word{ID: nw.ID, StringValue: nw.StringValue, Size: nw.Size}
		m.tracked[w.ID] = w
		m.trackedOrder = append(m.trackedOrder, w.ID)
		added = append(added, w)
		m.newWords = append(m.newWords, w)
		m.observer.WordDetected(frame, w)
	}

	present := make(map[types.TrackableID]bool, len(results))
	for _, r := range results {
		present[r.ID] = true
	}
	var lost []types.Word
	kept := m.trackedOrder[:0]
	for _, id := range m.trackedOrder {
		if present[id] {
			kept = append(kept, id)
			continue
		}
		w := m.tracked[id]
		delete(m.tracked, id)
		lost = append(lost, w)
		m.lostWords = append(m.lostWords, w)
		m.observer.WordLost(frame, w)
	}
	m.trackedOrder = kept
	m.raw = results

	if m.mode != types.WordPrefabDuplicate {
		return
	}

	for _, w := range lost {
		if s, ok := m.active[w.ID]; ok {
			delete(m.active, w.ID)
			s.unbind()
		}
	}

	waiting := m.waiting[:0]
	for _, id := range m.waiting {
		w, ok := m.tracked[id]
		if !ok {
			continue
		}
		if _, bound := m.active[id]; bound {
			continue
		}
		if !m.bind(w) {
			waiting = append(waiting, id)
		}
	}
	m.waiting = waiting

	for _, w := range added {
		// A word lost in the frame that introduced it never binds.
		if _, ok := m.tracked[w.ID]; !ok {
			continue
		}
		if _, bound := m.active[w.ID]; bound {
			continue
		}
		key, ok := m.poolFor(w.StringValue)
		if !ok {
			m.logger.Debug("words: no slot pool for word", "word", w.StringValue, "id", w.ID)
			continue
		}
		if !m.bindKey(w, key) {
			m.waiting = append(m.waiting, w.ID)
		}
	}
}

func (m *Manager) ensureTemplate() {
	if m.templated || m.mode != types.WordPrefabDuplicate {
		return
	}
	m.templated = true
	if _, ok := m.pools[TemplateKey]; ok || !m.autoTemplate {
		return
	}
	m.addSlot(TemplateKey, types.OriginAutoCreated)
	m.logger.Debug("words: created template slot")
}

func (m *Manager) poolFor(s string) (string, bool) {
	if key := m.PoolKey(s); len(m.pools[key]) > 0 {
		return key, true
	}
	if len(m.pools[TemplateKey]) > 0 {
		return TemplateKey, true
	}
	return "", false
}

func (m *Manager) bind(w types.Word) bool {
	key, ok := m.poolFor(w.StringValue)
	if !ok {
		return false
	}
	return m.bindKey(w, key)
}

// bindKey binds w to the first free slot of the pool, growing the pool by a
// copy of its first slot when all are taken.
func (m *Manager) bindKey(w types.Word, key string) bool {
	if len(m.active) >= m.maxInstances {
		return false
	}
	pool := m.pools[key]
	var slot *Slot
	for _, s := range pool {
		if !s.Bound() {
			slot = s
			break
		}
	}
	if slot == nil {
		if len(pool) >= m.maxInstances {
			return false
		}
		slot = m.addSlot(key, types.OriginAutoCreated)
		slot.handlers = slices.Clone(pool[0].handlers)
		m.logger.Debug("words: instantiated slot", "key", key, "slot", slot.ID)
	}
	slot.bind(w)
	m.active[w.ID] = slot
	return true
}

// UpdatePoses converts this frame's word results to world space and moves
// bound slots.
func (m *Manager) UpdatePoses(camera types.Transform) {
	m.results = m.results[:0]
	for _, r := range m.raw {
		w, ok := m.tracked[r.ID]
		if !ok {
			continue
		}
		world := state.PositionTrackable(camera, r.Pose)
		m.results = append(m.results, types.WordResult{
			Word:   w,
			Pose:   types.Pose{Position: world.Position, Orientation: world.Rotation},
			Status: r.Status,
			Obb:    r.Obb,
		})
		if s, ok := m.active[r.ID]; ok {
			offset := mgl64.Vec3{-float64(w.Size.X) / 2, 0, -float64(w.Size.Y) / 2}
			s.Transform = types.Transform{
				Position: world.Position.Add(world.Rotation.Rotate(offset)),
				Rotation: world.Rotation,
			}
			s.setStatus(r.Status)
		}
	}
}

// SetSlotsNotFound marks every bound slot NOT_FOUND without unbinding it.
func (m *Manager) SetSlotsNotFound() {
	for _, s := range m.active {
		s.setStatus(types.StatusNotFound)
	}
}

// ActiveWordResults returns the world-space results of the last frame.
func (m *Manager) ActiveWordResults() []types.WordResult {
	return slices.Clone(m.results)
}

// NewWords returns the words first seen in the last frame.
func (m *Manager) NewWords() []types.Word { return slices.Clone(m.newWords) }

// LostWords returns the words lost in the last frame.
func (m *Manager) LostWords() []types.Word { return slices.Clone(m.lostWords) }

// Tracked returns the currently tracked words in detection order.
func (m *Manager) Tracked() []types.Word {
	out := make([]types.Word, len(m.trackedOrder))
	for i, id := range m.trackedOrder {
		out[i] = m.tracked[id]
	}
	return out
}

// SlotFor returns the slot bound to word id.
func (m *Manager) SlotFor(id types.TrackableID) (*Slot, bool) {
	s, ok := m.active[id]
	return s, ok
}

// Slots returns every slot, grouped by pool in creation order.
func (m *Manager) Slots() []*Slot {
	var out []*Slot
	for _, key := range m.poolOrder {
		out = append(out, m.pools[key]...)
	}
	return out
}

// Waiting returns the ids waiting for a free slot, oldest first.
func (m *Manager) Waiting() []types.TrackableID { return slices.Clone(m.waiting) }

// ActiveCount returns the number of bound words.
func (m *Manager) ActiveCount() int { return len(m.active) }
