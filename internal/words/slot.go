package words

import (
	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// TemplateKey is the pool key of the generic slot used for words that have no
// pool of their own.
const TemplateKey = "Template_ID"

// Slot is a reusable augmentation bound to at most one word at a time.
type Slot struct {
	ID     int
	Key    string
	Origin types.Origin

	// Transform is the world transform of the slot, offset so that the
	// slot's origin sits at the word's corner.
	Transform types.Transform

	word     *types.Word
	status   types.Status
	handlers []types.TrackableEventHandler
}

// Word returns the bound word.
func (s *Slot) Word() (types.Word, bool) {
	if s.word == nil {
		return types.Word{}, false
	}
	return *s.word, true
}

func (s *Slot) Bound() bool { return s.word != nil }

func (s *Slot) Status() types.Status { return s.status }

// RegisterHandler adds h to the handlers notified on status changes.
func (s *Slot) RegisterHandler(h types.TrackableEventHandler) {
	s.handlers = append(s.handlers, h)
}

func (s *Slot) setStatus(st types.Status) {
	prev := s.status
	if prev == st {
		return
	}
	s.status = st
	for _, h := range s.handlers {
		h.OnTrackableStateChanged(prev, st)
	}
}

func (s *Slot) bind(w types.Word) {
	s.word = &w
}

func (s *Slot) unbind() {
	s.word = nil
	s.setStatus(types.StatusNotFound)
}
