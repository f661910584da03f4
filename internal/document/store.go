package document

import "sync"

// Store is the single-slot holder of the current document. Upload replaces
// the slot, force cleanup clears it. The handle is passed explicitly to
// whoever needs the active document; nothing reads ambient global state.
type Store struct {
	mu  sync.Mutex
	doc *Document
}

func NewStore() *Store {
	return &Store{}
}

// Current returns the active document, or nil when none is loaded.
func (s *Store) Current() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Replace installs doc as the active document, returning the one it
// displaced (nil on first upload).
func (s *Store) Replace(doc *Document) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.doc
	s.doc = doc
	return old
}

// Clear empties the slot.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = nil
}
