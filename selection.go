package easel

// Selection tracks the primary and multi-selection state for one document.
// Membership is kept in insertion order; the anchor for range clicks is the
// last singly- or toggle-selected item, resolved against the display list at
// range time so layer reordering between clicks stays correct.
//
// Every public command fires the selectionChanged callbacks exactly once,
// after all membership changes for that command are applied.
type Selection struct {
	doc *Document

	ids     []ItemID // insertion order; "last selected" is the final entry
	primary ItemID   // empty when nothing is selected
	anchor  ItemID   // range-click anchor; empty when unset

	listeners []func()
}

// NewSelection creates a selection manager bound to doc.
func NewSelection(doc *Document) *Selection {
	if doc == nil {
		panic("easel: selection requires a document")
	}
	return &Selection{doc: doc}
}

// AddChangeListener registers a callback fired once per selection command.
func (s *Selection) AddChangeListener(fn func()) {
	s.listeners = append(s.listeners, fn)
}

func (s *Selection) notify() {
	for _, fn := range s.listeners {
		fn()
	}
}

// IDs returns the selected IDs in insertion order. The returned slice must
// not be mutated.
func (s *Selection) IDs() []ItemID {
	return s.ids
}

// Primary returns the primary selected item, or ok=false when the
// selection is empty.
func (s *Selection) Primary() (ItemID, bool) {
	return s.primary, s.primary != ""
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id ItemID) bool {
	return s.indexOf(id) >= 0
}

// Len returns the number of selected items.
func (s *Selection) Len() int {
	return len(s.ids)
}

// Click applies plain-click semantics: the item becomes the sole selection,
// the primary, and the range anchor.
func (s *Selection) Click(id ItemID) {
	if _, ok := s.doc.Get(id); !ok {
		return
	}
	s.ids = s.ids[:0]
	s.ids = append(s.ids, id)
	s.primary = id
	s.anchor = id
	s.notify()
}

// ToggleClick applies modifier-click semantics: a selected item is removed
// (primary falls back to the last remaining member), an unselected item is
// added and becomes primary and anchor. Other members are untouched.
func (s *Selection) ToggleClick(id ItemID) {
	if _, ok := s.doc.Get(id); !ok {
		return
	}
	if i := s.indexOf(id); i >= 0 {
		s.ids = append(s.ids[:i], s.ids[i+1:]...)
		if s.primary == id {
			if len(s.ids) > 0 {
				s.primary = s.ids[len(s.ids)-1]
			} else {
				s.primary = ""
			}
		}
	} else {
		s.ids = append(s.ids, id)
		s.primary = id
		s.anchor = id
	}
	s.notify()
}

// RangeClick applies shift-click semantics: the selection becomes exactly
// the contiguous display-order range between the anchor and the clicked
// item, inclusive, and the clicked item becomes primary. Without a live
// anchor it degrades to a plain click.
func (s *Selection) RangeClick(id ItemID) {
	if _, ok := s.doc.Get(id); !ok {
		return
	}
	display := s.doc.DisplayList()
	ai := indexInList(display, s.anchor)
	ci := indexInList(display, id)
	if ai < 0 || ci < 0 {
		s.Click(id)
		return
	}
	lo, hi := ai, ci
	if lo > hi {
		lo, hi = hi, lo
	}
	s.ids = s.ids[:0]
	s.ids = append(s.ids, display[lo:hi+1]...)
	s.primary = id
	s.notify()
}

// Clear empties the selection and drops the anchor.
func (s *Selection) Clear() {
	if len(s.ids) == 0 && s.primary == "" {
		return
	}
	s.ids = s.ids[:0]
	s.primary = ""
	s.anchor = ""
	s.notify()
}

// SelectAll selects every item; the topmost item in display order becomes
// primary. No-op on an empty document.
func (s *Selection) SelectAll() {
	display := s.doc.DisplayList()
	if len(display) == 0 {
		return
	}
	s.ids = append(s.ids[:0], display...)
	s.primary = display[0]
	s.notify()
}

// selectExactly replaces the selection with exactly the given IDs, in order,
// skipping IDs absent from the document. The last surviving entry becomes
// primary and anchor. Fires one notification, so multi-item commands (paste,
// duplicate) keep the one-notification-per-command contract.
func (s *Selection) selectExactly(ids []ItemID) {
	s.ids = s.ids[:0]
	for _, id := range ids {
		if _, ok := s.doc.Get(id); ok {
			s.ids = append(s.ids, id)
		}
	}
	if len(s.ids) > 0 {
		s.primary = s.ids[len(s.ids)-1]
		s.anchor = s.primary
	} else {
		s.primary = ""
		s.anchor = ""
	}
	s.notify()
}

// Revalidate drops selected IDs that no longer exist in the document, as
// after remove, undo, or redo. Fires a notification only if membership
// actually changed.
func (s *Selection) Revalidate() {
	changed := false
	kept := s.ids[:0]
	for _, id := range s.ids {
		if _, ok := s.doc.Get(id); ok {
			kept = append(kept, id)
		} else {
			changed = true
		}
	}
	s.ids = kept
	if _, ok := s.doc.Get(s.primary); !ok && s.primary != "" {
		s.primary = ""
		changed = true
	}
	if s.primary == "" && len(s.ids) > 0 {
		s.primary = s.ids[len(s.ids)-1]
		changed = true
	}
	if _, ok := s.doc.Get(s.anchor); !ok {
		s.anchor = ""
	}
	if changed {
		s.notify()
	}
}

func (s *Selection) indexOf(id ItemID) int {
	for i, v := range s.ids {
		if v == id {
			return i
		}
	}
	return -1
}

func indexInList(list []ItemID, id ItemID) int {
	if id == "" {
		return -1
	}
	for i, v := range list {
		if v == id {
			return i
		}
	}
	return -1
}
