package easel

// History is a whole-snapshot undo/redo stack. Each entry is a deep clone
// of the full item collection at a point in time; entries never alias live
// items. Callers decide when to snapshot -- typically once per discrete
// user command, before mutating (Session follows that discipline).
//
// Snapshots are O(N) in item count; with a zero limit the stack grows
// without bound, which is fine for interactive editing at modest item
// counts. Use NewHistoryWithLimit to cap depth for very large documents.
type History struct {
	undo  [][]*Item
	redo  [][]*Item
	limit int // 0 = unbounded
}

// NewHistory creates an unbounded history.
func NewHistory() *History {
	return &History{}
}

// NewHistoryWithLimit creates a history that keeps at most limit undo
// entries, discarding the oldest when full. limit <= 0 means unbounded.
func NewHistoryWithLimit(limit int) *History {
	if limit < 0 {
		limit = 0
	}
	return &History{limit: limit}
}

// Push records a snapshot of the document's items on the undo stack and
// clears the redo stack (linear-history contract).
func (h *History) Push(doc *Document) {
	h.undo = append(h.undo, doc.snapshotItems())
	if h.limit > 0 && len(h.undo) > h.limit {
		n := len(h.undo) - h.limit
		h.undo = append(h.undo[:0], h.undo[n:]...)
	}
	h.redo = h.redo[:0]
}

// Undo restores the most recent snapshot into the document, pushing the
// current state onto the redo stack first. Returns false (leaving the
// document untouched) when the undo stack is empty.
func (h *History) Undo(doc *Document) bool {
	if len(h.undo) == 0 {
		return false
	}
	h.redo = append(h.redo, doc.snapshotItems())
	last := len(h.undo) - 1
	entry := h.undo[last]
	h.undo[last] = nil
	h.undo = h.undo[:last]
	doc.replaceItems(entry)
	return true
}

// Redo is the inverse of Undo. Returns false when the redo stack is empty.
func (h *History) Redo(doc *Document) bool {
	if len(h.redo) == 0 {
		return false
	}
	h.undo = append(h.undo, doc.snapshotItems())
	last := len(h.redo) - 1
	entry := h.redo[last]
	h.redo[last] = nil
	h.redo = h.redo[:last]
	doc.replaceItems(entry)
	return true
}

// CanUndo reports whether an undo entry is available.
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo reports whether a redo entry is available.
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// Depth returns the current undo stack depth.
func (h *History) Depth() int {
	return len(h.undo)
}
