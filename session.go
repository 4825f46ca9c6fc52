package easel

import "go.uber.org/zap"

// pasteOffset nudges pasted items so they do not land exactly on their
// source.
const pasteOffset = 10

// Session bundles one document with its selection, undo history, and
// clipboard, and exposes the command entry points the UI layer calls.
// Every command pushes at most one undo snapshot, before mutating, so each
// discrete user action undoes in one step.
//
// The clipboard may be shared across sessions by constructing them with the
// same instance; nothing else is shared.
type Session struct {
	Doc  *Document
	Sel  *Selection
	Hist *History
	Clip *Clipboard

	log *zap.Logger
}

// SessionConfig carries optional collaborators for NewSession. Zero values
// get sensible defaults: a fresh unbounded history, a private clipboard,
// and a no-op logger.
type SessionConfig struct {
	History   *History
	Clipboard *Clipboard
	Logger    *zap.Logger
}

// NewSession creates an editing session for doc.
func NewSession(doc *Document, cfg SessionConfig) *Session {
	if doc == nil {
		panic("easel: session requires a document")
	}
	if cfg.History == nil {
		cfg.History = NewHistory()
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = NewClipboard()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Session{
		Doc:  doc,
		Sel:  NewSelection(doc),
		Hist: cfg.History,
		Clip: cfg.Clipboard,
		log:  cfg.Logger,
	}
}

// PushUndo snapshots the current document state. Commands below call this
// themselves; UI code uses it before free-form mutations (drag, resize).
func (s *Session) PushUndo() {
	s.Hist.Push(s.Doc)
}

// Undo restores the previous snapshot and revalidates the selection against
// the surviving IDs. No-op (returns false) when nothing can be undone.
func (s *Session) Undo() bool {
	if !s.Hist.Undo(s.Doc) {
		return false
	}
	s.Sel.Revalidate()
	s.log.Debug("undo", zap.Int("depth", s.Hist.Depth()))
	return true
}

// Redo re-applies the most recently undone snapshot.
func (s *Session) Redo() bool {
	if !s.Hist.Redo(s.Doc) {
		return false
	}
	s.Sel.Revalidate()
	s.log.Debug("redo", zap.Int("depth", s.Hist.Depth()))
	return true
}

// AddItem adds the item on top of the stack as one undoable command and
// selects it.
func (s *Session) AddItem(it *Item) ItemID {
	s.PushUndo()
	id := s.Doc.Add(it)
	s.Sel.Click(id)
	s.log.Debug("add item", zap.String("kind", it.Kind.String()), zap.String("id", string(id)))
	return id
}

// DeleteSelected removes every selected item as one undoable command.
// No-op when the selection is empty.
func (s *Session) DeleteSelected() bool {
	ids := s.Sel.IDs()
	if len(ids) == 0 {
		return false
	}
	s.PushUndo()
	for _, id := range append([]ItemID(nil), ids...) {
		s.Doc.Remove(id)
	}
	s.Sel.Revalidate()
	s.log.Debug("delete selected", zap.Int("count", len(ids)))
	return true
}

// CopySelection copies the selected items to the clipboard in z order.
// Returns the number of items copied.
func (s *Session) CopySelection() int {
	sel := make([]*Item, 0, s.Sel.Len())
	for _, it := range s.Doc.ItemsInZOrder() {
		if s.Sel.Contains(it.ID) {
			sel = append(sel, it)
		}
	}
	s.Clip.Copy(sel)
	return len(sel)
}

// PasteClipboard pastes the clipboard contents slightly offset, on top of
// the stack, as one undoable command, and selects the pasted items.
// Returns the new IDs, or nil when the clipboard is empty.
func (s *Session) PasteClipboard() []ItemID {
	pasted := s.Clip.Paste(pasteOffset, pasteOffset)
	if len(pasted) == 0 {
		return nil
	}
	s.PushUndo()
	ids := make([]ItemID, 0, len(pasted))
	for _, it := range pasted {
		ids = append(ids, s.Doc.Add(it))
	}
	s.Sel.selectExactly(ids)
	s.log.Debug("paste", zap.Int("count", len(ids)))
	return ids
}

// Duplicate copies and pastes the selection in one command.
func (s *Session) Duplicate() []ItemID {
	if s.CopySelection() == 0 {
		return nil
	}
	return s.PasteClipboard()
}

// MergeDown flattens the selected pair (primary as upper, the item directly
// below it in display order as lower) into one image item using the given
// rasterizer. Ineligible states -- empty selection, bottom layer,
// placeholder operands -- are no-ops with no undo entry pushed.
func (s *Session) MergeDown(r Rasterizer) (*Item, bool, error) {
	upper, ok := s.Sel.Primary()
	if !ok {
		return nil, false, nil
	}
	display := s.Doc.DisplayList()
	ui := indexInList(display, upper)
	if ui < 0 || ui+1 >= len(display) {
		return nil, false, nil
	}
	lower := display[ui+1]
	// Render before snapshotting: a rasterizer failure must leave the undo
	// and redo stacks exactly as they were.
	merged, ok, err := renderMergeDown(s.Doc, upper, lower, r)
	if err != nil || !ok {
		return nil, false, err
	}
	s.PushUndo()
	applyMergeDown(s.Doc, upper, lower, merged)
	s.Sel.Click(merged.ID)
	s.log.Info("merge down",
		zap.String("upper", string(upper)),
		zap.String("lower", string(lower)),
		zap.String("merged", string(merged.ID)))
	return merged, true, nil
}

// ReorderFromDisplayList applies a layers-panel ordering as one undoable
// command. Indices come back normalized.
func (s *Session) ReorderFromDisplayList(ids []ItemID) {
	s.PushUndo()
	s.Doc.ReorderFromDisplayList(ids)
}
