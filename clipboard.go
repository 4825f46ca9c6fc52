package easel

// Clipboard is an explicit copy/paste registry for items. It is constructed
// and owned by a Session (or shared between several sessions by passing the
// same instance), never a package-level global, so multiple open documents
// only share copied items when the caller wires them to.
type Clipboard struct {
	items []*Item
}

// NewClipboard creates an empty clipboard.
func NewClipboard() *Clipboard {
	return &Clipboard{}
}

// Copy replaces the clipboard contents with deep clones of the given items.
// The clipboard never aliases document items.
func (c *Clipboard) Copy(items []*Item) {
	c.items = c.items[:0]
	for _, it := range items {
		if it != nil {
			c.items = append(c.items, it.Clone())
		}
	}
}

// Paste returns fresh-identity clones of the clipboard contents, offset by
// (dx, dy). The clipboard keeps its contents, so repeated pastes yield
// independent copies. Returns nil when the clipboard is empty.
func (c *Clipboard) Paste(dx, dy float64) []*Item {
	if len(c.items) == 0 {
		return nil
	}
	out := make([]*Item, 0, len(c.items))
	for _, it := range c.items {
		p := it.CloneNewID()
		p.Left += dx
		p.Top += dy
		out = append(out, p)
	}
	return out
}

// Len returns the number of items held by the clipboard.
func (c *Clipboard) Len() int {
	return len(c.items)
}

// Clear empties the clipboard.
func (c *Clipboard) Clear() {
	c.items = c.items[:0]
}
