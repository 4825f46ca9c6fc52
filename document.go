package easel

import "sort"

// Background is the canvas backdrop: a solid color, optionally replaced by
// an image reference.
type Background struct {
	Color    Color
	ImageRef string
}

// Document owns the item set of one editing canvas. Items are keyed by ID;
// draw and selection order is derived by sorting on ZIndex each time it is
// needed, never cached.
//
// All mutation happens synchronously on the editing goroutine through the
// methods below; the Document performs no internal locking.
type Document struct {
	Width, Height float64
	Background    Background

	items     map[ItemID]*Item
	listeners []func()
}

// NewDocument creates an empty document with the given canvas size.
// Panics if width or height is not positive.
func NewDocument(width, height float64) *Document {
	if width <= 0 || height <= 0 {
		panic("easel: document size must be positive")
	}
	return &Document{
		Width:      width,
		Height:     height,
		Background: Background{Color: ColorWhite},
		items:      make(map[ItemID]*Item),
	}
}

// AddChangeListener registers a callback fired once after every document
// mutation command (not once per touched item). Listeners must not mutate
// the document reentrantly.
func (d *Document) AddChangeListener(fn func()) {
	d.listeners = append(d.listeners, fn)
}

// notify fires all change listeners once. Called at the end of each
// mutating command.
func (d *Document) notify() {
	for _, fn := range d.listeners {
		fn()
	}
}

// Len returns the number of items in the document.
func (d *Document) Len() int {
	return len(d.items)
}

// Get returns the item with the given ID.
func (d *Document) Get(id ItemID) (*Item, bool) {
	it, ok := d.items[id]
	return it, ok
}

// Add inserts the item on top of the stack: it receives
// max(existing ZIndex) + 1, or 0 into an empty document. The item's
// dimensions are clamped to the minimum size and placeholder numbers are
// made unique. Returns the item's ID.
func (d *Document) Add(it *Item) ItemID {
	z := 0
	if len(d.items) > 0 {
		z = d.maxZIndex() + 1
	}
	return d.AddWithZIndex(it, z)
}

// AddWithZIndex inserts the item with an explicit ZIndex, preserving
// original stacking during deserialization.
func (d *Document) AddWithZIndex(it *Item, z int) ItemID {
	if it == nil {
		panic("easel: cannot add nil item")
	}
	if it.ID == "" {
		it.ID = newItemID()
	}
	it.SetSize(it.Width, it.Height)
	it.ZIndex = z
	if it.IsPlaceholder() {
		d.ensureUniquePlaceholderNumber(it)
	}
	d.items[it.ID] = it
	d.notify()
	return it.ID
}

// Remove deletes the item from the document. Returns false if the ID is
// not present.
func (d *Document) Remove(id ItemID) bool {
	if _, ok := d.items[id]; !ok {
		return false
	}
	delete(d.items, id)
	d.notify()
	return true
}

// ItemsInZOrder returns the items sorted ascending by ZIndex (bottom first).
// Ties are broken deterministically by ID. The slice is built fresh on each
// call; callers may keep it, but it goes stale on the next mutation.
func (d *Document) ItemsInZOrder() []*Item {
	out := make([]*Item, 0, len(d.items))
	for _, it := range d.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ZIndex != out[j].ZIndex {
			return out[i].ZIndex < out[j].ZIndex
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// DisplayList returns item IDs in display order: topmost first, as a layers
// panel presents them. This is the inverse of ItemsInZOrder.
func (d *Document) DisplayList() []ItemID {
	zs := d.ItemsInZOrder()
	out := make([]ItemID, len(zs))
	for i, it := range zs {
		out[len(zs)-1-i] = it.ID
	}
	return out
}

// Bounds returns the axis-aligned union of all item rects, or the zero Rect
// for an empty document.
func (d *Document) Bounds() Rect {
	var r Rect
	for _, it := range d.items {
		r = r.Union(it.Bounds())
	}
	return r
}

// HitTest returns the visible item with the greatest ZIndex whose rect
// contains the point, or ok=false if no item qualifies.
func (d *Document) HitTest(p Point) (ItemID, bool) {
	var hit ItemID
	found := false
	for _, it := range d.ItemsInZOrder() {
		if it.Visible && it.Bounds().Contains(p.X, p.Y) {
			hit = it.ID
			found = true
		}
	}
	return hit, found
}

// --- Z-order operations ---
//
// Relative adjustments do not resolve collisions; NormalizeZIndices is
// called periodically (and by Session commands) to re-pack indices into
// 0..N-1 and stop unbounded drift.

// BringToFront raises the item above everything else. No-op for unknown IDs.
func (d *Document) BringToFront(id ItemID) {
	it, ok := d.items[id]
	if !ok {
		return
	}
	it.ZIndex = d.maxZIndex() + 1
	d.notify()
}

// SendToBack lowers the item below everything else. No-op for unknown IDs.
func (d *Document) SendToBack(id ItemID) {
	it, ok := d.items[id]
	if !ok {
		return
	}
	it.ZIndex = d.minZIndex() - 1
	d.notify()
}

// BringForward raises the item one step. Ties with an existing index are
// broken deterministically by ID during sorting.
func (d *Document) BringForward(id ItemID) {
	it, ok := d.items[id]
	if !ok {
		return
	}
	it.ZIndex++
	d.notify()
}

// SendBackward lowers the item one step.
func (d *Document) SendBackward(id ItemID) {
	it, ok := d.items[id]
	if !ok {
		return
	}
	it.ZIndex--
	d.notify()
}

// NormalizeZIndices reassigns ZIndex 0..N-1 in the current z-ascending
// order, preserving relative stacking.
func (d *Document) NormalizeZIndices() {
	d.reindexZ()
	d.notify()
}

// reindexZ re-packs indices into 0..N-1 without notifying, so commands that
// compose it with another mutation still fire a single notification.
func (d *Document) reindexZ() {
	for i, it := range d.ItemsInZOrder() {
		it.ZIndex = i
	}
}

// ReorderFromDisplayList applies a layers-panel ordering: ids are given
// top-to-bottom, and entry i receives ZIndex (N-1)-i, so the first entry
// ends up on top. IDs not present in the document are skipped, and indices
// are re-packed to 0..N-1 afterwards.
func (d *Document) ReorderFromDisplayList(ids []ItemID) {
	n := len(ids)
	for i, id := range ids {
		if it, ok := d.items[id]; ok {
			it.ZIndex = (n - 1) - i
		}
	}
	d.reindexZ()
	d.notify()
}

func (d *Document) maxZIndex() int {
	max := 0
	first := true
	for _, it := range d.items {
		if first || it.ZIndex > max {
			max = it.ZIndex
			first = false
		}
	}
	return max
}

func (d *Document) minZIndex() int {
	min := 0
	first := true
	for _, it := range d.items {
		if first || it.ZIndex < min {
			min = it.ZIndex
			first = false
		}
	}
	return min
}

// --- Placeholder numbering ---

// NextPlaceholderNumber returns one more than the highest placeholder
// number in use, starting at 1.
func (d *Document) NextPlaceholderNumber() int {
	max := 0
	for _, it := range d.items {
		if it.IsPlaceholder() && it.Image.PlaceholderNumber > max {
			max = it.Image.PlaceholderNumber
		}
	}
	return max + 1
}

// ensureUniquePlaceholderNumber reassigns the item's placeholder number if
// it collides with (or is below) the existing numbering.
func (d *Document) ensureUniquePlaceholderNumber(it *Item) {
	n := it.Image.PlaceholderNumber
	if n <= 0 {
		it.Image.PlaceholderNumber = d.NextPlaceholderNumber()
		return
	}
	for _, other := range d.items {
		if other.IsPlaceholder() && other.Image.PlaceholderNumber == n {
			it.Image.PlaceholderNumber = d.NextPlaceholderNumber()
			return
		}
	}
}

// --- Snapshot support ---

// snapshotItems returns deep clones of all items, z-sorted. Used by the
// undo history; the clones never alias live items.
func (d *Document) snapshotItems() []*Item {
	zs := d.ItemsInZOrder()
	out := make([]*Item, len(zs))
	for i, it := range zs {
		out[i] = it.Clone()
	}
	return out
}

// replaceItems swaps the document's entire item collection for the given
// (already cloned) set, as undo/redo restoration does. Fires a single
// change notification.
func (d *Document) replaceItems(items []*Item) {
	d.items = make(map[ItemID]*Item, len(items))
	for _, it := range items {
		d.items[it.ID] = it
	}
	d.notify()
}
