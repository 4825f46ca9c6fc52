package easel

import (
	"fmt"
	"image"
)

// Rasterizer renders a region of the canvas to a straight-alpha pixel
// buffer, layering the given items by z-order and applying stroke, shadow,
// and opacity. The raster package provides a CPU reference implementation;
// merge-down and thumbnail generation consume this interface.
type Rasterizer interface {
	Render(region Rect, items []*Item) (*image.NRGBA, error)
}

// mergeMargin inflates the merged region slightly so anti-aliased edges are
// not clipped.
const mergeMargin = 2

// CanMergeDown reports whether the two items are eligible for merge-down:
// both present, adjacent in display order with upper directly above lower,
// and neither a placeholder. Ineligible pairs make MergeDown a no-op, so
// callers (Session) check this before pushing an undo entry.
func CanMergeDown(doc *Document, upper, lower ItemID) bool {
	upperItem, ok := doc.Get(upper)
	if !ok {
		return false
	}
	lowerItem, ok := doc.Get(lower)
	if !ok {
		return false
	}
	if upperItem.IsPlaceholder() || lowerItem.IsPlaceholder() {
		return false
	}
	display := doc.DisplayList()
	ui := indexInList(display, upper)
	li := indexInList(display, lower)
	return ui >= 0 && li == ui+1
}

// MergeDown rasterizes two display-order-adjacent layers into a single new
// image item and replaces them with it. The new item covers the union of
// both rects (inflated by a small margin), keeps the lower layer's ZIndex,
// and carries the rendered pixels in memory until the next export.
//
// Returns ok=false without touching the document when the pair is
// ineligible (see CanMergeDown). A rasterizer failure is returned as an
// error with the document unchanged.
func MergeDown(doc *Document, upper, lower ItemID, r Rasterizer) (*Item, bool, error) {
	merged, ok, err := renderMergeDown(doc, upper, lower, r)
	if err != nil || !ok {
		return nil, false, err
	}
	applyMergeDown(doc, upper, lower, merged)
	return merged, true, nil
}

// renderMergeDown rasterizes the pair into a fresh image item without
// touching the document, so callers can defer their undo snapshot until the
// render is known to succeed.
func renderMergeDown(doc *Document, upper, lower ItemID, r Rasterizer) (*Item, bool, error) {
	if !CanMergeDown(doc, upper, lower) {
		return nil, false, nil
	}
	upperItem, _ := doc.Get(upper)
	lowerItem, _ := doc.Get(lower)

	region := upperItem.Bounds().Union(lowerItem.Bounds()).Inflate(mergeMargin)
	// Render only the two source layers, lower first.
	pixels, err := r.Render(region, []*Item{lowerItem, upperItem})
	if err != nil {
		return nil, false, fmt.Errorf("merge down: %w", err)
	}

	merged := NewImageItemFromPixels(pixels)
	merged.Left = region.X
	merged.Top = region.Y
	merged.SetSize(region.Width, region.Height)
	merged.Name = lowerItem.Name
	return merged, true, nil
}

// applyMergeDown swaps the source pair for the merged item, keeping the
// lower layer's ZIndex.
func applyMergeDown(doc *Document, upper, lower ItemID, merged *Item) {
	lowerItem, _ := doc.Get(lower)
	lowerZ := lowerItem.ZIndex
	doc.Remove(upper)
	doc.Remove(lower)
	doc.AddWithZIndex(merged, lowerZ)
}
