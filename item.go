package easel

import (
	"image"

	"github.com/google/uuid"
)

// ItemID is the opaque, stable identity of an item. It is independent of the
// item's position in the z-order and survives undo/redo snapshots.
type ItemID string

// newItemID allocates a fresh identity.
func newItemID() ItemID {
	return ItemID(uuid.NewString())
}

// minItemSize is the smallest width/height an item may have.
const minItemSize = 1

// Item is one positioned visual element on the canvas. A single flat struct
// with a Kind discriminant and per-kind payload pointers is used for all
// kinds; exactly one payload pointer is non-nil for a well-formed item.
//
// Items are exclusively owned by one Document at a time and must only be
// mutated through Document/Session commands.
type Item struct {
	// Identity
	ID   ItemID
	Kind ItemKind
	Name string

	// Geometry. Width and Height are kept >= 1 by constructors, SetSize,
	// and deserialization. Rotation is in degrees, Opacity in [0, 1].
	Left, Top     float64
	Width, Height float64
	Rotation      float64
	Opacity       float64

	// Ordering & state
	ZIndex       int
	Visible      bool
	AspectLocked bool

	// Optional decorations (nil when absent)
	Stroke *Stroke
	Shadow *Shadow

	// Kind payloads (exactly one non-nil, matching Kind)
	Image   *ImageData
	Text    *TextData
	Shape   *ShapeData
	QR      *QRData
	Barcode *BarcodeData
}

// ImageData is the payload for image and placeholder items.
type ImageData struct {
	SourceRef string      // path to the image file; empty for placeholders and in-memory merges
	Pixels    image.Image // in-memory source (merge results); treated as immutable once set

	IsPlaceholder         bool
	PlaceholderNumber     int
	PlaceholderName       string
	PlaceholderBackground Color
}

// Unresolved reports whether the image has no usable source. Unresolved
// images render as an empty slot rather than failing the document.
func (d *ImageData) Unresolved() bool {
	return !d.IsPlaceholder && d.SourceRef == "" && d.Pixels == nil
}

// TextData is the payload for text items.
type TextData struct {
	Content       string
	FontFamily    string
	FontSize      float64
	Weight        FontWeight
	Style         FontStyle
	Align         TextAlign
	Color         Color
	LetterSpacing float64
	LineHeight    float64
	Vertical      bool
}

// ShapeData is the payload for shape items.
type ShapeData struct {
	Kind     ShapeKind
	Fill     Color
	NoFill   bool
	NoStroke bool
}

// QRData is the payload for QR code items.
type QRData struct {
	Value           string
	ECC             ECCLevel
	PixelsPerModule int
}

// BarcodeData is the payload for barcode items.
type BarcodeData struct {
	Value        string
	Symbology    Symbology
	ModuleWidth  int
	IncludeLabel bool
}

// itemDefaults sets the common default field values shared by all constructors.
func itemDefaults(it *Item) {
	it.ID = newItemID()
	it.Width = 100
	it.Height = 100
	it.Opacity = 1
	it.Visible = true
}

// NewImageItem creates an image item referencing a source file. An empty
// sourceRef yields an unresolved image (rendered as an empty slot).
func NewImageItem(sourceRef string) *Item {
	it := &Item{Kind: KindImage, Image: &ImageData{SourceRef: sourceRef}}
	itemDefaults(it)
	return it
}

// NewImageItemFromPixels creates an image item backed by an in-memory pixel
// buffer, as produced by merge-down. The buffer is treated as immutable.
func NewImageItemFromPixels(pixels image.Image) *Item {
	it := &Item{Kind: KindImage, Image: &ImageData{Pixels: pixels}}
	itemDefaults(it)
	return it
}

// NewPlaceholderItem creates a numbered placeholder awaiting a photo.
func NewPlaceholderItem(number int) *Item {
	it := &Item{
		Kind: KindPlaceholder,
		Image: &ImageData{
			IsPlaceholder:         true,
			PlaceholderNumber:     number,
			PlaceholderBackground: Color{0.85, 0.85, 0.85, 1},
		},
	}
	itemDefaults(it)
	return it
}

// NewTextItem creates a text item with default styling.
func NewTextItem(content string) *Item {
	it := &Item{
		Kind: KindText,
		Text: &TextData{
			Content:    content,
			FontFamily: "Arial",
			FontSize:   24,
			Color:      ColorBlack,
			LineHeight: 1.2,
		},
	}
	itemDefaults(it)
	it.Height = 40
	it.Width = 200
	return it
}

// NewShapeItem creates a shape item of the given kind with a white fill.
func NewShapeItem(kind ShapeKind) *Item {
	it := &Item{Kind: KindShape, Shape: &ShapeData{Kind: kind, Fill: ColorWhite}}
	itemDefaults(it)
	return it
}

// NewQRCodeItem creates a QR code item. Value may contain resolver tokens.
func NewQRCodeItem(value string) *Item {
	it := &Item{Kind: KindQRCode, QR: &QRData{Value: value, ECC: ECCMedium, PixelsPerModule: 4}}
	itemDefaults(it)
	return it
}

// NewBarcodeItem creates a barcode item. Value may contain resolver tokens.
func NewBarcodeItem(value string, symbology Symbology) *Item {
	it := &Item{
		Kind:    KindBarcode,
		Barcode: &BarcodeData{Value: value, Symbology: symbology, ModuleWidth: 2, IncludeLabel: true},
	}
	itemDefaults(it)
	it.Height = 60
	it.Width = 200
	return it
}

// IsPlaceholder reports whether the item is a numbered photo placeholder.
func (it *Item) IsPlaceholder() bool {
	return it.Image != nil && it.Image.IsPlaceholder
}

// Bounds returns the item's axis-aligned rectangle. Rotation is not applied;
// hit testing and layout work on the unrotated rect.
func (it *Item) Bounds() Rect {
	return Rect{it.Left, it.Top, it.Width, it.Height}
}

// SetPosition moves the item's top-left corner.
func (it *Item) SetPosition(left, top float64) {
	it.Left = left
	it.Top = top
}

// SetSize resizes the item, clamping both dimensions to the minimum size.
func (it *Item) SetSize(width, height float64) {
	if width < minItemSize {
		width = minItemSize
	}
	if height < minItemSize {
		height = minItemSize
	}
	it.Width = width
	it.Height = height
}

// Clone returns a deep, independent copy of the item. The copy keeps the
// same ID so undo snapshots can restore selections; use CloneNewID for
// paste/duplicate. In-memory pixel buffers are shared (immutable).
func (it *Item) Clone() *Item {
	c := *it
	if it.Stroke != nil {
		s := *it.Stroke
		c.Stroke = &s
	}
	if it.Shadow != nil {
		s := *it.Shadow
		c.Shadow = &s
	}
	switch it.Kind {
	case KindImage, KindPlaceholder:
		if it.Image != nil {
			d := *it.Image
			c.Image = &d
		}
	case KindText:
		if it.Text != nil {
			d := *it.Text
			c.Text = &d
		}
	case KindShape:
		if it.Shape != nil {
			d := *it.Shape
			c.Shape = &d
		}
	case KindQRCode:
		if it.QR != nil {
			d := *it.QR
			c.QR = &d
		}
	case KindBarcode:
		if it.Barcode != nil {
			d := *it.Barcode
			c.Barcode = &d
		}
	}
	return &c
}

// CloneNewID returns a deep copy with a fresh identity, for paste and
// duplicate commands.
func (it *Item) CloneNewID() *Item {
	c := it.Clone()
	c.ID = newItemID()
	return c
}
