package easel

import "math"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// Common colors used as field defaults throughout the model.
var (
	ColorBlack       = Color{0, 0, 0, 1}
	ColorWhite       = Color{1, 1, 1, 1}
	ColorTransparent = Color{0, 0, 0, 0}
)

// Point is a 2D position in canvas coordinates.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Union returns the smallest rectangle containing both r and other.
// If either rectangle is empty the other is returned unchanged.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	x := math.Min(r.X, other.X)
	y := math.Min(r.Y, other.Y)
	x2 := math.Max(r.X+r.Width, other.X+other.Width)
	y2 := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{x, y, x2 - x, y2 - y}
}

// Inflate returns r grown by d on every side. Negative d shrinks.
func (r Rect) Inflate(d float64) Rect {
	return Rect{r.X - d, r.Y - d, r.Width + 2*d, r.Height + 2*d}
}

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ItemKind distinguishes the payload and rendering behavior of an Item.
// The set is closed: serialization, cloning, bounds, and rendering all
// dispatch on it exhaustively.
type ItemKind uint8

const (
	KindImage       ItemKind = iota // raster image placed from a file or pixel buffer
	KindPlaceholder                 // numbered slot awaiting a user-supplied photo
	KindText                        // styled text block
	KindShape                       // rectangle, ellipse, or line
	KindQRCode                      // QR code generated from a value string
	KindBarcode                     // 1D barcode generated from a value string
)

// String returns the serialized discriminant name for the kind.
func (k ItemKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindPlaceholder:
		return "placeholder"
	case KindText:
		return "text"
	case KindShape:
		return "shape"
	case KindQRCode:
		return "qrcode"
	case KindBarcode:
		return "barcode"
	default:
		return "unknown"
	}
}

// parseItemKind maps a discriminant string back to its kind.
func parseItemKind(s string) (ItemKind, bool) {
	switch s {
	case "image":
		return KindImage, true
	case "placeholder":
		return KindPlaceholder, true
	case "text":
		return KindText, true
	case "shape":
		return KindShape, true
	case "qrcode":
		return KindQRCode, true
	case "barcode":
		return KindBarcode, true
	}
	return 0, false
}

// ShapeKind selects the geometry a shape item draws.
type ShapeKind uint8

const (
	ShapeRectangle ShapeKind = iota // filled/stroked axis-aligned rectangle
	ShapeEllipse                    // ellipse inscribed in the item rect
	ShapeLine                       // line across the item rect's diagonal
)

// String returns the serialized name for the shape kind.
func (s ShapeKind) String() string {
	switch s {
	case ShapeRectangle:
		return "rectangle"
	case ShapeEllipse:
		return "ellipse"
	case ShapeLine:
		return "line"
	default:
		return "rectangle"
	}
}

// parseShapeKind is lenient: unknown names fall back to ShapeRectangle.
func parseShapeKind(s string) ShapeKind {
	switch s {
	case "ellipse":
		return ShapeEllipse
	case "line":
		return ShapeLine
	default:
		return ShapeRectangle
	}
}

// ECCLevel is the QR code error-correction strength.
type ECCLevel uint8

const (
	ECCLow      ECCLevel = iota // L: ~7% recovery
	ECCMedium                   // M: ~15% recovery
	ECCQuartile                 // Q: ~25% recovery
	ECCHigh                     // H: ~30% recovery
)

// String returns the single-letter level name (L, M, Q, H).
func (e ECCLevel) String() string {
	switch e {
	case ECCLow:
		return "L"
	case ECCMedium:
		return "M"
	case ECCQuartile:
		return "Q"
	case ECCHigh:
		return "H"
	default:
		return "M"
	}
}

// parseECCLevel is lenient: unknown names fall back to ECCMedium.
func parseECCLevel(s string) ECCLevel {
	switch s {
	case "L":
		return ECCLow
	case "M":
		return ECCMedium
	case "Q":
		return ECCQuartile
	case "H":
		return ECCHigh
	default:
		return ECCMedium
	}
}

// Symbology is the barcode encoding scheme.
type Symbology uint8

const (
	SymbologyCode128 Symbology = iota // high-density alphanumeric (default)
	SymbologyCode39                   // classic alphanumeric
	SymbologyCode93                   // compact alphanumeric
	SymbologyEAN13                    // 13-digit retail
	SymbologyEAN8                     // 8-digit retail
)

// String returns the serialized name for the symbology.
func (s Symbology) String() string {
	switch s {
	case SymbologyCode128:
		return "code128"
	case SymbologyCode39:
		return "code39"
	case SymbologyCode93:
		return "code93"
	case SymbologyEAN13:
		return "ean13"
	case SymbologyEAN8:
		return "ean8"
	default:
		return "code128"
	}
}

// parseSymbology is lenient: unknown names fall back to SymbologyCode128.
func parseSymbology(s string) Symbology {
	switch s {
	case "code39":
		return SymbologyCode39
	case "code93":
		return SymbologyCode93
	case "ean13":
		return SymbologyEAN13
	case "ean8":
		return SymbologyEAN8
	default:
		return SymbologyCode128
	}
}

// TextAlign controls horizontal text alignment within a text item.
type TextAlign uint8

const (
	TextAlignLeft   TextAlign = iota // align text to the left edge (default)
	TextAlignCenter                  // center text horizontally
	TextAlignRight                   // align text to the right edge
)

// String returns the serialized name for the alignment.
func (a TextAlign) String() string {
	switch a {
	case TextAlignCenter:
		return "center"
	case TextAlignRight:
		return "right"
	default:
		return "left"
	}
}

// parseTextAlign is lenient: unknown names fall back to TextAlignLeft.
func parseTextAlign(s string) TextAlign {
	switch s {
	case "center":
		return TextAlignCenter
	case "right":
		return TextAlignRight
	default:
		return TextAlignLeft
	}
}

// FontWeight selects normal or bold text.
type FontWeight uint8

const (
	WeightNormal FontWeight = iota // regular weight (default)
	WeightBold                     // bold weight
)

// String returns the serialized name for the weight.
func (w FontWeight) String() string {
	if w == WeightBold {
		return "bold"
	}
	return "normal"
}

func parseFontWeight(s string) FontWeight {
	if s == "bold" {
		return WeightBold
	}
	return WeightNormal
}

// FontStyle selects upright or italic text.
type FontStyle uint8

const (
	StyleNormal FontStyle = iota // upright (default)
	StyleItalic                  // italic / oblique
)

// String returns the serialized name for the style.
func (s FontStyle) String() string {
	if s == StyleItalic {
		return "italic"
	}
	return "normal"
}

func parseFontStyle(s string) FontStyle {
	if s == "italic" {
		return StyleItalic
	}
	return StyleNormal
}

// Stroke is an optional outline applied to image, text, and shape items.
type Stroke struct {
	Color     Color
	Thickness float64
}

// Shadow is a drop shadow in its canonical cartesian form. Renderers that
// think in polar terms (direction/depth) convert at the boundary via
// Polar and ShadowFromPolar; the model never stores the polar form.
type Shadow struct {
	Color      Color
	BlurRadius float64
	OffsetX    float64
	OffsetY    float64
	Opacity    float64
}

// Polar returns the shadow offset as (direction in degrees, depth).
// Direction follows atan2 conventions: 0° points along +X, 90° along +Y.
func (s Shadow) Polar() (direction, depth float64) {
	direction = math.Atan2(s.OffsetY, s.OffsetX) * 180 / math.Pi
	depth = math.Hypot(s.OffsetX, s.OffsetY)
	return direction, depth
}

// ShadowFromPolar converts a polar (direction in degrees, depth) offset back
// to cartesian. Round-tripping through Polar holds within 1e-3.
func ShadowFromPolar(direction, depth float64) (offsetX, offsetY float64) {
	rad := direction * math.Pi / 180
	return math.Cos(rad) * depth, math.Sin(rad) * depth
}

// TokenResolver substitutes dynamic tokens (dates, event context) in text,
// QR, and barcode values. It is applied at render and export boundaries only;
// the document model never interprets tokens itself.
type TokenResolver func(string) string
