package easel

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// TemplateRecord is the persisted form of a document. It carries no item
// identities -- only positional and z data -- so loading always mints fresh
// IDs. Colors are hex strings, enums are names; see serialize.go for the
// conversion rules.
type TemplateRecord struct {
	Name            string            `json:"name"`
	CanvasWidth     float64           `json:"canvasWidth" validate:"gt=0"`
	CanvasHeight    float64           `json:"canvasHeight" validate:"gt=0"`
	BackgroundColor string            `json:"backgroundColor,omitempty"`
	BackgroundImage string            `json:"backgroundImage,omitempty"`
	Items           []ItemRecord      `json:"items" validate:"dive"`
	AssetMappings   map[string]string `json:"assetMappings,omitempty"`
}

// ItemRecord is the persisted form of one item. Kind-specific fields are
// flattened alongside the common ones and omitted when empty; ItemType
// discriminates.
type ItemRecord struct {
	ItemType string `json:"itemType" validate:"required"`

	// Geometry & state
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width" validate:"gte=1"`
	Height       float64 `json:"height" validate:"gte=1"`
	ZIndex       int     `json:"zIndex"`
	Rotation     float64 `json:"rotation,omitempty"`
	Opacity      float64 `json:"opacity" validate:"gte=0,lte=1"`
	IsVisible    bool    `json:"isVisible"`
	LockedAspect bool    `json:"lockedAspectRatio,omitempty"`
	Name         string  `json:"name,omitempty"`

	// Stroke (present when StrokeColor is non-empty)
	StrokeColor     string  `json:"strokeColor,omitempty"`
	StrokeThickness float64 `json:"strokeThickness,omitempty"`

	// Shadow (canonical cartesian offsets; polar conversion happens only at
	// the render boundary)
	HasShadow        bool    `json:"hasShadow,omitempty"`
	ShadowColor      string  `json:"shadowColor,omitempty"`
	ShadowBlurRadius float64 `json:"shadowBlurRadius,omitempty"`
	ShadowOffsetX    float64 `json:"shadowOffsetX,omitempty"`
	ShadowOffsetY    float64 `json:"shadowOffsetY,omitempty"`
	ShadowOpacity    float64 `json:"shadowOpacity,omitempty"`

	// Image / placeholder
	ImageSource           string `json:"imageSource,omitempty"`
	IsPlaceholder         bool   `json:"isPlaceholder,omitempty"`
	PlaceholderNumber     int    `json:"placeholderNumber,omitempty"`
	PlaceholderName       string `json:"placeholderName,omitempty"`
	PlaceholderBackground string `json:"placeholderBackground,omitempty"`

	// Text
	Text          string  `json:"text,omitempty"`
	FontFamily    string  `json:"fontFamily,omitempty"`
	FontSize      float64 `json:"fontSize,omitempty"`
	FontWeight    string  `json:"fontWeight,omitempty"`
	FontStyle     string  `json:"fontStyle,omitempty"`
	TextAlignment string  `json:"textAlignment,omitempty"`
	TextColor     string  `json:"textColor,omitempty"`
	LetterSpacing float64 `json:"letterSpacing,omitempty"`
	LineHeight    float64 `json:"lineHeight,omitempty"`
	IsVertical    bool    `json:"isVertical,omitempty"`

	// Shape
	ShapeType   string `json:"shapeType,omitempty"`
	FillColor   string `json:"fillColor,omitempty"`
	HasNoFill   bool   `json:"hasNoFill,omitempty"`
	HasNoStroke bool   `json:"hasNoStroke,omitempty"`

	// QR code / barcode
	Value           string `json:"value,omitempty"`
	ECCLevel        string `json:"eccLevel,omitempty"`
	PixelsPerModule int    `json:"pixelsPerModule,omitempty"`
	Symbology       string `json:"symbology,omitempty"`
	ModuleWidth     int    `json:"moduleWidth,omitempty"`
	IncludeLabel    bool   `json:"includeLabel,omitempty"`
}

// recordValidator is shared; validator instances cache struct metadata.
var recordValidator = validator.New()

// Validate checks the record's structural invariants (positive canvas,
// minimum item sizes, opacity range). Failures are fatal to the enclosing
// load, per the error taxonomy; cosmetic fields stay lenient.
func (r *TemplateRecord) Validate() error {
	if err := recordValidator.Struct(r); err != nil {
		return fmt.Errorf("invalid template record: %w", err)
	}
	return nil
}
