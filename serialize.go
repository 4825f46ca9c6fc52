package easel

import "sort"

// ToRecord converts a point-in-time document state to its persisted form.
// The record holds no references into the document; items are emitted in
// z-ascending order with their current (possibly non-contiguous) indices.
func ToRecord(doc *Document, name string) *TemplateRecord {
	rec := &TemplateRecord{
		Name:         name,
		CanvasWidth:  doc.Width,
		CanvasHeight: doc.Height,
	}
	if doc.Background.ImageRef != "" {
		rec.BackgroundImage = doc.Background.ImageRef
	} else {
		rec.BackgroundColor = doc.Background.Color.Hex()
	}
	for _, it := range doc.ItemsInZOrder() {
		rec.Items = append(rec.Items, itemToRecord(it))
	}
	return rec
}

// FromRecord builds a live document from a persisted record. Structural
// problems (non-positive canvas, sub-minimum item sizes) fail the whole
// load; cosmetic problems (bad color strings, unknown sub-enum names) fall
// back to field defaults and the item is still reconstructed. Items are
// instantiated in z-ascending order, preserving relative stacking.
func FromRecord(rec *TemplateRecord) (*Document, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	doc := NewDocument(rec.CanvasWidth, rec.CanvasHeight)
	if rec.BackgroundImage != "" {
		doc.Background = Background{ImageRef: rec.BackgroundImage}
	} else {
		doc.Background = Background{Color: parseColorOr(rec.BackgroundColor, ColorWhite)}
	}

	ordered := make([]ItemRecord, len(rec.Items))
	copy(ordered, rec.Items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ZIndex < ordered[j].ZIndex
	})
	for _, ir := range ordered {
		if it := itemFromRecord(ir); it != nil {
			doc.AddWithZIndex(it, ir.ZIndex)
		}
	}
	return doc, nil
}

// itemToRecord flattens one item into its record form.
func itemToRecord(it *Item) ItemRecord {
	r := ItemRecord{
		ItemType:     it.Kind.String(),
		X:            it.Left,
		Y:            it.Top,
		Width:        it.Width,
		Height:       it.Height,
		ZIndex:       it.ZIndex,
		Rotation:     it.Rotation,
		Opacity:      it.Opacity,
		IsVisible:    it.Visible,
		LockedAspect: it.AspectLocked,
		Name:         it.Name,
	}
	if it.Stroke != nil {
		r.StrokeColor = it.Stroke.Color.Hex()
		r.StrokeThickness = it.Stroke.Thickness
	}
	if it.Shadow != nil {
		r.HasShadow = true
		r.ShadowColor = it.Shadow.Color.Hex()
		r.ShadowBlurRadius = it.Shadow.BlurRadius
		r.ShadowOffsetX = it.Shadow.OffsetX
		r.ShadowOffsetY = it.Shadow.OffsetY
		r.ShadowOpacity = it.Shadow.Opacity
	}
	switch it.Kind {
	case KindImage, KindPlaceholder:
		d := it.Image
		r.ImageSource = d.SourceRef
		r.IsPlaceholder = d.IsPlaceholder
		r.PlaceholderNumber = d.PlaceholderNumber
		r.PlaceholderName = d.PlaceholderName
		if d.IsPlaceholder {
			r.PlaceholderBackground = d.PlaceholderBackground.Hex()
		}
	case KindText:
		d := it.Text
		r.Text = d.Content
		r.FontFamily = d.FontFamily
		r.FontSize = d.FontSize
		r.FontWeight = d.Weight.String()
		r.FontStyle = d.Style.String()
		r.TextAlignment = d.Align.String()
		r.TextColor = d.Color.Hex()
		r.LetterSpacing = d.LetterSpacing
		r.LineHeight = d.LineHeight
		r.IsVertical = d.Vertical
	case KindShape:
		d := it.Shape
		r.ShapeType = d.Kind.String()
		r.FillColor = d.Fill.Hex()
		r.HasNoFill = d.NoFill
		r.HasNoStroke = d.NoStroke
	case KindQRCode:
		d := it.QR
		r.Value = d.Value
		r.ECCLevel = d.ECC.String()
		r.PixelsPerModule = d.PixelsPerModule
	case KindBarcode:
		d := it.Barcode
		r.Value = d.Value
		r.Symbology = d.Symbology.String()
		r.ModuleWidth = d.ModuleWidth
		r.IncludeLabel = d.IncludeLabel
	}
	return r
}

// itemFromRecord reconstructs one item. Returns nil for an unknown
// discriminant; the caller skips such records rather than failing the load.
func itemFromRecord(r ItemRecord) *Item {
	kind, ok := parseItemKind(r.ItemType)
	if !ok {
		return nil
	}

	var it *Item
	switch kind {
	case KindImage:
		it = NewImageItem(r.ImageSource)
	case KindPlaceholder:
		it = NewPlaceholderItem(r.PlaceholderNumber)
		it.Image.PlaceholderName = r.PlaceholderName
		it.Image.PlaceholderBackground = parseColorOr(r.PlaceholderBackground, Color{0.85, 0.85, 0.85, 1})
	case KindText:
		it = NewTextItem(r.Text)
		d := it.Text
		if r.FontFamily != "" {
			d.FontFamily = r.FontFamily
		}
		if r.FontSize > 0 {
			d.FontSize = r.FontSize
		}
		d.Weight = parseFontWeight(r.FontWeight)
		d.Style = parseFontStyle(r.FontStyle)
		d.Align = parseTextAlign(r.TextAlignment)
		d.Color = parseColorOr(r.TextColor, ColorBlack)
		d.LetterSpacing = r.LetterSpacing
		if r.LineHeight > 0 {
			d.LineHeight = r.LineHeight
		}
		d.Vertical = r.IsVertical
	case KindShape:
		it = NewShapeItem(parseShapeKind(r.ShapeType))
		d := it.Shape
		d.Fill = parseColorOr(r.FillColor, ColorTransparent)
		d.NoFill = r.HasNoFill
		d.NoStroke = r.HasNoStroke
	case KindQRCode:
		it = NewQRCodeItem(r.Value)
		it.QR.ECC = parseECCLevel(r.ECCLevel)
		if r.PixelsPerModule > 0 {
			it.QR.PixelsPerModule = r.PixelsPerModule
		}
	case KindBarcode:
		it = NewBarcodeItem(r.Value, parseSymbology(r.Symbology))
		if r.ModuleWidth > 0 {
			it.Barcode.ModuleWidth = r.ModuleWidth
		}
		it.Barcode.IncludeLabel = r.IncludeLabel
	}

	it.Left = r.X
	it.Top = r.Y
	it.SetSize(r.Width, r.Height)
	it.Rotation = r.Rotation
	it.Opacity = clamp01(r.Opacity)
	it.Visible = r.IsVisible
	it.AspectLocked = r.LockedAspect
	it.Name = r.Name

	if r.StrokeColor != "" {
		it.Stroke = &Stroke{
			Color:     parseColorOr(r.StrokeColor, ColorBlack),
			Thickness: r.StrokeThickness,
		}
	}
	if r.HasShadow {
		it.Shadow = &Shadow{
			Color:      parseColorOr(r.ShadowColor, ColorBlack),
			BlurRadius: r.ShadowBlurRadius,
			OffsetX:    r.ShadowOffsetX,
			OffsetY:    r.ShadowOffsetY,
			Opacity:    clamp01(r.ShadowOpacity),
		}
	}
	return it
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
