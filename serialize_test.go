package easel

import (
	"math"
	"testing"
)

// buildKitchenSinkDocument exercises every item kind plus stroke and
// shadow decorations.
func buildKitchenSinkDocument() *Document {
	doc := NewDocument(1200, 900)
	doc.Background = Background{Color: Color{0.2, 0.4, 0.6, 1}}

	img := NewImageItem("photos/cover.png")
	img.SetPosition(10.5, 20.25)
	img.SetSize(300, 200)
	img.Rotation = 15
	img.Opacity = 0.75
	img.AspectLocked = true
	img.Stroke = &Stroke{Color: Color{1, 0, 0, 1}, Thickness: 3}
	doc.Add(img)

	ph := NewPlaceholderItem(2)
	ph.Image.PlaceholderName = "Guest photo"
	ph.SetPosition(400, 50)
	doc.Add(ph)

	txt := NewTextItem("Hello, {name}!")
	txt.Text.FontFamily = "Georgia"
	txt.Text.FontSize = 36
	txt.Text.Weight = WeightBold
	txt.Text.Style = StyleItalic
	txt.Text.Align = TextAlignCenter
	txt.Text.Color = Color{0, 0.5, 0, 1}
	txt.Text.LetterSpacing = 1.5
	txt.Text.LineHeight = 1.4
	txt.Text.Vertical = true
	txt.Shadow = &Shadow{Color: ColorBlack, BlurRadius: 2, OffsetX: 3, OffsetY: 4, Opacity: 0.5}
	doc.Add(txt)

	shape := NewShapeItem(ShapeEllipse)
	shape.Shape.Fill = Color{1, 1, 0, 1}
	shape.Shape.NoStroke = true
	shape.Visible = false
	doc.Add(shape)

	qr := NewQRCodeItem("https://example.com")
	qr.QR.ECC = ECCHigh
	qr.QR.PixelsPerModule = 8
	doc.Add(qr)

	bc := NewBarcodeItem("TICKET-42", SymbologyCode39)
	bc.Barcode.ModuleWidth = 3
	bc.Barcode.IncludeLabel = false
	doc.Add(bc)

	return doc
}

func TestRecordRoundTrip(t *testing.T) {
	doc := buildKitchenSinkDocument()
	rec := ToRecord(doc, "kitchen-sink")

	if rec.Name != "kitchen-sink" || rec.CanvasWidth != 1200 || rec.CanvasHeight != 900 {
		t.Fatalf("record header = %q %vx%v", rec.Name, rec.CanvasWidth, rec.CanvasHeight)
	}
	if len(rec.Items) != doc.Len() {
		t.Fatalf("record has %d items, document %d", len(rec.Items), doc.Len())
	}

	loaded, err := FromRecord(rec)
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}

	orig := doc.ItemsInZOrder()
	got := loaded.ItemsInZOrder()
	if len(got) != len(orig) {
		t.Fatalf("loaded %d items, want %d", len(got), len(orig))
	}

	const tol = 1e-6
	for i := range orig {
		o, g := orig[i], got[i]
		if g.Kind != o.Kind {
			t.Errorf("item %d kind = %v, want %v", i, g.Kind, o.Kind)
			continue
		}
		if math.Abs(g.Left-o.Left) > tol || math.Abs(g.Top-o.Top) > tol ||
			math.Abs(g.Width-o.Width) > tol || math.Abs(g.Height-o.Height) > tol ||
			math.Abs(g.Rotation-o.Rotation) > tol || math.Abs(g.Opacity-o.Opacity) > tol {
			t.Errorf("item %d geometry drifted", i)
		}
		if g.Visible != o.Visible || g.AspectLocked != o.AspectLocked {
			t.Errorf("item %d flags drifted", i)
		}
		if (g.Stroke == nil) != (o.Stroke == nil) {
			t.Errorf("item %d stroke presence drifted", i)
		}
		if (g.Shadow == nil) != (o.Shadow == nil) {
			t.Errorf("item %d shadow presence drifted", i)
		}
	}

	// Relative z-order is preserved.
	for i := 1; i < len(got); i++ {
		if got[i].ZIndex < got[i-1].ZIndex {
			t.Errorf("loaded z-order not ascending at %d", i)
		}
	}
}

func TestRoundTripKindPayloads(t *testing.T) {
	doc := buildKitchenSinkDocument()
	loaded, err := FromRecord(ToRecord(doc, "x"))
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	orig := doc.ItemsInZOrder()
	got := loaded.ItemsInZOrder()

	for i := range orig {
		o, g := orig[i], got[i]
		switch o.Kind {
		case KindImage:
			if g.Image.SourceRef != o.Image.SourceRef {
				t.Errorf("image source = %q, want %q", g.Image.SourceRef, o.Image.SourceRef)
			}
		case KindPlaceholder:
			if g.Image.PlaceholderNumber != o.Image.PlaceholderNumber ||
				g.Image.PlaceholderName != o.Image.PlaceholderName {
				t.Error("placeholder payload drifted")
			}
		case KindText:
			od, gd := o.Text, g.Text
			if gd.Content != od.Content || gd.FontFamily != od.FontFamily ||
				gd.FontSize != od.FontSize || gd.Weight != od.Weight ||
				gd.Style != od.Style || gd.Align != od.Align ||
				gd.LetterSpacing != od.LetterSpacing || gd.LineHeight != od.LineHeight ||
				gd.Vertical != od.Vertical {
				t.Error("text payload drifted")
			}
			if gd.Color.Hex() != od.Color.Hex() {
				t.Errorf("text color = %v, want %v", gd.Color.Hex(), od.Color.Hex())
			}
		case KindShape:
			if g.Shape.Kind != o.Shape.Kind || g.Shape.NoFill != o.Shape.NoFill ||
				g.Shape.NoStroke != o.Shape.NoStroke || g.Shape.Fill.Hex() != o.Shape.Fill.Hex() {
				t.Error("shape payload drifted")
			}
		case KindQRCode:
			if g.QR.Value != o.QR.Value || g.QR.ECC != o.QR.ECC ||
				g.QR.PixelsPerModule != o.QR.PixelsPerModule {
				t.Error("qr payload drifted")
			}
		case KindBarcode:
			if g.Barcode.Value != o.Barcode.Value || g.Barcode.Symbology != o.Barcode.Symbology ||
				g.Barcode.ModuleWidth != o.Barcode.ModuleWidth ||
				g.Barcode.IncludeLabel != o.Barcode.IncludeLabel {
				t.Error("barcode payload drifted")
			}
		}
	}
}

func TestRoundTripShadowWithinTolerance(t *testing.T) {
	doc := NewDocument(100, 100)
	it := NewShapeItem(ShapeRectangle)
	it.Shadow = &Shadow{Color: ColorBlack, BlurRadius: 5, OffsetX: 3, OffsetY: 4, Opacity: 0.6}
	doc.Add(it)

	loaded, err := FromRecord(ToRecord(doc, "s"))
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	g := loaded.ItemsInZOrder()[0].Shadow
	if g == nil {
		t.Fatal("shadow lost in round trip")
	}
	if math.Abs(g.OffsetX-3) > 1e-3 || math.Abs(g.OffsetY-4) > 1e-3 {
		t.Errorf("shadow offsets = (%v, %v), want (3, 4)", g.OffsetX, g.OffsetY)
	}
	if math.Abs(g.BlurRadius-5) > 1e-6 || math.Abs(g.Opacity-0.6) > 1e-6 {
		t.Errorf("shadow blur/opacity = (%v, %v)", g.BlurRadius, g.Opacity)
	}
}

func TestFromRecordLenientColorFallback(t *testing.T) {
	rec := &TemplateRecord{
		CanvasWidth:  100,
		CanvasHeight: 100,
		Items: []ItemRecord{{
			ItemType:  "text",
			Width:     50,
			Height:    20,
			Opacity:   1,
			IsVisible: true,
			Text:      "hi",
			TextColor: "definitely-not-a-color",
		}},
	}
	doc, err := FromRecord(rec)
	if err != nil {
		t.Fatalf("bad color must not fail the load: %v", err)
	}
	it := doc.ItemsInZOrder()[0]
	if it.Text.Color != ColorBlack {
		t.Errorf("text color = %v, want default black", it.Text.Color)
	}
}

func TestFromRecordLenientEnumFallback(t *testing.T) {
	rec := &TemplateRecord{
		CanvasWidth:  100,
		CanvasHeight: 100,
		Items: []ItemRecord{{
			ItemType:  "shape",
			Width:     50,
			Height:    20,
			Opacity:   1,
			IsVisible: true,
			ShapeType: "dodecahedron",
		}},
	}
	doc, err := FromRecord(rec)
	if err != nil {
		t.Fatalf("unknown shape type must not fail the load: %v", err)
	}
	if doc.ItemsInZOrder()[0].Shape.Kind != ShapeRectangle {
		t.Error("unknown shape type must fall back to rectangle")
	}
}

func TestFromRecordSkipsUnknownItemType(t *testing.T) {
	rec := &TemplateRecord{
		CanvasWidth:  100,
		CanvasHeight: 100,
		Items: []ItemRecord{
			{ItemType: "hologram", Width: 50, Height: 20, Opacity: 1},
			{ItemType: "text", Width: 50, Height: 20, Opacity: 1, IsVisible: true, Text: "hi"},
		},
	}
	doc, err := FromRecord(rec)
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	if doc.Len() != 1 {
		t.Errorf("loaded %d items, want the unknown one skipped", doc.Len())
	}
}

func TestFromRecordStructuralValidation(t *testing.T) {
	tests := []struct {
		name string
		rec  TemplateRecord
	}{
		{"zero canvas", TemplateRecord{CanvasWidth: 0, CanvasHeight: 100}},
		{"sub-minimum item", TemplateRecord{
			CanvasWidth: 100, CanvasHeight: 100,
			Items: []ItemRecord{{ItemType: "shape", Width: 0, Height: 20, Opacity: 1}},
		}},
		{"opacity out of range", TemplateRecord{
			CanvasWidth: 100, CanvasHeight: 100,
			Items: []ItemRecord{{ItemType: "shape", Width: 10, Height: 20, Opacity: 3}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromRecord(&tt.rec); err == nil {
				t.Error("expected structural validation error")
			}
		})
	}
}

func TestFromRecordPreservesLoadedZOrder(t *testing.T) {
	// Sparse, shuffled indices: relative order must survive.
	rec := &TemplateRecord{
		CanvasWidth:  100,
		CanvasHeight: 100,
		Items: []ItemRecord{
			{ItemType: "text", Text: "top", ZIndex: 40, Width: 10, Height: 10, Opacity: 1, IsVisible: true},
			{ItemType: "text", Text: "bottom", ZIndex: -3, Width: 10, Height: 10, Opacity: 1, IsVisible: true},
			{ItemType: "text", Text: "middle", ZIndex: 7, Width: 10, Height: 10, Opacity: 1, IsVisible: true},
		},
	}
	doc, err := FromRecord(rec)
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	got := doc.ItemsInZOrder()
	want := []string{"bottom", "middle", "top"}
	for i := range want {
		if got[i].Text.Content != want[i] {
			t.Errorf("z position %d = %q, want %q", i, got[i].Text.Content, want[i])
		}
	}
}
