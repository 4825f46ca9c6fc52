// Package raster is a CPU reference implementation of easel's Rasterizer
// collaborator. It renders documents and regions to straight-alpha pixel
// buffers for merge-down, thumbnails, and PDF proofs.
//
// The goal is a faithful, dependency-light approximation of an editor
// canvas, not print fidelity: text uses a scaled bitmap face and shadows
// are drawn as offset silhouettes without a true gaussian blur.
package raster

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // registered for asset decoding
	_ "image/jpeg" // registered for asset decoding
	"image/png"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/code93"
	"github.com/boombuler/barcode/ean"
	"github.com/fogleman/gg"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"

	"github.com/inklock/easel"
)

// baseFaceHeight is the nominal point size of the bitmap face; text is
// scaled by FontSize relative to it.
const baseFaceHeight = 13.0

// Renderer draws easel items onto CPU pixel buffers. It implements
// easel.Rasterizer. The zero value is usable; New sets the optional
// collaborators explicitly.
type Renderer struct {
	// Tokens, when set, is applied to text, QR, and barcode values before
	// drawing.
	Tokens easel.TokenResolver
	// Log receives warnings about unresolved assets and unencodable
	// values. Nil means silent.
	Log *zap.Logger
}

// New creates a renderer with no token resolver and no logger.
func New() *Renderer {
	return &Renderer{}
}

var _ easel.Rasterizer = (*Renderer)(nil)

// Render rasterizes exactly the given document region to a straight-alpha
// buffer, layering the items by ascending ZIndex. The background stays
// transparent; callers wanting the canvas backdrop use RenderDocument.
func (r *Renderer) Render(region easel.Rect, items []*easel.Item) (*image.NRGBA, error) {
	w := int(math.Ceil(region.Width))
	h := int(math.Ceil(region.Height))
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("raster: region %vx%v has no area", region.Width, region.Height)
	}
	dc := gg.NewContext(w, h)
	r.drawItems(dc, region, items)
	return toNRGBA(dc.Image()), nil
}

// RenderDocument rasterizes the full canvas including its background.
func (r *Renderer) RenderDocument(doc *easel.Document) (*image.NRGBA, error) {
	w := int(math.Ceil(doc.Width))
	h := int(math.Ceil(doc.Height))
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("raster: document %vx%v has no area", doc.Width, doc.Height)
	}
	dc := gg.NewContext(w, h)

	if doc.Background.ImageRef != "" {
		if img := r.loadFile(doc.Background.ImageRef); img != nil {
			dc.DrawImage(scaleTo(img, w, h), 0, 0)
		}
	} else {
		dc.SetColor(doc.Background.Color.NRGBA())
		dc.Clear()
	}

	r.drawItems(dc, easel.Rect{Width: doc.Width, Height: doc.Height}, doc.ItemsInZOrder())
	return toNRGBA(dc.Image()), nil
}

// drawItems paints the items bottom-up into dc, offset so that region's
// origin lands at the buffer's origin.
func (r *Renderer) drawItems(dc *gg.Context, region easel.Rect, items []*easel.Item) {
	ordered := make([]*easel.Item, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].ZIndex != ordered[j].ZIndex {
			return ordered[i].ZIndex < ordered[j].ZIndex
		}
		return ordered[i].ID < ordered[j].ID
	})

	dc.Push()
	dc.Translate(-region.X, -region.Y)
	for _, it := range ordered {
		if !it.Visible || it.Opacity <= 0 {
			continue
		}
		r.drawItem(dc, it)
	}
	dc.Pop()
}

// drawItem dispatches on the item kind. Rotation is applied about the item
// center; the shadow silhouette is drawn first, underneath.
func (r *Renderer) drawItem(dc *gg.Context, it *easel.Item) {
	cx := it.Left + it.Width/2
	cy := it.Top + it.Height/2

	dc.Push()
	if it.Rotation != 0 {
		dc.RotateAbout(gg.Radians(it.Rotation), cx, cy)
	}
	if it.Shadow != nil {
		r.drawShadow(dc, it)
	}

	switch it.Kind {
	case easel.KindShape:
		r.drawShape(dc, it)
	case easel.KindImage:
		r.drawImage(dc, it)
	case easel.KindPlaceholder:
		r.drawPlaceholder(dc, it)
	case easel.KindText:
		r.drawText(dc, it)
	case easel.KindQRCode:
		r.drawQRCode(dc, it)
	case easel.KindBarcode:
		r.drawBarcode(dc, it)
	}
	dc.Pop()
}

// drawShadow paints an offset silhouette of the item rect. BlurRadius only
// softens the alpha here (a proper gaussian is a print-renderer concern).
func (r *Renderer) drawShadow(dc *gg.Context, it *easel.Item) {
	s := it.Shadow
	alpha := s.Opacity * it.Opacity
	if s.BlurRadius > 0 {
		alpha *= 0.8
	}
	dc.SetColor(s.Color.WithAlpha(alpha).NRGBA())
	x := it.Left + s.OffsetX
	y := it.Top + s.OffsetY
	if it.Kind == easel.KindShape && it.Shape.Kind == easel.ShapeEllipse {
		dc.DrawEllipse(x+it.Width/2, y+it.Height/2, it.Width/2, it.Height/2)
	} else {
		dc.DrawRectangle(x, y, it.Width, it.Height)
	}
	dc.Fill()
}

func (r *Renderer) drawShape(dc *gg.Context, it *easel.Item) {
	d := it.Shape
	switch d.Kind {
	case easel.ShapeLine:
		col := d.Fill
		thickness := 2.0
		if it.Stroke != nil && !d.NoStroke {
			col = it.Stroke.Color
			thickness = it.Stroke.Thickness
		}
		dc.SetColor(col.WithAlpha(it.Opacity).NRGBA())
		dc.SetLineWidth(thickness)
		dc.DrawLine(it.Left, it.Top+it.Height/2, it.Left+it.Width, it.Top+it.Height/2)
		dc.Stroke()
		return
	case easel.ShapeEllipse:
		dc.DrawEllipse(it.Left+it.Width/2, it.Top+it.Height/2, it.Width/2, it.Height/2)
	default:
		dc.DrawRectangle(it.Left, it.Top, it.Width, it.Height)
	}
	if !d.NoFill {
		dc.SetColor(d.Fill.WithAlpha(it.Opacity).NRGBA())
		dc.FillPreserve()
	}
	if it.Stroke != nil && !d.NoStroke && it.Stroke.Thickness > 0 {
		dc.SetColor(it.Stroke.Color.WithAlpha(it.Opacity).NRGBA())
		dc.SetLineWidth(it.Stroke.Thickness)
		dc.Stroke()
	} else {
		dc.ClearPath()
	}
}

func (r *Renderer) drawImage(dc *gg.Context, it *easel.Item) {
	src := r.sourceImage(it.Image)
	if src == nil {
		// Unresolved image: an empty slot, not an error.
		return
	}
	w := int(math.Max(1, it.Width))
	h := int(math.Max(1, it.Height))
	img := scaleTo(src, w, h)
	if it.Opacity < 1 {
		applyAlpha(img, it.Opacity)
	}
	dc.DrawImage(img, int(it.Left), int(it.Top))
	r.strokeRect(dc, it)
}

func (r *Renderer) drawPlaceholder(dc *gg.Context, it *easel.Item) {
	d := it.Image
	dc.SetColor(d.PlaceholderBackground.WithAlpha(it.Opacity).NRGBA())
	dc.DrawRectangle(it.Left, it.Top, it.Width, it.Height)
	dc.Fill()

	label := d.PlaceholderName
	if label == "" {
		label = fmt.Sprintf("Photo %d", d.PlaceholderNumber)
	}
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(easel.Color{R: 0.4, G: 0.4, B: 0.4, A: 1}.WithAlpha(it.Opacity).NRGBA())
	dc.DrawStringAnchored(label, it.Left+it.Width/2, it.Top+it.Height/2, 0.5, 0.5)
	r.strokeRect(dc, it)
}

func (r *Renderer) drawText(dc *gg.Context, it *easel.Item) {
	d := it.Text
	content := d.Content
	if r.Tokens != nil {
		content = r.Tokens(content)
	}
	if content == "" {
		return
	}

	scale := 1.0
	if d.FontSize > 0 {
		scale = d.FontSize / baseFaceHeight
	}
	dc.Push()
	dc.ScaleAbout(scale, scale, it.Left, it.Top)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(d.Color.WithAlpha(it.Opacity).NRGBA())

	lineStep := baseFaceHeight * d.LineHeight
	if lineStep <= 0 {
		lineStep = baseFaceHeight
	}
	width := it.Width / scale

	if d.Vertical {
		x := it.Left
		y := it.Top + baseFaceHeight
		for _, rn := range content {
			dc.DrawString(string(rn), x, y)
			y += lineStep
		}
		dc.Pop()
		return
	}

	y := it.Top + baseFaceHeight
	for _, line := range strings.Split(content, "\n") {
		r.drawLine(dc, d, line, it.Left, y, width)
		y += lineStep
	}
	dc.Pop()
}

// drawLine draws one line of text with alignment and letter spacing.
func (r *Renderer) drawLine(dc *gg.Context, d *easel.TextData, line string, left, y, width float64) {
	spacing := d.LetterSpacing
	lineWidth, _ := dc.MeasureString(line)
	if spacing != 0 {
		lineWidth += spacing * float64(len([]rune(line))-1)
	}
	x := left
	switch d.Align {
	case easel.TextAlignCenter:
		x = left + (width-lineWidth)/2
	case easel.TextAlignRight:
		x = left + width - lineWidth
	}
	if spacing == 0 {
		dc.DrawString(line, x, y)
		return
	}
	for _, rn := range line {
		s := string(rn)
		dc.DrawString(s, x, y)
		adv, _ := dc.MeasureString(s)
		x += adv + spacing
	}
}

func (r *Renderer) drawQRCode(dc *gg.Context, it *easel.Item) {
	d := it.QR
	value := d.Value
	if r.Tokens != nil {
		value = r.Tokens(value)
	}
	if value == "" {
		return
	}
	qr, err := qrcode.New(value, qrLevel(d.ECC))
	if err != nil {
		r.warn("qr code value not encodable", zap.Error(err))
		return
	}
	size := int(math.Min(it.Width, it.Height))
	if d.PixelsPerModule > 0 {
		size = len(qr.Bitmap()) * d.PixelsPerModule
	}
	if size < 21 {
		size = 21
	}
	img := scaleTo(qr.Image(size), int(math.Max(1, it.Width)), int(math.Max(1, it.Height)))
	if it.Opacity < 1 {
		applyAlpha(img, it.Opacity)
	}
	dc.DrawImage(img, int(it.Left), int(it.Top))
}

func (r *Renderer) drawBarcode(dc *gg.Context, it *easel.Item) {
	d := it.Barcode
	value := d.Value
	if r.Tokens != nil {
		value = r.Tokens(value)
	}
	if value == "" {
		return
	}
	bc, err := encodeBarcode(value, d.Symbology)
	if err != nil {
		r.warn("barcode value not encodable",
			zap.String("symbology", d.Symbology.String()), zap.Error(err))
		return
	}

	w := int(math.Max(1, it.Width))
	h := int(math.Max(1, it.Height))
	labelSpace := 0
	if d.IncludeLabel && h > 24 {
		labelSpace = 16
	}
	// Scale in whole modules first, then fit the item rect exactly.
	scaleW := bc.Bounds().Dx()
	if d.ModuleWidth > 0 {
		scaleW *= d.ModuleWidth
	}
	if scaleW < w {
		scaleW = w
	}
	scaled, err := barcode.Scale(bc, scaleW, h-labelSpace)
	if err != nil {
		r.warn("barcode scale failed", zap.Error(err))
		return
	}
	img := scaleTo(scaled, w, h-labelSpace)
	if it.Opacity < 1 {
		applyAlpha(img, it.Opacity)
	}
	dc.DrawImage(img, int(it.Left), int(it.Top))

	if labelSpace > 0 {
		dc.SetFontFace(basicfont.Face7x13)
		dc.SetColor(easel.ColorBlack.WithAlpha(it.Opacity).NRGBA())
		dc.DrawStringAnchored(value, it.Left+it.Width/2, it.Top+it.Height-float64(labelSpace)/2, 0.5, 0.4)
	}
}

// strokeRect outlines the item rect when a stroke is configured.
func (r *Renderer) strokeRect(dc *gg.Context, it *easel.Item) {
	if it.Stroke == nil || it.Stroke.Thickness <= 0 {
		return
	}
	dc.SetColor(it.Stroke.Color.WithAlpha(it.Opacity).NRGBA())
	dc.SetLineWidth(it.Stroke.Thickness)
	dc.DrawRectangle(it.Left, it.Top, it.Width, it.Height)
	dc.Stroke()
}

// sourceImage resolves an image payload to pixels: the in-memory buffer if
// present, otherwise the source file. Nil means unresolved.
func (r *Renderer) sourceImage(d *easel.ImageData) image.Image {
	if d == nil {
		return nil
	}
	if d.Pixels != nil {
		return d.Pixels
	}
	if d.SourceRef == "" {
		return nil
	}
	return r.loadFile(d.SourceRef)
}

func (r *Renderer) loadFile(path string) image.Image {
	f, err := os.Open(path)
	if err != nil {
		r.warn("image source not found", zap.String("path", path), zap.Error(err))
		return nil
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		r.warn("image source not decodable", zap.String("path", path), zap.Error(err))
		return nil
	}
	return img
}

func (r *Renderer) warn(msg string, fields ...zap.Field) {
	if r.Log != nil {
		r.Log.Warn(msg, fields...)
	}
}

// --- Helpers ---

// toNRGBA converts gg's premultiplied RGBA output to straight-alpha NRGBA,
// preserving transparency.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(out, out.Bounds(), img, b.Min, xdraw.Src)
	return out
}

// scaleTo resizes src to exactly w x h using bilinear filtering.
func scaleTo(src image.Image, w, h int) *image.NRGBA {
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return toNRGBA(src)
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), src, b, xdraw.Src, nil)
	return out
}

// applyAlpha multiplies every pixel's alpha by a in place.
func applyAlpha(img *image.NRGBA, a float64) {
	if a >= 1 {
		return
	}
	if a < 0 {
		a = 0
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(float64(img.Pix[i]) * a)
	}
}

// qrLevel maps the model's ECC level to the encoder's.
func qrLevel(e easel.ECCLevel) qrcode.RecoveryLevel {
	switch e {
	case easel.ECCLow:
		return qrcode.Low
	case easel.ECCQuartile:
		return qrcode.High // closest available tier above Medium
	case easel.ECCHigh:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// encodeBarcode dispatches on the symbology.
func encodeBarcode(value string, s easel.Symbology) (barcode.Barcode, error) {
	switch s {
	case easel.SymbologyCode39:
		return code39.Encode(value, false, true)
	case easel.SymbologyCode93:
		return code93.Encode(value, false, true)
	case easel.SymbologyEAN13, easel.SymbologyEAN8:
		return ean.Encode(value)
	default:
		return code128.Encode(value)
	}
}

// EncodePNG returns the buffer encoded as PNG bytes.
func EncodePNG(img *image.NRGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("raster: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
