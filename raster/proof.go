package raster

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/inklock/easel"
)

// Proof renders the document into a one-page PDF proof sheet: the composed
// canvas on top, followed by an item inventory table (kind, name/value,
// position, size, z-index). Useful for review and sign-off before a
// template ships.
func (r *Renderer) Proof(doc *easel.Document, title string) ([]byte, error) {
	img, err := r.RenderDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("proof: %w", err)
	}
	pngBytes, err := EncodePNG(img)
	if err != nil {
		return nil, fmt.Errorf("proof: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(2)
	}

	// Fit the canvas render into the upper half of the page.
	const maxImgW, maxImgH = 190.0, 120.0
	iw := float64(img.Bounds().Dx())
	ih := float64(img.Bounds().Dy())
	scale := minf(maxImgW/iw, maxImgH/ih)
	pdf.RegisterImageOptionsReader("canvas", gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(pngBytes))
	pdf.ImageOptions("canvas", (210-iw*scale)/2, pdf.GetY(), iw*scale, ih*scale,
		true, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	pdf.Ln(6)

	headers := []string{"#", "Kind", "Content", "Position", "Size", "Z"}
	widths := []float64{10, 28, 72, 30, 30, 20}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for i, it := range doc.ItemsInZOrder() {
		cells := []string{
			fmt.Sprintf("%d", i+1),
			it.Kind.String(),
			itemContent(it),
			fmt.Sprintf("%.0f, %.0f", it.Left, it.Top),
			fmt.Sprintf("%.0f x %.0f", it.Width, it.Height),
			fmt.Sprintf("%d", it.ZIndex),
		}
		for j, c := range cells {
			pdf.CellFormat(widths[j], 7, c, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("proof: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// itemContent summarizes what an item shows, for the inventory table.
func itemContent(it *easel.Item) string {
	switch it.Kind {
	case easel.KindText:
		return truncate(it.Text.Content, 40)
	case easel.KindQRCode:
		return truncate(it.QR.Value, 40)
	case easel.KindBarcode:
		return truncate(it.Barcode.Value, 40)
	case easel.KindPlaceholder:
		return fmt.Sprintf("placeholder %d", it.Image.PlaceholderNumber)
	case easel.KindImage:
		if it.Image.SourceRef != "" {
			return truncate(it.Image.SourceRef, 40)
		}
		return "(in-memory)"
	case easel.KindShape:
		return it.Shape.Kind.String()
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
