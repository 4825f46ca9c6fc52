package raster

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/inklock/easel"
)

// Thumbnail renders the full document and scales it to fit within
// maxW x maxH, preserving aspect ratio. Used by template pickers and
// layers-panel previews; it never mutates the document.
func (r *Renderer) Thumbnail(doc *easel.Document, maxW, maxH int) (*image.NRGBA, error) {
	full, err := r.RenderDocument(doc)
	if err != nil {
		return nil, err
	}
	if maxW < 1 {
		maxW = 1
	}
	if maxH < 1 {
		maxH = 1
	}

	fw := full.Bounds().Dx()
	fh := full.Bounds().Dy()
	scale := minf(float64(maxW)/float64(fw), float64(maxH)/float64(fh))
	if scale >= 1 {
		return full, nil
	}
	w := int(float64(fw) * scale)
	h := int(float64(fh) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), full, full.Bounds(), xdraw.Src, nil)
	return out, nil
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
