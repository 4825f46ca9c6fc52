package easel

import (
	"archive/zip"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestPNG writes a small solid PNG to path and fails the test on error.
func writeTestPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

func TestPackageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	assetPath := filepath.Join(dir, "photo.png")
	writeTestPNG(t, assetPath)

	doc := NewDocument(800, 600)
	img := NewImageItem(assetPath)
	doc.Add(img)
	txt := NewTextItem("Save the date")
	doc.Add(txt)

	pkgPath := filepath.Join(dir, "invite.zip")
	if err := ExportPackage(doc, "invite", pkgPath, ExportOptions{}); err != nil {
		t.Fatalf("ExportPackage: %v", err)
	}

	importDir := filepath.Join(dir, "imported-assets")
	loaded, err := ImportPackage(pkgPath, importDir, ImportOptions{})
	if err != nil {
		t.Fatalf("ImportPackage: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("imported %d items, want 2", loaded.Len())
	}

	var gotImage, gotText *Item
	for _, it := range loaded.ItemsInZOrder() {
		switch it.Kind {
		case KindImage:
			gotImage = it
		case KindText:
			gotText = it
		}
	}
	if gotImage == nil || gotText == nil {
		t.Fatal("imported document missing an item kind")
	}
	if gotText.Text.Content != "Save the date" {
		t.Errorf("text = %q", gotText.Text.Content)
	}

	// The image source must be rewritten to an extracted local file.
	if gotImage.Image.SourceRef == assetPath {
		t.Error("import kept the exporter's absolute path")
	}
	if !strings.HasPrefix(gotImage.Image.SourceRef, importDir) {
		t.Errorf("source %q not under import dir %q", gotImage.Image.SourceRef, importDir)
	}
	if _, err := os.Stat(gotImage.Image.SourceRef); err != nil {
		t.Errorf("extracted asset missing: %v", err)
	}
}

func TestExportResolvesTokens(t *testing.T) {
	dir := t.TempDir()
	doc := NewDocument(800, 600)
	doc.Add(NewTextItem("Hello, {name}!"))
	qr := NewQRCodeItem("https://example.com/rsvp?g={name}")
	doc.Add(qr)

	pkgPath := filepath.Join(dir, "tokens.zip")
	resolve := func(s string) string { return strings.ReplaceAll(s, "{name}", "Ada") }
	if err := ExportPackage(doc, "tokens", pkgPath, ExportOptions{Tokens: resolve}); err != nil {
		t.Fatalf("ExportPackage: %v", err)
	}

	loaded, err := ImportPackage(pkgPath, filepath.Join(dir, "assets"), ImportOptions{})
	if err != nil {
		t.Fatalf("ImportPackage: %v", err)
	}
	for _, it := range loaded.ItemsInZOrder() {
		switch it.Kind {
		case KindText:
			if it.Text.Content != "Hello, Ada!" {
				t.Errorf("text = %q, want resolved", it.Text.Content)
			}
		case KindQRCode:
			if it.QR.Value != "https://example.com/rsvp?g=Ada" {
				t.Errorf("qr value = %q, want resolved", it.QR.Value)
			}
		}
	}

	// The live document keeps its tokens.
	for _, it := range doc.ItemsInZOrder() {
		if it.Kind == KindText && it.Text.Content != "Hello, {name}!" {
			t.Error("export mutated the live document")
		}
	}
}

func TestExportMissingAssetIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	doc := NewDocument(800, 600)
	doc.Add(NewImageItem(filepath.Join(dir, "no-such-file.png")))

	pkgPath := filepath.Join(dir, "partial.zip")
	if err := ExportPackage(doc, "partial", pkgPath, ExportOptions{}); err != nil {
		t.Fatalf("a missing asset must not fail the export: %v", err)
	}
	m, err := ReadPackageManifest(pkgPath)
	if err != nil {
		t.Fatalf("ReadPackageManifest: %v", err)
	}
	if m.AssetCount != 0 {
		t.Errorf("AssetCount = %d, want 0", m.AssetCount)
	}
	if m.ItemCount != 1 {
		t.Errorf("ItemCount = %d, want 1", m.ItemCount)
	}
}

func TestExportAssetNameCollision(t *testing.T) {
	// Two distinct files sharing a basename must land under distinct
	// package names.
	dir := t.TempDir()
	subA := filepath.Join(dir, "a")
	subB := filepath.Join(dir, "b")
	for _, d := range []string{subA, subB} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writeTestPNG(t, filepath.Join(subA, "photo.png"))
	writeTestPNG(t, filepath.Join(subB, "photo.png"))

	doc := NewDocument(800, 600)
	doc.Add(NewImageItem(filepath.Join(subA, "photo.png")))
	doc.Add(NewImageItem(filepath.Join(subB, "photo.png")))

	pkgPath := filepath.Join(dir, "collide.zip")
	if err := ExportPackage(doc, "collide", pkgPath, ExportOptions{}); err != nil {
		t.Fatalf("ExportPackage: %v", err)
	}

	loaded, err := ImportPackage(pkgPath, filepath.Join(dir, "out"), ImportOptions{})
	if err != nil {
		t.Fatalf("ImportPackage: %v", err)
	}
	seen := map[string]bool{}
	for _, it := range loaded.ItemsInZOrder() {
		src := it.Image.SourceRef
		if seen[src] {
			t.Errorf("two items resolved to the same extracted file %q", src)
		}
		seen[src] = true
		if _, err := os.Stat(src); err != nil {
			t.Errorf("extracted asset missing: %v", err)
		}
	}
}

func TestMergedPixelsExportAsAssets(t *testing.T) {
	dir := t.TempDir()
	px := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	doc := NewDocument(800, 600)
	doc.Add(NewImageItemFromPixels(px))

	pkgPath := filepath.Join(dir, "merged.zip")
	if err := ExportPackage(doc, "merged", pkgPath, ExportOptions{}); err != nil {
		t.Fatalf("ExportPackage: %v", err)
	}
	loaded, err := ImportPackage(pkgPath, filepath.Join(dir, "assets"), ImportOptions{})
	if err != nil {
		t.Fatalf("ImportPackage: %v", err)
	}
	it := loaded.ItemsInZOrder()[0]
	if it.Image.Unresolved() {
		t.Fatal("merged image came back unresolved")
	}
	if _, err := os.Stat(it.Image.SourceRef); err != nil {
		t.Errorf("merged asset missing on disk: %v", err)
	}
}

func TestImportRejectsNonTemplateArchive(t *testing.T) {
	dir := t.TempDir()
	pkgPath := filepath.Join(dir, "junk.zip")
	f, err := os.Create(pkgPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("readme.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("not a template")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := ImportPackage(pkgPath, filepath.Join(dir, "assets"), ImportOptions{}); !errors.Is(err, ErrNotTemplatePackage) {
		t.Errorf("ImportPackage error = %v, want ErrNotTemplatePackage", err)
	}
	if _, err := ReadPackageManifest(pkgPath); !errors.Is(err, ErrNotTemplatePackage) {
		t.Errorf("ReadPackageManifest error = %v, want ErrNotTemplatePackage", err)
	}
}

func TestReadPackageManifest(t *testing.T) {
	dir := t.TempDir()
	doc := NewDocument(800, 600)
	doc.Add(NewTextItem("a"))
	doc.Add(NewTextItem("b"))

	pkgPath := filepath.Join(dir, "m.zip")
	if err := ExportPackage(doc, "manifest-test", pkgPath, ExportOptions{}); err != nil {
		t.Fatalf("ExportPackage: %v", err)
	}
	m, err := ReadPackageManifest(pkgPath)
	if err != nil {
		t.Fatalf("ReadPackageManifest: %v", err)
	}
	if m.PackageVersion != packageVersion {
		t.Errorf("PackageVersion = %d, want %d", m.PackageVersion, packageVersion)
	}
	if m.TemplateName != "manifest-test" {
		t.Errorf("TemplateName = %q", m.TemplateName)
	}
	if m.ItemCount != 2 {
		t.Errorf("ItemCount = %d, want 2", m.ItemCount)
	}
	if m.ExportedAt.IsZero() {
		t.Error("ExportedAt not set")
	}
}

func TestTemplateFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc := NewDocument(640, 480)
	doc.Add(NewTextItem("bare json"))

	path := filepath.Join(dir, "t.json")
	if err := WriteTemplateFile(doc, "bare", path); err != nil {
		t.Fatalf("WriteTemplateFile: %v", err)
	}
	loaded, err := ReadTemplateFile(path)
	if err != nil {
		t.Fatalf("ReadTemplateFile: %v", err)
	}
	if loaded.Width != 640 || loaded.Height != 480 {
		t.Errorf("canvas = %vx%v", loaded.Width, loaded.Height)
	}
	if loaded.Len() != 1 || loaded.ItemsInZOrder()[0].Text.Content != "bare json" {
		t.Error("template file round trip lost the item")
	}
}

func TestReserveNameCollisions(t *testing.T) {
	used := map[string]bool{}
	first := reserveName(used, "photo.png")
	if first != "photo.png" {
		t.Errorf("first reservation = %q", first)
	}
	second := reserveName(used, "photo.png")
	if second == first {
		t.Error("collision not suffixed")
	}
	if !strings.HasPrefix(second, "photo-") || !strings.HasSuffix(second, ".png") {
		t.Errorf("suffixed name = %q, want photo-<tag>.png", second)
	}
	if got := reserveName(used, "we/ird na?me.png"); strings.ContainsAny(got, "/?") {
		t.Errorf("sanitized name %q still has unsafe characters", got)
	}
}
