package easel

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Template package layout: a zip archive holding the serialized document,
// its referenced asset files, and a manifest.
const (
	packageTemplateFile = "template.json"
	packageManifestFile = "manifest.json"
	packageAssetDir     = "assets"

	packageVersion = 1
)

// defaultInstructions is the human-readable note written into every
// manifest.
const defaultInstructions = "Template package. Import with easelpack or the easel library; " +
	"assets/ holds the referenced image files."

// ErrNotTemplatePackage reports an archive without a template.json entry.
// It is fatal to that one import, never to the session.
var ErrNotTemplatePackage = errors.New("easel: archive is not a template package (missing " + packageTemplateFile + ")")

// Manifest describes a template package for tooling and humans.
type Manifest struct {
	PackageVersion int       `json:"packageVersion"`
	ExportedAt     time.Time `json:"exportedAt"`
	TemplateName   string    `json:"templateName"`
	ItemCount      int       `json:"itemCount"`
	AssetCount     int       `json:"assetCount"`
	Instructions   string    `json:"instructions,omitempty"`
}

// ExportOptions tunes package export. The zero value is usable.
type ExportOptions struct {
	// Tokens, when set, is applied to text, QR, and barcode values in the
	// exported record (the live document is never touched).
	Tokens TokenResolver
	Logger *zap.Logger
}

// ImportOptions tunes package import. The zero value is usable.
type ImportOptions struct {
	Logger *zap.Logger
}

// WriteTemplateFile serializes the document to an indented template.json
// at path (no assets, no archive).
func WriteTemplateFile(doc *Document, name, outPath string) error {
	data, err := json.MarshalIndent(ToRecord(doc, name), "", "  ")
	if err != nil {
		return fmt.Errorf("easel: encode template: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("easel: write template %s: %w", outPath, err)
	}
	return nil
}

// ReadTemplateFile loads a bare template.json into a document.
func ReadTemplateFile(inPath string) (*Document, error) {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("easel: read template %s: %w", inPath, err)
	}
	var rec TemplateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("easel: decode template %s: %w", inPath, err)
	}
	return FromRecord(&rec)
}

// ExportPackage writes the document as a template package zip at outPath.
//
// Every image item with a resolvable source file is copied into the
// archive's assets/ folder under a collision-safe name, and the
// originalPath -> packagePath pair is recorded in the record's
// assetMappings. In-memory images (merge-down results) are encoded as PNG
// assets. Sources that cannot be read are logged and left unresolved; they
// never fail the export.
func ExportPackage(doc *Document, name, outPath string, opts ExportOptions) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	rec := ToRecord(doc, name)
	if opts.Tokens != nil {
		resolveRecordTokens(rec, opts.Tokens)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("easel: create package %s: %w", outPath, err)
	}
	zw := zip.NewWriter(f)

	used := make(map[string]bool)
	assetCount := 0
	items := doc.ItemsInZOrder() // index-aligned with rec.Items
	for i := range rec.Items {
		ir := &rec.Items[i]
		if ir.ItemType != KindImage.String() && ir.ItemType != KindPlaceholder.String() {
			continue
		}
		it := items[i]
		switch {
		case ir.ImageSource != "":
			src, err := os.Open(ir.ImageSource)
			if err != nil {
				log.Warn("export: asset not found, leaving unresolved",
					zap.String("path", ir.ImageSource), zap.Error(err))
				continue
			}
			pkgPath := path.Join(packageAssetDir, reserveName(used, filepath.Base(ir.ImageSource)))
			if err := writeZipEntry(zw, pkgPath, src); err != nil {
				src.Close()
				zw.Close()
				f.Close()
				return err
			}
			src.Close()
			if rec.AssetMappings == nil {
				rec.AssetMappings = make(map[string]string)
			}
			rec.AssetMappings[ir.ImageSource] = pkgPath
			assetCount++
		case it.Image != nil && it.Image.Pixels != nil:
			pkgPath := path.Join(packageAssetDir, reserveName(used, fmt.Sprintf("merged-%d.png", i)))
			w, err := zw.Create(pkgPath)
			if err != nil {
				zw.Close()
				f.Close()
				return fmt.Errorf("easel: package entry %s: %w", pkgPath, err)
			}
			if err := png.Encode(w, it.Image.Pixels); err != nil {
				zw.Close()
				f.Close()
				return fmt.Errorf("easel: encode %s: %w", pkgPath, err)
			}
			ir.ImageSource = pkgPath
			assetCount++
		}
	}

	if err := writeZipJSON(zw, packageTemplateFile, rec); err != nil {
		zw.Close()
		f.Close()
		return err
	}
	manifest := Manifest{
		PackageVersion: packageVersion,
		ExportedAt:     time.Now().UTC(),
		TemplateName:   name,
		ItemCount:      len(rec.Items),
		AssetCount:     assetCount,
		Instructions:   defaultInstructions,
	}
	if err := writeZipJSON(zw, packageManifestFile, manifest); err != nil {
		zw.Close()
		f.Close()
		return err
	}

	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("easel: finalize package %s: %w", outPath, err)
	}
	log.Info("exported template package",
		zap.String("path", outPath),
		zap.Int("items", len(rec.Items)),
		zap.Int("assets", assetCount))
	return f.Close()
}

// ImportPackage loads a template package, extracting its assets into
// assetDir (created if needed) and rewriting image sources to the
// extracted local paths. A missing template.json is fatal to the import
// (ErrNotTemplatePackage); a missing individual asset only leaves that one
// image unresolved.
func ImportPackage(pkgPath, assetDir string, opts ImportOptions) (*Document, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	zr, err := zip.OpenReader(pkgPath)
	if err != nil {
		return nil, fmt.Errorf("easel: open package %s: %w", pkgPath, err)
	}
	defer zr.Close()

	entries := make(map[string]*zip.File, len(zr.File))
	for _, zf := range zr.File {
		entries[zf.Name] = zf
	}

	tmplEntry, ok := entries[packageTemplateFile]
	if !ok {
		return nil, ErrNotTemplatePackage
	}
	var rec TemplateRecord
	if err := readZipJSON(tmplEntry, &rec); err != nil {
		return nil, err
	}

	store, err := NewAssetStore(assetDir)
	if err != nil {
		return nil, err
	}
	for i := range rec.Items {
		ir := &rec.Items[i]
		if ir.ImageSource == "" {
			continue
		}
		pkgEntry := rec.AssetMappings[ir.ImageSource]
		if pkgEntry == "" {
			pkgEntry = ir.ImageSource // merged assets point straight into the archive
		}
		zf, ok := entries[pkgEntry]
		if !ok {
			log.Warn("import: asset missing from package, leaving unresolved",
				zap.String("source", ir.ImageSource))
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			log.Warn("import: asset unreadable, leaving unresolved",
				zap.String("entry", pkgEntry), zap.Error(err))
			continue
		}
		stored, err := store.IngestReader(path.Base(pkgEntry), rc)
		rc.Close()
		if err != nil {
			log.Warn("import: asset extract failed, leaving unresolved",
				zap.String("entry", pkgEntry), zap.Error(err))
			continue
		}
		ir.ImageSource = stored
	}

	doc, err := FromRecord(&rec)
	if err != nil {
		return nil, err
	}
	log.Info("imported template package",
		zap.String("path", pkgPath),
		zap.Int("items", doc.Len()))
	return doc, nil
}

// ReadPackageManifest returns the manifest of a package without importing
// it. A package without a manifest yields a zero manifest and no error;
// only an unreadable archive or missing template.json is an error.
func ReadPackageManifest(pkgPath string) (Manifest, error) {
	var m Manifest
	zr, err := zip.OpenReader(pkgPath)
	if err != nil {
		return m, fmt.Errorf("easel: open package %s: %w", pkgPath, err)
	}
	defer zr.Close()

	hasTemplate := false
	var manifestEntry *zip.File
	for _, zf := range zr.File {
		switch zf.Name {
		case packageTemplateFile:
			hasTemplate = true
		case packageManifestFile:
			manifestEntry = zf
		}
	}
	if !hasTemplate {
		return m, ErrNotTemplatePackage
	}
	if manifestEntry != nil {
		if err := readZipJSON(manifestEntry, &m); err != nil {
			return Manifest{}, err
		}
	}
	return m, nil
}

// resolveRecordTokens applies the resolver to every token-bearing field in
// the record.
func resolveRecordTokens(rec *TemplateRecord, resolve TokenResolver) {
	for i := range rec.Items {
		ir := &rec.Items[i]
		switch ir.ItemType {
		case KindText.String():
			ir.Text = resolve(ir.Text)
		case KindQRCode.String(), KindBarcode.String():
			ir.Value = resolve(ir.Value)
		}
	}
}

func writeZipEntry(zw *zip.Writer, name string, r io.Reader) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("easel: package entry %s: %w", name, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("easel: package entry %s: %w", name, err)
	}
	return nil
}

func writeZipJSON(zw *zip.Writer, name string, v any) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("easel: package entry %s: %w", name, err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("easel: encode %s: %w", name, err)
	}
	return nil
}

func readZipJSON(zf *zip.File, v any) error {
	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("easel: package entry %s: %w", zf.Name, err)
	}
	defer rc.Close()
	if err := json.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("easel: decode %s: %w", zf.Name, err)
	}
	return nil
}
