// Package easel is the document model for an interactive 2D composition
// editor: a canvas of positioned, layered items (images, placeholders,
// text, shapes, QR codes, barcodes) that is arranged, restacked, merged,
// and persisted as a reusable template.
//
// Easel deliberately owns only the model. Rendering is delegated to a
// [Rasterizer] collaborator (package raster provides a CPU reference
// implementation), gesture recognition and UI chrome live in the caller,
// and dynamic token substitution is an injected [TokenResolver].
//
// # Documents and items
//
// Every visual element is an [Item]: one flat struct with a closed
// [ItemKind] discriminant and a per-kind payload. Items belong to exactly
// one [Document], which derives draw and selection order by sorting on
// ZIndex each time it is needed:
//
//	doc := easel.NewDocument(800, 600)
//	title := easel.NewTextItem("Summer Party {date}")
//	title.SetPosition(40, 20)
//	doc.Add(title)
//	doc.Add(easel.NewPlaceholderItem(1))
//
// # Sessions
//
// A [Session] bundles a document with its [Selection], snapshot-based
// [History], and [Clipboard], and exposes the command entry points a UI
// calls. Each command pushes at most one undo snapshot:
//
//	s := easel.NewSession(doc, easel.SessionConfig{})
//	s.AddItem(easel.NewShapeItem(easel.ShapeEllipse))
//	s.Undo()
//
// # Templates and packages
//
// [ToRecord] and [FromRecord] convert between live documents and the
// persisted [TemplateRecord] form. [ExportPackage] and [ImportPackage]
// bundle a template with its asset files and a manifest into a single zip
// archive, remapping asset paths on the way through.
//
// The model is single-threaded by design: all mutation happens
// synchronously on the editing goroutine, and background work (asset
// copies, rasterization) applies its results back as one atomic command.
package easel
