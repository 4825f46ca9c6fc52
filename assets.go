package easel

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// AssetStore copies referenced asset files into a single directory with
// collision-safe names, remembering the originalPath -> storedPath mapping.
// Export uses one to build a package's assets/ folder; import uses one to
// land extracted assets in local storage.
type AssetStore struct {
	dir     string
	mapping map[string]string
	used    map[string]bool
}

// NewAssetStore creates a store rooted at dir, creating it if needed.
func NewAssetStore(dir string) (*AssetStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("asset store: mkdir %s: %w", dir, err)
	}
	return &AssetStore{
		dir:     dir,
		mapping: make(map[string]string),
		used:    make(map[string]bool),
	}, nil
}

// Dir returns the store's root directory.
func (s *AssetStore) Dir() string {
	return s.dir
}

// Mapping returns the accumulated originalPath -> storedPath map. The map
// must not be mutated by the caller.
func (s *AssetStore) Mapping() map[string]string {
	return s.mapping
}

// Ingest copies the file at srcPath into the store and returns the stored
// path. Repeated ingests of the same source return the existing copy. Name
// collisions between distinct sources get a random suffix.
func (s *AssetStore) Ingest(srcPath string) (string, error) {
	if stored, ok := s.mapping[srcPath]; ok {
		return stored, nil
	}
	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("asset store: open %s: %w", srcPath, err)
	}
	defer src.Close()

	name := s.ReserveName(filepath.Base(srcPath))
	dest := filepath.Join(s.dir, name)
	if err := copyToFile(dest, src); err != nil {
		return "", err
	}
	s.mapping[srcPath] = dest
	return dest, nil
}

// IngestReader writes a reader's contents into the store under the given
// preferred file name, applying the same collision handling as Ingest.
// Returns the stored path.
func (s *AssetStore) IngestReader(preferredName string, r io.Reader) (string, error) {
	name := s.ReserveName(preferredName)
	dest := filepath.Join(s.dir, name)
	if err := copyToFile(dest, r); err != nil {
		return "", err
	}
	return dest, nil
}

// ReserveName claims a file name in the store, appending a short random
// suffix on collision, and returns the (possibly suffixed) name.
func (s *AssetStore) ReserveName(name string) string {
	return reserveName(s.used, name)
}

// reserveName claims name in used, suffixing with a short random tag on
// collision. Shared by the on-disk store and the zip package writer.
func reserveName(used map[string]bool, name string) string {
	name = sanitizeAssetName(name)
	if !used[name] {
		used[name] = true
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for {
		candidate := fmt.Sprintf("%s-%s%s", stem, uuid.NewString()[:8], ext)
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}

// sanitizeAssetName replaces characters that are unsafe in file names.
func sanitizeAssetName(name string) string {
	if name == "" {
		return "asset"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func copyToFile(dest string, r io.Reader) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("asset store: create %s: %w", dest, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("asset store: write %s: %w", dest, err)
	}
	return f.Close()
}
