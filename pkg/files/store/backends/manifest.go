package backends

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kyleterry/vhttp/pkg/files/errors"
	"github.com/kyleterry/vhttp/pkg/files/store"
)

// Manifest lists the files of a snapshot explicitly. Paths are relative to the
// manifest file.
//
//	files:
//	  - path: docs/report.pdf
//	  - name: notes
//	    path: notes.txt
//	    contentType: text/markdown
//	    lastModified: 2024-01-02T15:04:05Z
type Manifest struct {
	Files []ManifestFile `yaml:"files"`
}

type ManifestFile struct {
	Name         string    `yaml:"name"`
	Path         string    `yaml:"path"`
	ContentType  string    `yaml:"contentType"`
	LastModified time.Time `yaml:"lastModified"`
}

// LoadManifest reads the manifest at path and the files it references.
func LoadManifest(path string) ([]store.Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewUnknownError("failed to read manifest").WithCause(err)
	}

	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, errors.NewUnknownError("failed to parse manifest").WithCause(err)
	}

	return m.Entries(filepath.Dir(path))
}

// Entries reads the files referenced by the manifest, resolving relative paths
// against base.
func (m Manifest) Entries(base string) ([]store.Entry, error) {
	entries := make([]store.Entry, 0, len(m.Files))

	for i, f := range m.Files {
		if f.Path == "" {
			return nil, fmt.Errorf("manifest entry %d: path is required", i)
		}

		path := f.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}

		name := f.Name
		if name == "" {
			name = filepath.Base(f.Path)
		}

		rec, err := readRecord(name, path)
		if err != nil {
			return nil, fmt.Errorf("manifest entry %d: %w", i, err)
		}

		if f.ContentType != "" {
			rec.ContentType = f.ContentType
		}

		if !f.LastModified.IsZero() {
			rec.LastModified = f.LastModified
		}

		entries = append(entries, store.Entry{Key: name, Record: *rec})
	}

	return entries, nil
}
