package backends

import (
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/kyleterry/vhttp/pkg/files"
	"github.com/kyleterry/vhttp/pkg/files/errors"
	"github.com/kyleterry/vhttp/pkg/files/store"
)

type FilesystemOptions struct {
	Path string
}

// Filesystem reads snapshots from the regular files directly inside a
// directory. Symlinks are followed; subdirectories are skipped.
type Filesystem struct {
	path string
}

// Get reads a single file from the directory.
func (fs *Filesystem) Get(key string) (*files.Record, error) {
	return readRecord(key, filepath.Join(fs.path, key))
}

// Load reads every regular file in the directory, sorted by name.
func (fs *Filesystem) Load() ([]store.Entry, error) {
	dirents, err := os.ReadDir(fs.path)
	if err != nil {
		return nil, errors.NewUnknownError("failed to read snapshot directory").WithCause(err)
	}

	sort.Slice(dirents, func(i, j int) bool { return dirents[i].Name() < dirents[j].Name() })

	entries := make([]store.Entry, 0, len(dirents))

	for _, d := range dirents {
		stat, err := os.Stat(filepath.Join(fs.path, d.Name()))
		if err != nil {
			if os.IsNotExist(err) {
				// dangling symlink
				continue
			}

			return nil, errors.NewUnknownError("failed to stat " + d.Name()).WithCause(err)
		}

		if !stat.Mode().IsRegular() {
			continue
		}

		rec, err := fs.Get(d.Name())
		if err != nil {
			return nil, err
		}

		entries = append(entries, store.Entry{Key: rec.Name, Record: *rec})
	}

	return entries, nil
}

func NewFilesystem(opts FilesystemOptions) *Filesystem {
	return &Filesystem{
		path: opts.Path,
	}
}

func readRecord(name, path string) (*files.Record, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(name).WithCause(err)
		}

		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewUnknownError("failed to read file " + path).WithCause(err)
	}

	contentType := contentTypeByName(name)
	if contentType == "" && len(content) > 0 {
		contentType = http.DetectContentType(content)
	}

	return &files.Record{
		Name:         name,
		Size:         int64(len(content)),
		ContentType:  contentType,
		LastModified: stat.ModTime(),
		Content:      content,
	}, nil
}

func contentTypeByName(name string) string {
	return mime.TypeByExtension(filepath.Ext(name))
}
