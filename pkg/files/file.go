package files

import (
	"time"
)

// DefaultContentType is used when serving a record that has no content type.
const DefaultContentType = "application/octet-stream"

// Record is a single file held by the content store.
type Record struct {
	Name         string
	Size         int64
	ContentType  string
	LastModified time.Time
	Content      []byte
}

// ServedContentType returns the content type to put on the wire for the record.
func (r Record) ServedContentType() string {
	if r.ContentType == "" {
		return DefaultContentType
	}

	return r.ContentType
}

// LastModifiedMillis returns LastModified as milliseconds since the unix epoch.
// A zero time is reported as 0.
func (r Record) LastModifiedMillis() int64 {
	if r.LastModified.IsZero() {
		return 0
	}

	return r.LastModified.UnixMilli()
}

// Extension is the category the record is grouped under: whatever follows the
// last dot in the name, or NoExtension.
func (r Record) Extension() string {
	return Extension(r.Name)
}

// NoExtension is the bucket for names without a usable extension.
const NoExtension = "no-extension"

func Extension(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			if ext := name[i+1:]; ext != "" {
				return ext
			}

			break
		}
	}

	return NoExtension
}
