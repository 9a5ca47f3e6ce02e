package backends

import (
	"time"

	"github.com/kyleterry/vhttp/pkg/files"
	"github.com/kyleterry/vhttp/pkg/files/store"
)

var placeholderEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Placeholder returns a fixed demo snapshot for running without any real
// content.
func Placeholder() []store.Entry {
	seed := []struct {
		name, contentType, body string
	}{
		{"readme.txt", "text/plain", "This server is running with placeholder content.\n"},
		{"data.json", "application/json", `{"message":"hello from the virtual server"}` + "\n"},
		{"index.html", "text/html", "<!doctype html><title>vhttp</title><p>placeholder</p>\n"},
		{"LICENSE", "", "Placeholder license text.\n"},
	}

	entries := make([]store.Entry, 0, len(seed))

	for i, s := range seed {
		rec := files.Record{
			Name:         s.name,
			Size:         int64(len(s.body)),
			ContentType:  s.contentType,
			LastModified: placeholderEpoch.Add(time.Duration(i) * time.Hour),
			Content:      []byte(s.body),
		}

		entries = append(entries, store.Entry{Key: s.name, Record: rec})
	}

	return entries
}
