package testutil

import (
	"time"

	"github.com/kyleterry/vhttp/pkg/files"
	"github.com/kyleterry/vhttp/pkg/files/store"
)

// Modified is the LastModified time given to every record made by Entries.
var Modified = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// Entries builds store entries from name, contentType, content triples.
func Entries(triples ...string) []store.Entry {
	if len(triples)%3 != 0 {
		panic("testutil.Entries: arguments must be name, contentType, content triples")
	}

	entries := make([]store.Entry, 0, len(triples)/3)

	for i := 0; i < len(triples); i += 3 {
		name, contentType, content := triples[i], triples[i+1], triples[i+2]

		entries = append(entries, store.Entry{
			Key: name,
			Record: files.Record{
				Name:         name,
				Size:         int64(len(content)),
				ContentType:  contentType,
				LastModified: Modified,
				Content:      []byte(content),
			},
		})
	}

	return entries
}
