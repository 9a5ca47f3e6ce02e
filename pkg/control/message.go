package control

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kyleterry/vhttp/pkg/files"
	"github.com/kyleterry/vhttp/pkg/files/store"
)

const (
	// TypeFileCacheUpdate tags a message carrying a full replacement snapshot.
	TypeFileCacheUpdate = "FILE_CACHE_UPDATE"
	// TypeCacheReady tags the notification sent after a snapshot is installed.
	TypeCacheReady = "CACHE_READY"
)

// Notification is broadcast to every observer after an update.
type Notification struct {
	Type      string `json:"type"`
	FileCount int    `json:"fileCount"`
}

// Message is the envelope of every control message sent by the owner.
type Message struct {
	Type  string      `json:"type"`
	Files []FileEntry `json:"files,omitempty"`
}

// FileEntry is a [name, file] pair as sent on the wire.
type FileEntry struct {
	Name string
	File File
}

// File is the wire form of a record. LastModified is in milliseconds since the
// unix epoch and Content is base64 encoded.
type File struct {
	Name         string `json:"name"`
	Size         *int64 `json:"size,omitempty"`
	Type         string `json:"type"`
	LastModified int64  `json:"lastModified"`
	Content      []byte `json:"content"`
}

func (e *FileEntry) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("file entry must be a [name, file] pair: %w", err)
	}

	if len(pair) != 2 {
		return fmt.Errorf("file entry must have 2 elements, got %d", len(pair))
	}

	if err := json.Unmarshal(pair[0], &e.Name); err != nil {
		return fmt.Errorf("file entry name: %w", err)
	}

	if err := json.Unmarshal(pair[1], &e.File); err != nil {
		return fmt.Errorf("file entry %q: %w", e.Name, err)
	}

	return nil
}

func (e FileEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Name, e.File})
}

// Entry converts the wire entry to a store entry. A missing size is taken from
// the content length and a missing file name from the entry name.
func (e FileEntry) Entry() store.Entry {
	size := int64(len(e.File.Content))
	if e.File.Size != nil {
		size = *e.File.Size
	}

	name := e.File.Name
	if name == "" {
		name = e.Name
	}

	rec := files.Record{
		Name:        name,
		Size:        size,
		ContentType: e.File.Type,
		Content:     e.File.Content,
	}

	if e.File.LastModified != 0 {
		rec.LastModified = time.UnixMilli(e.File.LastModified).UTC()
	}

	return store.Entry{Key: e.Name, Record: rec}
}

// NewFileEntry builds the wire form of a store entry.
func NewFileEntry(e store.Entry) FileEntry {
	size := e.Record.Size

	return FileEntry{
		Name: e.Key,
		File: File{
			Name:         e.Record.Name,
			Size:         &size,
			Type:         e.Record.ContentType,
			LastModified: e.Record.LastModifiedMillis(),
			Content:      e.Record.Content,
		},
	}
}

// NewUpdateMessage builds a FILE_CACHE_UPDATE message for entries.
func NewUpdateMessage(entries []store.Entry) Message {
	m := Message{Type: TypeFileCacheUpdate, Files: make([]FileEntry, len(entries))}
	for i, e := range entries {
		m.Files[i] = NewFileEntry(e)
	}

	return m
}

// Entries converts every file of the message to store entries.
func (m Message) Entries() []store.Entry {
	entries := make([]store.Entry, len(m.Files))
	for i, f := range m.Files {
		entries[i] = f.Entry()
	}

	return entries
}
