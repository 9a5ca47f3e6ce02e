package store

import (
	"sync/atomic"

	"github.com/kyleterry/vhttp/pkg/files"
	"github.com/kyleterry/vhttp/pkg/files/errors"
)

// Entry pairs a lookup key with the record it maps to. The key must equal the
// record's name.
type Entry struct {
	Key    string
	Record files.Record
}

// Snapshot is an immutable view of the store's contents at one point in time.
type Snapshot struct {
	records []files.Record
	index   map[string]int
}

var emptySnapshot = &Snapshot{index: map[string]int{}}

// Get returns the record stored under name.
func (s *Snapshot) Get(name string) (files.Record, error) {
	i, ok := s.index[name]
	if !ok {
		return files.Record{}, errors.NewNotFoundError(name)
	}

	return s.records[i], nil
}

// Values returns every record. The order is the order of insertion, but callers
// should not rely on it.
func (s *Snapshot) Values() []files.Record {
	return append([]files.Record(nil), s.records...)
}

// Names returns the key of every record.
func (s *Snapshot) Names() []string {
	names := make([]string, len(s.records))
	for i, r := range s.records {
		names[i] = r.Name
	}

	return names
}

func (s *Snapshot) Size() int {
	return len(s.records)
}

// TotalSize is the sum of the sizes of all records.
func (s *Snapshot) TotalSize() int64 {
	var total int64
	for _, r := range s.records {
		total += r.Size
	}

	return total
}

// Store holds the current snapshot. Readers never lock; ReplaceAll swaps the
// whole snapshot at once so a reader sees either the old or the new set.
type Store struct {
	current atomic.Pointer[Snapshot]
}

func New() *Store {
	s := &Store{}
	s.current.Store(emptySnapshot)

	return s
}

// Snapshot returns the snapshot installed at the time of the call. Handlers
// should take one snapshot per request and read only from it.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// ReplaceAll discards the previous contents and installs entries. If any entry
// is invalid nothing is installed.
func (s *Store) ReplaceAll(entries []Entry) error {
	snap, err := build(entries)
	if err != nil {
		return err
	}

	s.current.Store(snap)

	return nil
}

func (s *Store) Get(name string) (files.Record, error) {
	return s.Snapshot().Get(name)
}

func (s *Store) Values() []files.Record {
	return s.Snapshot().Values()
}

func (s *Store) Names() []string {
	return s.Snapshot().Names()
}

func (s *Store) Size() int {
	return s.Snapshot().Size()
}

func build(entries []Entry) (*Snapshot, error) {
	snap := &Snapshot{
		records: make([]files.Record, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for _, e := range entries {
		rec := e.Record

		if e.Key != rec.Name {
			return nil, errors.NewInvalidRecordError(e.Key, "key does not match record name "+rec.Name)
		}

		if rec.Size < 0 {
			return nil, errors.NewInvalidRecordError(e.Key, "negative size")
		}

		if rec.Size != int64(len(rec.Content)) {
			return nil, errors.NewInvalidRecordError(e.Key, "size does not match content length")
		}

		// the store owns its bytes; the caller may reuse its buffer
		rec.Content = append([]byte(nil), rec.Content...)

		// a repeated key replaces the earlier record in place
		if i, ok := snap.index[e.Key]; ok {
			snap.records[i] = rec

			continue
		}

		snap.index[e.Key] = len(snap.records)
		snap.records = append(snap.records, rec)
	}

	return snap, nil
}
