package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kyleterry/vhttp/pkg/files"
	"github.com/kyleterry/vhttp/pkg/files/store"
)

type fileSummary struct {
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
	LastModified int64  `json:"lastModified"`
	DownloadURL  string `json:"downloadUrl"`
}

type listingResponse struct {
	Success   bool          `json:"success"`
	Count     int           `json:"count"`
	Files     []fileSummary `json:"files"`
	Timestamp string        `json:"timestamp"`
}

// ListingHandler handles requests to / and /files
type ListingHandler struct {
	store  *store.Store
	now    func() time.Time
	logger zerolog.Logger
}

func (h ListingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	records := snap.Values()

	resp := listingResponse{
		Success:   true,
		Count:     len(records),
		Files:     make([]fileSummary, len(records)),
		Timestamp: timestamp(h.now()),
	}

	for i, rec := range records {
		resp.Files[i] = fileSummary{
			Name:         rec.Name,
			Size:         rec.Size,
			Type:         rec.ContentType,
			LastModified: rec.LastModifiedMillis(),
			DownloadURL:  DownloadURL(rec.Name),
		}
	}

	writeJSON(h.logger, w, http.StatusOK, resp)
}

type notFoundResponse struct {
	Error          string   `json:"error"`
	Filename       string   `json:"filename"`
	AvailableFiles []string `json:"availableFiles"`
}

// FileHandler returns the raw content of a single file.
type FileHandler struct {
	key    string
	store  *store.Store
	logger zerolog.Logger
}

func (h FileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()

	rec, err := snap.Get(h.key)
	if err != nil {
		h.notFound(w, snap)

		return
	}

	w.Header().Set("Content-Type", rec.ServedContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+rec.Name+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(rec.Size, 10))
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(rec.Content); err != nil {
		h.logger.Debug().Err(err).Str("file", rec.Name).Msg("failed to write content to response")
	}
}

// notFound lists every available name to help whoever typed the url. The 404
// carries no CORS header, unlike every other response.
func (h FileHandler) notFound(w http.ResponseWriter, snap *store.Snapshot) {
	b, err := json.Marshal(notFoundResponse{
		Error:          "File not found",
		Filename:       h.key,
		AvailableFiles: snap.Names(),
	})
	if err != nil {
		WriteError(h.logger, err, w)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write(b)
}

type foldersResponse struct {
	Success     bool                `json:"success"`
	FolderCount int                 `json:"folderCount"`
	Folders     map[string][]string `json:"folders"`
	Timestamp   string              `json:"timestamp"`
}

// FoldersHandler groups file names by extension into pseudo folders.
type FoldersHandler struct {
	store  *store.Store
	now    func() time.Time
	logger zerolog.Logger
}

func (h FoldersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	folders := GroupByExtension(h.store.Snapshot().Values())

	writeJSON(h.logger, w, http.StatusOK, foldersResponse{
		Success:     true,
		FolderCount: len(folders),
		Folders:     folders,
		Timestamp:   timestamp(h.now()),
	})
}

// GroupByExtension buckets the record names by files.Extension, keeping the
// order of records within each bucket.
func GroupByExtension(records []files.Record) map[string][]string {
	folders := map[string][]string{}

	for _, rec := range records {
		ext := rec.Extension()
		folders[ext] = append(folders[ext], rec.Name)
	}

	return folders
}

type infoResponse struct {
	Success            bool     `json:"success"`
	FileCount          int      `json:"fileCount"`
	TotalSize          int64    `json:"totalSize"`
	TotalSizeFormatted string   `json:"totalSizeFormatted"`
	FileTypes          []string `json:"fileTypes"`
	Timestamp          string   `json:"timestamp"`
}

// InfoHandler reports aggregate statistics over the store.
type InfoHandler struct {
	store  *store.Store
	now    func() time.Time
	logger zerolog.Logger
}

func (h InfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	records := snap.Values()
	total := snap.TotalSize()

	types := []string{}
	seen := map[string]struct{}{}

	for _, rec := range records {
		if _, ok := seen[rec.ContentType]; ok {
			continue
		}

		seen[rec.ContentType] = struct{}{}
		types = append(types, rec.ContentType)
	}

	writeJSON(h.logger, w, http.StatusOK, infoResponse{
		Success:            true,
		FileCount:          len(records),
		TotalSize:          total,
		TotalSizeFormatted: FormatSize(total),
		FileTypes:          types,
		Timestamp:          timestamp(h.now()),
	})
}

// DownloadURL is the file route for name. The name is escaped as a single URI
// component: everything but letters, digits and -_.!~*'() is percent-encoded,
// including slashes.
func DownloadURL(name string) string {
	return FileRoutePrefix + encodeURIComponent(name)
}

func encodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreservedURIComponent(c) {
			b.WriteByte(c)

			continue
		}

		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}

	return b.String()
}

func isUnreservedURIComponent(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}

	return strings.IndexByte("-_.!~*'()", c) >= 0
}
