package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/kyleterry/vhttp/pkg/files/errors"
)

// WriteError writes err as a plain text error response. StoreErrors carry
// their own status; anything else is a 500.
func WriteError(logger zerolog.Logger, err error, w http.ResponseWriter) {
	if storeErr, ok := err.(*errors.StoreError); ok {
		for _, cause := range storeErr.Causes {
			logger.Error().Err(cause).Msg("error cause")
		}

		http.Error(w, storeErr.Message, storeErr.StatusCode)

		return
	}

	logger.Error().Err(err).Msg("error cause")
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// writeJSON writes v indented by two spaces with the given status. Listing
// style responses are open to any origin.
func writeJSON(logger zerolog.Logger, w http.ResponseWriter, status int, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		WriteError(logger, err, w)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)

	if _, err := w.Write(b); err != nil {
		logger.Debug().Err(err).Msg("failed to write response")
	}
}

// timestamp formats t like an ISO 8601 UTC string with milliseconds.
func timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
