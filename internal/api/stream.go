// internal/api/stream.go
package api

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
)

// writeStream sends chunks as plain text, flushing after each one. A failure
// before the first chunk gets the mapped error status; a failure after it
// ends the body with marker followed by the error message.
func writeStream(w http.ResponseWriter, logger *slog.Logger, chunks iter.Seq2[string, error], marker string, header http.Header) {
	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}

	started := false
	start := func() {
		for k, v := range header {
			w.Header()[k] = v
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		started = true
	}

	for chunk, err := range chunks {
		if err != nil {
			if !started {
				respondWithDomainError(w, logger, err)
				return
			}
			logger.Error("Stream failed", "error", err)
			_, message := statusFor(err)
			fmt.Fprintf(w, "\n\n%s%s", marker, message)
			flush()
			return
		}
		if !started {
			start()
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			logger.Info("Client disconnected from stream", "error", err)
			return
		}
		flush()
	}

	if !started {
		start()
	}
}
