package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/con169/smart-textbook/internal/ingest"
	"github.com/con169/smart-textbook/internal/llm"
	"github.com/con169/smart-textbook/internal/qa"
	"github.com/con169/smart-textbook/internal/tts"
)

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeDomainError maps component errors onto the HTTP taxonomy: client
// input 400, missing things 404, provider throttling 429 so clients can
// back off, everything else 500.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var (
		sizeErr   *ingest.SizeError
		typeErr   *ingest.TypeError
		structErr *ingest.StructureError
		pageErr   *qa.InvalidPageError
		rateErr   *llm.RateLimitError
	)

	switch {
	case errors.As(err, &sizeErr), errors.As(err, &typeErr), errors.As(err, &structErr):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, qa.ErrNoDocument), errors.As(err, &pageErr):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &rateErr):
		jsonError(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, tts.ErrNoAPIKey):
		jsonError(w, err.Error(), http.StatusInternalServerError)
	default:
		s.log.Error("request failed", "error", err)
		jsonError(w, "error processing request: "+err.Error(), http.StatusInternalServerError)
	}
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
