package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/con169/smart-textbook/internal/qa"
)

func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := s.ttsClient.Voices(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"voices": voices})
}

type readPageRequest struct {
	Page    int     `json:"page"`
	VoiceID string  `json:"voice_id"`
	Speed   float64 `json:"speed,omitempty"`
}

func (s *Server) handleReadPage(w http.ResponseWriter, r *http.Request) {
	var req readPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Page == 0 || req.VoiceID == "" {
		jsonError(w, "page and voice_id are required", http.StatusBadRequest)
		return
	}

	doc := s.store.Current()
	if doc == nil {
		s.writeDomainError(w, qa.ErrNoDocument)
		return
	}
	if req.Page < 1 || req.Page > doc.Meta.PageCount {
		s.writeDomainError(w, &qa.InvalidPageError{Page: req.Page, PageCount: doc.Meta.PageCount})
		return
	}

	text := doc.PageText(req.Page)
	if strings.TrimSpace(text) == "" {
		jsonError(w, "no text found on this page", http.StatusBadRequest)
		return
	}

	audio, err := s.ttsClient.Synthesize(r.Context(), text, req.VoiceID, req.Speed)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	// Keep a copy on disk for the sweeper's retention window; failing to
	// save does not fail the response.
	audioPath := s.layout.NewAudioPath(req.Page)
	if err := os.WriteFile(audioPath, audio, 0o644); err != nil {
		s.log.Warn("failed to save temp audio", "path", audioPath, "error", err)
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="page_%d.mp3"`, req.Page))
	w.Write(audio)
}
