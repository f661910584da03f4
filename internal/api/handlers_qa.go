package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/con169/smart-textbook/internal/llm"
)

type askRequest struct {
	Question string `json:"question"`
	Page     int    `json:"page,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		jsonError(w, "question is required", http.StatusBadRequest)
		return
	}

	res, err := s.orch.Ask(r.Context(), s.store.Current(), req.Question, req.Page)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := map[string]any{
		"answer":       res.Answer,
		"context_used": res.ContextUsed,
	}
	if res.Context != "" {
		resp["context"] = res.Context
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

type chatRequest struct {
	Messages    []llm.Message `json:"messages"`
	CurrentPage int           `json:"currentPage"`
	Question    string        `json:"question"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		jsonError(w, "question is required", http.StatusBadRequest)
		return
	}

	answer, err := s.orch.Chat(r.Context(), s.store.Current(), req.Messages, req.Question, req.CurrentPage)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"answer": answer})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	filename := sanitizeFilename(chi.URLParam(r, "filename"))

	history, err := s.history.For(filename)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"history": history})
}

type saveInteractionRequest struct {
	Filename string `json:"filename"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (s *Server) handleSaveInteraction(w http.ResponseWriter, r *http.Request) {
	var req saveInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Filename == "" || req.Question == "" || req.Answer == "" {
		jsonError(w, "filename, question and answer are required", http.StatusBadRequest)
		return
	}

	if err := s.history.Append(sanitizeFilename(req.Filename), req.Question, req.Answer); err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "interaction saved"})
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.llmClient.Stats())
}
