// Package api exposes the PDF assistant over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/con169/smart-textbook/internal/config"
	"github.com/con169/smart-textbook/internal/document"
	"github.com/con169/smart-textbook/internal/ingest"
	"github.com/con169/smart-textbook/internal/llm"
	"github.com/con169/smart-textbook/internal/qa"
	"github.com/con169/smart-textbook/internal/tts"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router

	store     *document.Store
	history   *document.HistoryLog
	sweeper   *document.Sweeper
	layout    document.Layout
	ingestSvc *ingest.Service
	orch      *qa.Orchestrator
	llmClient *llm.Client
	ttsClient *tts.Client

	log *slog.Logger
	cfg config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(
	store *document.Store,
	history *document.HistoryLog,
	sweeper *document.Sweeper,
	ingestSvc *ingest.Service,
	orch *qa.Orchestrator,
	llmClient *llm.Client,
	ttsClient *tts.Client,
	log *slog.Logger,
	cfg config.Config,
) *Server {
	s := &Server{
		store:     store,
		history:   history,
		sweeper:   sweeper,
		layout:    document.Layout{Dir: cfg.UploadDir},
		ingestSvc: ingestSvc,
		orch:      orch,
		llmClient: llmClient,
		ttsClient: ttsClient,
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/pdf", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Get("/list", s.handleListPDFs)
		r.Post("/cleanup", s.handleCleanup)
		r.Get("/file/{name}", s.handleServeFile)
		r.Get("/{name}", s.handleGetContent)
	})

	r.Route("/api/qa", func(r chi.Router) {
		r.Post("/ask", s.handleAsk)
		r.Post("/chat", s.handleChat)
		r.Get("/history/{filename}", s.handleHistory)
		r.Post("/save_interaction", s.handleSaveInteraction)
		r.Get("/stats", s.handleLLMStats)
	})

	r.Route("/api/tts", func(r chi.Router) {
		r.Get("/voices", s.handleVoices)
		r.Post("/read-pdf", s.handleReadPage)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
