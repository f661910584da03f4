package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/con169/smart-textbook/internal/document"
	"github.com/con169/smart-textbook/internal/ingest"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			size := r.ContentLength
			if size < 0 {
				size = maxErr.Limit
			}
			s.writeDomainError(w, &ingest.SizeError{Size: size, Max: s.cfg.MaxUploadBytes})
			return
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	filename := sanitizeFilename(header.Filename)
	doc, err := s.ingestSvc.Ingest(filename, data)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"filename": document.CanonicalName,
		"toc":      doc.TOC,
		"hash":     doc.Meta.Hash,
		"metadata": doc.Meta,
	})
}

func (s *Server) handleListPDFs(w http.ResponseWriter, r *http.Request) {
	pdfs := []document.Metadata{}
	matches, _ := filepath.Glob(s.layout.MetadataGlob())
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var meta document.Metadata
		if err := json.Unmarshal(data, &meta); err != nil {
			s.log.Warn("skipping unreadable metadata", "path", path, "error", err)
			continue
		}
		pdfs = append(pdfs, meta)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"pdfs": pdfs})
}

func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	name := sanitizeFilename(chi.URLParam(r, "name"))

	content, err := os.ReadFile(s.layout.ContentPathFor(name))
	if err != nil {
		jsonError(w, "PDF not found", http.StatusNotFound)
		return
	}
	metaData, err := os.ReadFile(s.layout.MetadataPathFor(name))
	if err != nil {
		jsonError(w, "PDF not found", http.StatusNotFound)
		return
	}
	var meta document.Metadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		jsonError(w, "corrupt metadata", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"content":  string(content),
		"metadata": meta,
	})
}

func (s *Server) handleServeFile(w http.ResponseWriter, r *http.Request) {
	name := sanitizeFilename(chi.URLParam(r, "name"))
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		jsonError(w, "PDF not found", http.StatusNotFound)
		return
	}

	path := filepath.Join(s.layout.Dir, name)
	if _, err := os.Stat(path); err != nil {
		jsonError(w, "PDF not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	removed := s.sweeper.Sweep(true)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"message": "cleanup completed",
		"removed": removed,
	})
}
