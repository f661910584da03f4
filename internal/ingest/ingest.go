// Package ingest validates uploaded PDFs and turns them into the active
// document with its derived on-disk artifacts.
package ingest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/con169/smart-textbook/internal/document"
	"github.com/con169/smart-textbook/internal/toc"
)

// hashBlockSize bounds memory while digesting the saved file.
const hashBlockSize = 64 * 1024

// stagingSuffix marks files of an upload still being processed. Staged
// files live beside the live ones and are renamed over them only once the
// whole pipeline has succeeded.
const stagingSuffix = ".staging"

// Service runs the upload pipeline: validate, persist, extract, hash,
// record. A failure anywhere leaves the previously loaded document
// untouched.
type Service struct {
	layout   document.Layout
	store    *document.Store
	maxBytes int64
	log      *slog.Logger
}

func NewService(layout document.Layout, store *document.Store, maxBytes int64, log *slog.Logger) *Service {
	return &Service{
		layout:   layout,
		store:    store,
		maxBytes: maxBytes,
		log:      log,
	}
}

// Ingest validates data as a PDF upload and installs it as the current
// document, replacing whatever was loaded before. The returned document is
// already visible to QA and TTS calls.
func (s *Service) Ingest(filename string, data []byte) (*document.Document, error) {
	if int64(len(data)) > s.maxBytes {
		return nil, &SizeError{Size: int64(len(data)), Max: s.maxBytes}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".pdf" {
		return nil, &TypeError{Ext: ext}
	}

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, &StructureError{Err: err}
	}
	if ctx.PageCount < 1 {
		return nil, &StructureError{Err: fmt.Errorf("document has no pages")}
	}

	outline := toc.Extract(bytes.NewReader(data))

	if err := os.MkdirAll(s.layout.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	stage := stagePaths{
		doc:      s.layout.DocumentPath() + stagingSuffix,
		content:  s.layout.ContentPath() + stagingSuffix,
		metadata: s.layout.MetadataPath() + stagingSuffix,
	}

	if err := os.WriteFile(stage.doc, data, 0o644); err != nil {
		s.discardStaging(stage)
		return nil, fmt.Errorf("save document: %w", err)
	}

	pages, err := extractPages(stage.doc, ctx.PageCount)
	if err != nil {
		s.discardStaging(stage)
		return nil, fmt.Errorf("extract text: %w", err)
	}

	hash, err := hashFile(stage.doc)
	if err != nil {
		s.discardStaging(stage)
		return nil, fmt.Errorf("hash document: %w", err)
	}

	doc := &document.Document{
		Path: s.layout.DocumentPath(),
		Meta: document.Metadata{
			OriginalFilename: filename,
			UploadedAt:       time.Now(),
			Hash:             hash,
			PageCount:        ctx.PageCount,
			HasTOC:           len(outline) > 0,
		},
		Pages: pages,
		TOC:   outline,
	}

	if err := s.writeArtifacts(doc, stage); err != nil {
		s.discardStaging(stage)
		return nil, err
	}

	if err := s.promote(stage); err != nil {
		return nil, err
	}

	// A fresh document starts a fresh QA history.
	os.Remove(s.layout.HistoryPath(document.CanonicalName))

	s.store.Replace(doc)
	s.log.Info("document ingested",
		"filename", filename,
		"pages", doc.Meta.PageCount,
		"has_toc", doc.Meta.HasTOC,
		"hash", hash[:12],
	)
	return doc, nil
}

// stagePaths names the temporary files of one in-flight upload.
type stagePaths struct {
	doc      string
	content  string
	metadata string
}

func (s *Service) writeArtifacts(doc *document.Document, stage stagePaths) error {
	if err := os.WriteFile(stage.content, []byte(doc.FullText()), 0o644); err != nil {
		return fmt.Errorf("write content: %w", err)
	}
	meta, err := json.Marshal(doc.Meta)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(stage.metadata, meta, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// promote renames the staged files over the live ones. A rename failing
// mid-swap leaves the live set inconsistent, so the document is discarded
// entirely rather than served half-updated.
func (s *Service) promote(stage stagePaths) error {
	renames := [][2]string{
		{stage.doc, s.layout.DocumentPath()},
		{stage.content, s.layout.ContentPath()},
		{stage.metadata, s.layout.MetadataPath()},
	}
	for _, r := range renames {
		if err := os.Rename(r[0], r[1]); err != nil {
			s.discardStaging(stage)
			s.removeLive()
			s.store.Clear()
			return fmt.Errorf("install document: %w", err)
		}
	}
	return nil
}

// discardStaging removes whatever the failed pipeline run staged.
func (s *Service) discardStaging(stage stagePaths) {
	for _, path := range []string{stage.doc, stage.content, stage.metadata} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Warn("failed to remove staged file", "path", path, "error", err)
		}
	}
}

func (s *Service) removeLive() {
	for _, path := range []string{
		s.layout.DocumentPath(),
		s.layout.ContentPath(),
		s.layout.MetadataPath(),
	} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Warn("failed to remove document file", "path", path, "error", err)
		}
	}
}

// extractPages pulls the plain text of each page. Pages the extractor
// cannot read come back empty rather than shifting the page numbering.
func extractPages(path string, pageCount int) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pages := make([]string, 0, pageCount)
	numPages := reader.NumPage()
	for i := 1; i <= numPages && len(pages) < pageCount; i++ {
		pages = append(pages, pageText(reader, i))
	}
	for len(pages) < pageCount {
		pages = append(pages, "")
	}
	return pages, nil
}

// pageText reads one page, absorbing both errors and the panics the pdf
// library raises on fonts it cannot decode.
func pageText(reader *pdflib.Reader, i int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	page := reader.Page(i)
	if page.V.IsNull() {
		return ""
	}
	plain, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(plain)
}

// hashFile digests the saved file in fixed-size blocks.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, hashBlockSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
