// Package document holds the active uploaded PDF, its derived artifacts on
// disk, and the cleanup of both.
package document

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/con169/smart-textbook/internal/toc"
)

// CanonicalName is the fixed on-disk name of the active document. A new
// upload overwrites it; there is never more than one.
const CanonicalName = "current.pdf"

// PageSeparator joins page texts in the stored full text.
const PageSeparator = "\f"

// Metadata is the persisted record describing an ingested document.
type Metadata struct {
	OriginalFilename string    `json:"original_filename"`
	UploadedAt       time.Time `json:"uploaded_at"`
	Hash             string    `json:"hash"`
	PageCount        int       `json:"page_count"`
	HasTOC           bool      `json:"has_toc"`
}

// Document is the in-memory view of the active PDF.
type Document struct {
	Path  string
	Meta  Metadata
	Pages []string // extracted text, one entry per page
	TOC   []toc.Node
}

// FullText returns the concatenated page texts with page separators.
func (d *Document) FullText() string {
	return strings.Join(d.Pages, PageSeparator)
}

// PageText returns the text of a 1-based page. The caller must have
// validated the range.
func (d *Document) PageText(page int) string {
	return d.Pages[page-1]
}

// RangeText concatenates the text of pages [start, end] inclusive.
func (d *Document) RangeText(start, end int) string {
	return strings.Join(d.Pages[start-1:end], "\n")
}

// Layout maps artifact names inside the upload directory.
type Layout struct {
	Dir string
}

func (l Layout) DocumentPath() string {
	return filepath.Join(l.Dir, CanonicalName)
}

func (l Layout) ContentPath() string {
	return l.ContentPathFor(CanonicalName)
}

func (l Layout) MetadataPath() string {
	return l.MetadataPathFor(CanonicalName)
}

// ContentPathFor returns the extracted-text artifact for a document name.
func (l Layout) ContentPathFor(filename string) string {
	return filepath.Join(l.Dir, filename+"_content.txt")
}

// MetadataPathFor returns the metadata artifact for a document name.
func (l Layout) MetadataPathFor(filename string) string {
	return filepath.Join(l.Dir, filename+"_metadata.json")
}

// MetadataGlob matches every metadata artifact in the directory.
func (l Layout) MetadataGlob() string {
	return filepath.Join(l.Dir, "*_metadata.json")
}

// HistoryPath returns the QA history file for a document filename.
func (l Layout) HistoryPath(filename string) string {
	return filepath.Join(l.Dir, filename+"_qa_history.json")
}

// NewAudioPath returns a fresh temp audio file path for a page. The random
// suffix keeps concurrent reads of the same page from clobbering each other;
// the sweeper matches on the shared prefix.
func (l Layout) NewAudioPath(page int) string {
	return filepath.Join(l.Dir, fmt.Sprintf("temp_audio_page_%d_%s.mp3", page, uuid.NewString()))
}

// AudioGlob matches every temp audio artifact in the directory.
func (l Layout) AudioGlob() string {
	return filepath.Join(l.Dir, "temp_audio_page_*.mp3")
}

// HistoryGlob matches every QA history file in the directory.
func (l Layout) HistoryGlob() string {
	return filepath.Join(l.Dir, "*_qa_history.json")
}
