package ingest

import "fmt"

// SizeError reports an upload over the configured ceiling.
type SizeError struct {
	Size int64
	Max  int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("file size %d exceeds maximum %d bytes", e.Size, e.Max)
}

// TypeError reports a file that is not a .pdf.
type TypeError struct {
	Ext string
}

func (e *TypeError) Error() string {
	if e.Ext == "" {
		return "invalid file type: missing extension, expected .pdf"
	}
	return fmt.Sprintf("invalid file type %s: expected .pdf", e.Ext)
}

// StructureError reports content that does not parse as a PDF with at
// least one page.
type StructureError struct {
	Err error
}

func (e *StructureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("not a valid PDF: %v", e.Err)
	}
	return "not a valid PDF"
}

func (e *StructureError) Unwrap() error { return e.Err }
