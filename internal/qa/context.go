// Package qa selects document context for a question and orchestrates the
// LLM calls that answer it.
package qa

import (
	"fmt"
	"strings"

	"github.com/con169/smart-textbook/internal/document"
	"github.com/con169/smart-textbook/internal/toc"
)

// InvalidPageError reports a page outside the document, naming the valid
// range. Handlers surface the message to the client unmodified.
type InvalidPageError struct {
	Page      int
	PageCount int
}

func (e *InvalidPageError) Error() string {
	return fmt.Sprintf("invalid page number %d: valid range is 1 to %d", e.Page, e.PageCount)
}

// Context is the text window chosen for a question, tagged with where it
// came from.
type Context struct {
	Text        string
	Description string // human readable, e.g. "pages 3 to 5"
	StartPage   int
	EndPage     int
}

// SelectContext picks the page range supplying context for a question about
// page. A question mentioning "chapter" widens the window to the TOC
// chapter containing the page; otherwise the window is the page and its
// immediate neighbors.
func SelectContext(doc *document.Document, question string, page int) (Context, error) {
	pageCount := doc.Meta.PageCount
	if page < 1 || page > pageCount {
		return Context{}, &InvalidPageError{Page: page, PageCount: pageCount}
	}

	var start, end int
	if strings.Contains(strings.ToLower(question), "chapter") {
		start, end = toc.ChapterBounds(doc.TOC, page, pageCount)
	} else {
		start = max(1, page-1)
		end = min(pageCount, page+1)
	}

	return Context{
		Text:        doc.RangeText(start, end),
		Description: describeRange(start, end),
		StartPage:   start,
		EndPage:     end,
	}, nil
}

func describeRange(start, end int) string {
	if start == end {
		return fmt.Sprintf("page %d", start)
	}
	return fmt.Sprintf("pages %d to %d", start, end)
}
