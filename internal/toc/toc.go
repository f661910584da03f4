// Package toc extracts a document's table of contents from its PDF outline.
package toc

import (
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// Node is one outline entry. Page is 1-based; 0 means the bookmark had no
// resolvable destination and is kept anyway.
type Node struct {
	Title    string `json:"title"`
	Page     int    `json:"page"`
	Level    int    `json:"level"`
	Children []Node `json:"children,omitempty"`
}

// Extract reads the PDF outline from rs. A missing or malformed outline is
// "no TOC", never an error: the result is simply empty.
func Extract(rs io.ReadSeeker) []Node {
	bms, err := api.Bookmarks(rs, nil)
	if err != nil {
		return nil
	}
	return fromBookmarks(bms, 0)
}

func fromBookmarks(bms []pdfcpu.Bookmark, level int) []Node {
	var nodes []Node
	for _, bm := range bms {
		page := bm.PageFrom
		if page < 0 {
			page = 0
		}
		node := Node{
			Title: bm.Title,
			Page:  page,
			Level: level,
		}
		if len(bm.Kids) > 0 {
			node.Children = fromBookmarks(bm.Kids, level+1)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// Flatten returns the tree in document order, depth first.
func Flatten(nodes []Node) []Node {
	var out []Node
	for _, n := range nodes {
		flat := n
		flat.Children = nil
		out = append(out, flat)
		out = append(out, Flatten(n.Children)...)
	}
	return out
}

// ChapterBounds returns the page range of the chapter containing page:
// from the greatest entry page <= page (1 when no entry precedes it) through
// the page before the smallest entry page > page (pageCount when none
// follows). Entries without a resolvable page are ignored. Assumes entries
// of well-formed PDFs ascend by page; an out-of-order outline narrows the
// window rather than breaking it.
func ChapterBounds(nodes []Node, page, pageCount int) (start, end int) {
	start, end = 1, pageCount
	for _, n := range Flatten(nodes) {
		if n.Page == 0 {
			continue
		}
		if n.Page <= page && n.Page > start {
			start = n.Page
		}
		if n.Page > page && n.Page-1 < end {
			end = n.Page - 1
		}
	}
	if end < start {
		end = start
	}
	return start, end
}
