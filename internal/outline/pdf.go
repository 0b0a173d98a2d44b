// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Document is a loaded source PDF reduced to what the scanner needs.
type Document struct {
	// Name is the file name without extension; it prefixes derived page
	// renders and identifies the document in records.
	Name      string
	Path      string
	Outline   Outline
	PageCount int
}

// Lookup resolves a bookmark reference produced by LoadPDF. References are
// the bookmark's destination page; anything outside the page range is
// unresolvable.
func (d *Document) Lookup(ref PageRef) (int, bool) {
	p := int(ref)
	if p < 1 || p > d.PageCount {
		return 0, false
	}
	return p, true
}

// DocumentName derives the document name from a PDF path.
func DocumentName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadPDF reads the bookmark tree and page count of the PDF at path.
func LoadPDF(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc := &Document{
		Name:      DocumentName(path),
		Path:      path,
		PageCount: ctx.PageCount,
	}

	// A PDF without bookmarks has an empty outline; the scanner then finds
	// no instructions and the document is skipped.
	if _, ok := ctx.RootDict.Find("Outlines"); !ok {
		return doc, nil
	}

	bookmarks, err := pdfcpu.Bookmarks(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading outline of %s: %w", path, err)
	}
	doc.Outline = FromBookmarks(bookmarks)
	return doc, nil
}

// FromBookmarks flattens a pdfcpu bookmark tree into outline form: every
// bookmark becomes a leaf, and its kids follow it as a sub-list sibling.
func FromBookmarks(bookmarks []pdfcpu.Bookmark) Outline {
	out := make(Outline, 0, len(bookmarks))
	for _, bm := range bookmarks {
		out = append(out, Leaf(bm.Title, PageRef(bm.PageFrom)))
		if len(bm.Kids) > 0 {
			out = append(out, List(FromBookmarks(bm.Kids)...))
		}
	}
	return out
}
