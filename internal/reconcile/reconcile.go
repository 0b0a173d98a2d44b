// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reconcile turns scanned instruction records into page spans and
// builds the run-wide catalog of output pages and instruction entries.
package reconcile

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/isa-docset/pkg/types"
)

// mnemonicSeparator splits co-documented mnemonics in a record title.
const mnemonicSeparator = "/"

// Span is a record with its reconciled inclusive page range.
type Span struct {
	Record types.InstructionRecord
	Start  int
	End    int
}

// Spans sorts records by start page and assigns each an end page: the page
// before the next record's start, or boundary for the last record. When the
// last record starts after boundary, the boundary is widened to that start.
// A span whose end falls before its start (records sharing a start page) is
// clamped to its start page. The returned int is the boundary actually used.
func Spans(records []types.InstructionRecord, boundary int, log logrus.FieldLogger) ([]Span, int) {
	if len(records) == 0 {
		return nil, boundary
	}
	if log == nil {
		log = discard()
	}

	sorted := make([]types.InstructionRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Page < sorted[j].Page })

	last := sorted[len(sorted)-1].Page
	if last > boundary {
		log.WithFields(logrus.Fields{
			"last_start": last,
			"boundary":   boundary,
		}).Warn("start page of the last instruction is after the estimated end of the instruction section")
		boundary = last
	}

	spans := make([]Span, len(sorted))
	for i, rec := range sorted {
		end := boundary
		if i < len(sorted)-1 {
			end = sorted[i+1].Page - 1
		}
		if end < rec.Page {
			log.WithFields(logrus.Fields{
				"mnemonics": rec.Mnemonics,
				"start":     rec.Page,
				"end":       end,
			}).Warn("inverted page span clamped to a single page")
			end = rec.Page
		}
		spans[i] = Span{Record: rec, Start: rec.Page, End: end}
	}
	return spans, boundary
}

// SplitMnemonics splits a joined mnemonic group such as "MOVDQA/MOVDQU".
func SplitMnemonics(joined string) []string {
	parts := strings.Split(joined, mnemonicSeparator)
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

// Catalog accumulates output pages and instruction entries across all
// documents of a run. Page names are unique within a catalog.
type Catalog struct {
	Pages   []*types.OutputPage
	Entries []*types.InstructionEntry

	byKey  map[types.PageKey]*types.OutputPage
	issued map[string]bool
	next   map[string]int
	log    logrus.FieldLogger
}

// NewCatalog returns an empty catalog. A nil logger discards output.
func NewCatalog(log logrus.FieldLogger) *Catalog {
	if log == nil {
		log = discard()
	}
	return &Catalog{
		byKey:  make(map[types.PageKey]*types.OutputPage),
		issued: make(map[string]bool),
		next:   make(map[string]int),
		log:    log,
	}
}

// Add reconciles one document's records against its section boundary and
// folds them into the catalog. It returns the boundary actually used.
func (c *Catalog) Add(doc string, records []types.InstructionRecord, boundary int) int {
	log := c.log.WithField("document", doc)

	spans, used := Spans(records, boundary, log)
	for _, sp := range spans {
		names := SplitMnemonics(sp.Record.Mnemonics)
		page := c.page(types.PageKey{Document: doc, Start: sp.Start, End: sp.End}, sp.Record, names)

		for _, name := range names {
			c.Entries = append(c.Entries, &types.InstructionEntry{
				Name:        name,
				Start:       sp.Start,
				End:         sp.End,
				Description: sp.Record.Description,
				Page:        page,
			})
			log.WithFields(logrus.Fields{
				"name": name,
				"page": page.Name,
				"span": page.Key.String(),
			}).Debug("instruction entry")
		}
	}
	return used
}

// page returns the page for key, creating it the first time the key is seen.
func (c *Catalog) page(key types.PageKey, rec types.InstructionRecord, names []string) *types.OutputPage {
	if p, ok := c.byKey[key]; ok {
		return p
	}

	p := &types.OutputPage{
		Key:         key,
		Title:       rec.Mnemonics,
		Description: rec.Description,
		Name:        c.uniqueName(strings.Join(names, "_")),
	}
	c.byKey[key] = p
	c.Pages = append(c.Pages, p)
	return p
}

// uniqueName returns name, or name with the lowest free "_N" suffix (N >= 2)
// when name has already been issued. A suffixed name can itself collide with
// a base name such as "VPERM_2", so every candidate is checked.
func (c *Catalog) uniqueName(name string) string {
	candidate := name
	n := max(c.next[name], 2)
	for c.issued[candidate] {
		candidate = fmt.Sprintf("%s_%d", name, n)
		n++
	}
	c.next[name] = n
	c.issued[candidate] = true
	return candidate
}

// Lookup returns the page for a span key, if any.
func (c *Catalog) Lookup(key types.PageKey) (*types.OutputPage, bool) {
	p, ok := c.byKey[key]
	return p, ok
}

func discard() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}
