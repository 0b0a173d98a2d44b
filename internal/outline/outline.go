// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package outline locates the instruction reference section inside a PDF
// bookmark tree and harvests one InstructionRecord per instruction entry.
//
// An outline is a list of items. Each item is either a leaf (a titled
// bookmark pointing at a page) or a nested sub-list holding the children of
// the leaf before it.
package outline

import (
	"io"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/isa-docset/pkg/types"
)

var (
	// markerPattern matches section titles such as "3.2 Instructions (A-L)".
	markerPattern = regexp.MustCompile(`Instructions *\(.*[A-Z].*-.*[A-Z].*\)`)

	// entryPattern matches instruction titles such as "ADD—Add" or
	// "MOVDQA/MOVDQU - Move Aligned Packed Integer Values".
	entryPattern = regexp.MustCompile(`^([0-9A-Zchn/ ]+[0-9A-Zchn/]) *(?:—|-) *(.*)`)
)

// PageRef is a document-scoped reference to a bookmark's target page. Its
// meaning is private to the loader that produced it; only a PageLookup for the
// same document can turn it into a page number.
type PageRef int

// PageLookup resolves a PageRef to a 1-based page number.
type PageLookup func(PageRef) (int, bool)

// MapLookup returns a PageLookup backed by a fixed table.
func MapLookup(m map[PageRef]int) PageLookup {
	return func(ref PageRef) (int, bool) {
		p, ok := m[ref]
		return p, ok
	}
}

// Item is one entry of an outline level.
type Item struct {
	Title string
	Ref   PageRef
	Sub   Outline
	list  bool
}

// Leaf returns a bookmark item.
func Leaf(title string, ref PageRef) Item {
	return Item{Title: title, Ref: ref}
}

// List returns a nested sub-list item.
func List(items ...Item) Item {
	return Item{Sub: items, list: true}
}

// IsList reports whether the item is a nested sub-list.
func (it Item) IsList() bool { return it.list }

// Outline is one level of a bookmark tree.
type Outline []Item

// State is the scanner's position relative to an instruction section.
type State int

const (
	// Seeking looks for an "Instructions (X-Y)" marker leaf.
	Seeking State = iota
	// FoundMarker expects the marker's sub-list as the next sibling.
	FoundMarker
	// AfterInstructions expects the leaf that follows the instruction list.
	AfterInstructions
)

func (s State) String() string {
	switch s {
	case Seeking:
		return "seeking"
	case FoundMarker:
		return "found-marker"
	case AfterInstructions:
		return "after-instructions"
	}
	return "unknown"
}

// Section is one instruction list of a document, such as the M-U list of a
// combined reference volume.
type Section struct {
	Records []types.InstructionRecord

	// Boundary is the last page of the section: the page before the first
	// leaf after its instruction list, or the default passed to Scan when no
	// such leaf resolved.
	Boundary int

	// BoundaryFound reports whether Boundary came from the outline.
	BoundaryFound bool
}

// Result is the outcome of scanning one document outline.
type Result struct {
	// Sections holds every non-empty instruction section in outline order.
	Sections []Section

	// State is the terminal scanner state at the top level.
	State State
}

// Records returns the records of all sections in outline order.
func (r Result) Records() []types.InstructionRecord {
	var out []types.InstructionRecord
	for _, sec := range r.Sections {
		out = append(out, sec.Records...)
	}
	return out
}

// Scanner harvests instruction records from one document's outline.
type Scanner struct {
	Document string
	Lookup   PageLookup
	Log      logrus.FieldLogger
}

// step carries scanner state between recursive calls. Each call receives
// its starting state and returns its own terminal state. When the state is
// AfterInstructions the last section is still waiting for its boundary.
type step struct {
	state    State
	sections []Section
}

// Scan walks o and returns the instruction sections in outline order.
// defaultBoundary applies to sections with no resolvable leaf after their
// instruction list, normally the document page count.
func (s *Scanner) Scan(o Outline, defaultBoundary int) Result {
	st := s.scan(o, Seeking)
	res := Result{State: st.state}
	for _, sec := range st.sections {
		if len(sec.Records) == 0 {
			continue
		}
		if !sec.BoundaryFound {
			sec.Boundary = defaultBoundary
		}
		res.Sections = append(res.Sections, sec)
	}
	return res
}

func (s *Scanner) scan(items Outline, state State) step {
	out := step{state: state}

	for _, it := range items {
		switch out.state {
		case Seeking:
			if it.IsList() {
				child := s.scan(it.Sub, Seeking)
				out.sections = append(out.sections, child.sections...)
				if child.state == AfterInstructions {
					// The instruction list closed its parent level; the
					// boundary is the next leaf at this level.
					out.state = AfterInstructions
				}
				continue
			}
			if markerPattern.MatchString(it.Title) {
				out.state = FoundMarker
			}

		case FoundMarker:
			if it.IsList() {
				out.sections = append(out.sections, Section{Records: s.harvest(it.Sub)})
				out.state = AfterInstructions
				continue
			}
			out.state = Seeking

		case AfterInstructions:
			if it.IsList() {
				continue
			}
			open := &out.sections[len(out.sections)-1]
			if page, ok := s.Lookup(it.Ref); ok {
				open.Boundary, open.BoundaryFound = page-1, true
			} else {
				s.logger().WithField("title", it.Title).Warn("section end leaf has no resolvable page")
			}
			// The closing leaf may open the next section of a flat outline.
			out.state = Seeking
			if markerPattern.MatchString(it.Title) {
				out.state = FoundMarker
			}
		}
	}

	return out
}

// harvest matches the leaves of the instruction list. Nested lists inside it
// are not descended into.
func (s *Scanner) harvest(items Outline) []types.InstructionRecord {
	log := s.logger()

	var records []types.InstructionRecord
	for _, it := range items {
		if it.IsList() {
			continue
		}
		m := entryPattern.FindStringSubmatch(it.Title)
		if m == nil {
			log.WithField("title", it.Title).Debug("unmatched outline entry")
			continue
		}
		page, ok := s.Lookup(it.Ref)
		if !ok {
			log.WithField("title", it.Title).Warn("instruction entry has no resolvable page")
			continue
		}
		rec := types.InstructionRecord{
			Document:    s.Document,
			Page:        page,
			Mnemonics:   m[1],
			Description: strings.TrimSpace(m[2]),
		}
		log.WithFields(logrus.Fields{
			"mnemonics": rec.Mnemonics,
			"page":      rec.Page,
		}).Debug(rec.Description)
		records = append(records, rec)
	}
	return records
}

func (s *Scanner) logger() logrus.FieldLogger {
	if s.Log != nil {
		return s.Log.WithField("document", s.Document)
	}
	l := logrus.New()
	l.Out = io.Discard
	return l
}
