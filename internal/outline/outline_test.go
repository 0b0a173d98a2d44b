// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import (
	"fmt"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/isa-docset/pkg/types"
)

// identity resolves every positive ref to the page of the same number.
func identity(ref PageRef) (int, bool) {
	if ref <= 0 {
		return 0, false
	}
	return int(ref), true
}

func newScanner(t *testing.T, lookup PageLookup) (*Scanner, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return &Scanner{Document: "vol2", Lookup: lookup, Log: logger}, hook
}

func TestEntryPattern(t *testing.T) {
	tests := []struct {
		title     string
		wantMatch bool
		mnemonics string
		desc      string
	}{
		{"ADD—Add", true, "ADD", "Add"},
		{"ADD — Add", true, "ADD", "Add"},
		{"MOVDQA/MOVDQU - Move Aligned Packed Integer Values", true, "MOVDQA/MOVDQU", "Move Aligned Packed Integer Values"},
		{"CMOVcc—Conditional Move", true, "CMOVcc", "Conditional Move"},
		{"FADD/FADDP/FIADD—Add", true, "FADD/FADDP/FIADD", "Add"},
		{"PUSH A - Push All", true, "PUSH A", "Push All"},
		{"See Also", false, "", ""},
		{"3.1 Interpreting the Instruction Reference Pages", false, "", ""},
		{"add—lowercase mnemonic", false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			m := entryPattern.FindStringSubmatch(tt.title)
			if !tt.wantMatch {
				assert.Nil(t, m)
				return
			}
			require.NotNil(t, m)
			assert.Equal(t, tt.mnemonics, m[1])
			assert.Equal(t, tt.desc, m[2])
		})
	}
}

func TestMarkerPattern(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"Instructions (A-L)", true},
		{"3.2 Instructions (A-L)", true},
		{"4.3 Instructions (M-U)", true},
		{"Instructions (A - Z) Continued", true},
		{"Instructions", false},
		{"Instructions (a-l)", false},
		{"Instruction Format (A-Z)", false},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, markerPattern.MatchString(tt.title))
		})
	}
}

func TestScan_EndToEnd(t *testing.T) {
	lookup := MapLookup(map[PageRef]int{1: 9, 2: 10, 3: 20, 4: 50})
	s, _ := newScanner(t, lookup)

	o := Outline{
		Leaf("Instructions (A-Z)", 1),
		List(
			Leaf("ADD — Add", 2),
			Leaf("SUB — Subtract", 3),
		),
		Leaf("Next Chapter", 4),
	}

	res := s.Scan(o, 999)

	require.Len(t, res.Sections, 1)
	assert.Equal(t, []types.InstructionRecord{
		{Document: "vol2", Page: 10, Mnemonics: "ADD", Description: "Add"},
		{Document: "vol2", Page: 20, Mnemonics: "SUB", Description: "Subtract"},
	}, res.Sections[0].Records)
	assert.Equal(t, 49, res.Sections[0].Boundary)
	assert.True(t, res.Sections[0].BoundaryFound)
	assert.Equal(t, Seeking, res.State)
}

func TestScan_PreservesLeafOrder(t *testing.T) {
	for _, n := range []int{1, 5, 40} {
		t.Run(fmt.Sprintf("%d entries", n), func(t *testing.T) {
			s, _ := newScanner(t, identity)

			var leaves []Item
			for i := 0; i < n; i++ {
				// Pages deliberately descend so order follows the outline, not pages.
				leaves = append(leaves, Leaf(fmt.Sprintf("INST%d—Instruction %d", i, i), PageRef(1000-i)))
			}
			o := Outline{Leaf("Instructions (A-Z)", 1), List(leaves...)}

			res := s.Scan(o, 2000)

			records := res.Records()
			require.Len(t, records, n)
			for i, r := range records {
				assert.Equal(t, fmt.Sprintf("INST%d", i), r.Mnemonics)
				assert.Equal(t, 1000-i, r.Page)
			}
			require.Len(t, res.Sections, 1)
			assert.False(t, res.Sections[0].BoundaryFound)
			assert.Equal(t, 2000, res.Sections[0].Boundary)
			assert.Equal(t, AfterInstructions, res.State)
		})
	}
}

func TestScan_NestedSection(t *testing.T) {
	s, _ := newScanner(t, identity)

	// Chapter 3 contains the marker as its last child; the boundary is the
	// next leaf at chapter level.
	o := Outline{
		Leaf("Chapter 1 About This Manual", 1),
		Leaf("Chapter 3 Instruction Set Reference, A-L", 100),
		List(
			Leaf("3.1 Interpreting the Instruction Reference Pages", 100),
			Leaf("3.2 Instructions (A-L)", 110),
			List(
				Leaf("AAA—ASCII Adjust After Addition", 111),
				Leaf("ADD—Add", 115),
			),
		),
		Leaf("Chapter 4 Instruction Set Reference, M-U", 300),
		List(Leaf("4.2 Instructions (M-U)", 310), List(Leaf("MOV—Move", 311))),
	}

	res := s.Scan(o, 5000)

	require.Len(t, res.Sections, 2)

	first := res.Sections[0]
	require.Len(t, first.Records, 2)
	assert.Equal(t, "AAA", first.Records[0].Mnemonics)
	assert.Equal(t, "ADD", first.Records[1].Mnemonics)
	assert.Equal(t, 299, first.Boundary)
	assert.True(t, first.BoundaryFound)

	second := res.Sections[1]
	require.Len(t, second.Records, 1)
	assert.Equal(t, "MOV", second.Records[0].Mnemonics)
	assert.Equal(t, 5000, second.Boundary)
	assert.False(t, second.BoundaryFound)

	assert.Equal(t, AfterInstructions, res.State)
}

func TestScan_CombinedVolume(t *testing.T) {
	s, _ := newScanner(t, identity)

	chapter := func(title string, page PageRef, marker, entry string) []Item {
		return []Item{
			Leaf(title, page),
			List(Leaf(marker, page+1), List(Leaf(entry, page+2))),
		}
	}
	var o Outline
	o = append(o, chapter("Chapter 3", 100, "Instructions (A-L)", "ADD—Add")...)
	o = append(o, chapter("Chapter 4", 300, "Instructions (M-U)", "MOV—Move")...)
	o = append(o, chapter("Chapter 5", 500, "Instructions (V-Z)", "XOR—Logical Exclusive OR")...)
	o = append(o, Leaf("Appendix A", 700))

	res := s.Scan(o, 900)

	var got []string
	var boundaries []int
	for _, sec := range res.Sections {
		for _, r := range sec.Records {
			got = append(got, r.Mnemonics)
		}
		assert.True(t, sec.BoundaryFound)
		boundaries = append(boundaries, sec.Boundary)
	}
	assert.Equal(t, []string{"ADD", "MOV", "XOR"}, got)
	assert.Equal(t, []int{299, 499, 699}, boundaries)
	assert.Equal(t, Seeking, res.State)
}

func TestScan_SkipsUnmatchedAndNestedEntries(t *testing.T) {
	s, hook := newScanner(t, identity)

	o := Outline{
		Leaf("Instructions (A-Z)", 1),
		List(
			Leaf("See Also", 2),
			Leaf("ADD—Add", 3),
			List(Leaf("SUB—Subtract", 4)),
			Leaf("XOR—Logical Exclusive OR", 5),
		),
		Leaf("Appendix A", 9),
	}

	res := s.Scan(o, 100)

	records := res.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "ADD", records[0].Mnemonics)
	assert.Equal(t, "XOR", records[1].Mnemonics)
	assert.Equal(t, 8, res.Sections[0].Boundary)

	var unmatched []string
	for _, e := range hook.AllEntries() {
		if e.Message == "unmatched outline entry" {
			unmatched = append(unmatched, e.Data["title"].(string))
		}
	}
	assert.Equal(t, []string{"See Also"}, unmatched)
}

func TestScan_MarkerWithoutList(t *testing.T) {
	tests := []struct {
		name  string
		o     Outline
		want  []string
		state State
	}{
		{
			name: "leaf after marker resets the search",
			o: Outline{
				Leaf("Instructions (A-Z)", 1),
				Leaf("ADD—Add", 2),
				List(Leaf("SUB—Subtract", 3)),
			},
			state: Seeking,
		},
		{
			name: "marker after marker is not a marker",
			o: Outline{
				Leaf("Instructions (A-Z)", 1),
				Leaf("Instructions (A-Z)", 2),
				List(Leaf("SUB—Subtract", 3)),
			},
			state: Seeking,
		},
		{
			name: "marker found again after reset",
			o: Outline{
				Leaf("Instructions (A-Z)", 1),
				Leaf("Preface", 2),
				Leaf("Instructions (A-Z)", 3),
				List(Leaf("SUB—Subtract", 4)),
			},
			want:  []string{"SUB"},
			state: AfterInstructions,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newScanner(t, identity)

			res := s.Scan(tt.o, 10)

			var got []string
			for _, r := range res.Records() {
				got = append(got, r.Mnemonics)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.state, res.State)
		})
	}
}

func TestScan_NoMarker(t *testing.T) {
	s, _ := newScanner(t, identity)

	o := Outline{
		Leaf("Preface", 1),
		List(Leaf("ADD—Add", 2), Leaf("SUB—Subtract", 3)),
	}

	res := s.Scan(o, 42)

	assert.Empty(t, res.Sections)
	assert.Empty(t, res.Records())
	assert.Equal(t, Seeking, res.State)
}

func TestScan_EmptySectionDropped(t *testing.T) {
	s, _ := newScanner(t, identity)

	o := Outline{
		Leaf("Instructions (A-F)", 1),
		List(Leaf("See Also", 2)),
		Leaf("Instructions (G-Z)", 10),
		List(Leaf("MOV—Move", 11)),
		Leaf("Appendix", 20),
	}

	res := s.Scan(o, 30)

	require.Len(t, res.Sections, 1)
	assert.Equal(t, "MOV", res.Sections[0].Records[0].Mnemonics)
	assert.Equal(t, 19, res.Sections[0].Boundary)
}

func TestScan_UnresolvablePages(t *testing.T) {
	s, hook := newScanner(t, MapLookup(map[PageRef]int{2: 10}))

	o := Outline{
		Leaf("Instructions (A-Z)", 1),
		List(Leaf("ADD—Add", 2), Leaf("SUB—Subtract", 3)),
		Leaf("Next", 4),
	}

	res := s.Scan(o, 77)

	require.Len(t, res.Sections, 1)
	sec := res.Sections[0]
	require.Len(t, sec.Records, 1)
	assert.Equal(t, 10, sec.Records[0].Page)
	assert.False(t, sec.BoundaryFound)
	assert.Equal(t, 77, sec.Boundary)

	var warnings int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 2, warnings)
}

func TestScan_NilLogger(t *testing.T) {
	s := &Scanner{Document: "vol2", Lookup: identity}
	res := s.Scan(Outline{Leaf("Instructions (A-Z)", 1), List(Leaf("See Also", 2))}, 5)
	assert.Empty(t, res.Sections)
}

func TestFromBookmarks(t *testing.T) {
	bms := []pdfcpu.Bookmark{
		{Title: "Chapter 3", PageFrom: 100, Kids: []pdfcpu.Bookmark{
			{Title: "3.2 Instructions (A-L)", PageFrom: 110, Kids: []pdfcpu.Bookmark{
				{Title: "ADD—Add", PageFrom: 115},
			}},
		}},
		{Title: "Chapter 4", PageFrom: 300},
	}

	o := FromBookmarks(bms)

	require.Len(t, o, 3)
	assert.Equal(t, "Chapter 3", o[0].Title)
	assert.Equal(t, PageRef(100), o[0].Ref)
	assert.True(t, o[1].IsList())
	require.Len(t, o[1].Sub, 2)
	assert.Equal(t, "3.2 Instructions (A-L)", o[1].Sub[0].Title)
	assert.True(t, o[1].Sub[1].IsList())
	assert.Equal(t, "ADD—Add", o[1].Sub[1].Sub[0].Title)
	assert.Equal(t, "Chapter 4", o[2].Title)
	assert.False(t, o[2].IsList())

	doc := &Document{Name: "vol2", Outline: o, PageCount: 200}
	s, _ := newScanner(t, doc.Lookup)
	res := s.Scan(doc.Outline, doc.PageCount)
	require.Len(t, res.Sections, 1)
	require.Len(t, res.Sections[0].Records, 1)
	assert.Equal(t, 115, res.Sections[0].Records[0].Page)
	// Chapter 4 points past the page count, so the default boundary stands.
	assert.False(t, res.Sections[0].BoundaryFound)
	assert.Equal(t, 200, res.Sections[0].Boundary)
}

func TestDocumentName(t *testing.T) {
	assert.Equal(t, "325383-sdm-vol-2abcd", DocumentName("/tmp/manuals/325383-sdm-vol-2abcd.pdf"))
	assert.Equal(t, "24594", DocumentName("24594.pdf"))
}
