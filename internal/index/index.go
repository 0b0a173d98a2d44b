// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index builds the docset search index: one row per instruction
// mnemonic in a SQLite searchIndex table.
package index

import (
	"github.com/pdiddy/isa-docset/pkg/types"
)

// nameSeparator joins a mnemonic and its description in an index row name.
const nameSeparator = " — "

// Options controls how index rows are named.
type Options struct {
	// DuplicateSuffixOnly appends the description only to entries whose
	// mnemonic occurs more than once. By default every row carries it.
	DuplicateSuffixOnly bool
}

// MarkDuplicates flags every entry whose Name was already seen, and the first
// entry with that name. It returns the number of flagged entries.
func MarkDuplicates(entries []*types.InstructionEntry) int {
	first := make(map[string]*types.InstructionEntry, len(entries))
	for _, e := range entries {
		if orig, ok := first[e.Name]; ok {
			e.Dupe = true
			orig.Dupe = true
			continue
		}
		first[e.Name] = e
	}

	n := 0
	for _, e := range entries {
		if e.Dupe {
			n++
		}
	}
	return n
}

// RowName returns the searchIndex name of an entry.
func RowName(e *types.InstructionEntry, opts Options) string {
	if opts.DuplicateSuffixOnly && !e.Dupe {
		return e.Name
	}
	return e.Name + nameSeparator + e.Description
}

// Rows converts entries to index rows pointing at their page's HTML file.
func Rows(entries []*types.InstructionEntry, opts Options) []types.IndexRow {
	rows := make([]types.IndexRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, types.IndexRow{
			Name: RowName(e, opts),
			Type: types.IndexEntryType,
			Path: e.Page.HTMLFile(),
		})
	}
	return rows
}
