// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// InstructionRecord is one matched entry from a document's instruction
// index outline. Records are produced by the outline scanner and are not
// modified afterwards.
type InstructionRecord struct {
	// Document is the source document name (file name without extension).
	Document string `json:"document" yaml:"document"`

	// Page is the 1-based page on which the entry starts.
	Page int `json:"page" yaml:"page"`

	// Mnemonics is the joined mnemonic group as it appears in the outline
	// title, e.g. "MOVDQA/MOVDQU".
	Mnemonics string `json:"mnemonics" yaml:"mnemonics"`

	// Description is the text after the dash separator.
	Description string `json:"description" yaml:"description"`
}

// PageKey identifies a rendered output page by its source span.
type PageKey struct {
	Document string `json:"document" yaml:"document"`
	Start    int    `json:"start" yaml:"start"`
	End      int    `json:"end" yaml:"end"`
}

func (k PageKey) String() string {
	return fmt.Sprintf("%s[%d-%d]", k.Document, k.Start, k.End)
}

// OutputPage is one generated docset page. Several instruction records may
// fold into the same page when they share a span.
type OutputPage struct {
	Key         PageKey `json:"key" yaml:"key"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`

	// Name is the file-name stem, unique within a run.
	Name string `json:"name" yaml:"name"`
}

// ImageFile returns the bundle file name of the page's stitched render.
func (p *OutputPage) ImageFile() string { return "I-" + p.Name + ".png" }

// HTMLFile returns the bundle file name of the page's HTML stub.
func (p *OutputPage) HTMLFile() string { return "P-" + p.Name + ".html" }

// InstructionEntry is a single mnemonic split out of an InstructionRecord.
type InstructionEntry struct {
	Name        string      `json:"name" yaml:"name"`
	Start       int         `json:"start" yaml:"start"`
	End         int         `json:"end" yaml:"end"`
	Description string      `json:"description" yaml:"description"`
	Page        *OutputPage `json:"-" yaml:"-"`

	// Dupe is set when another entry in the run has the same Name.
	Dupe bool `json:"dupe" yaml:"dupe"`
}

// IndexEntryType is the searchIndex type column value for instructions.
const IndexEntryType = "Instruction"

// IndexRow is one row of the docset search index.
type IndexRow struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Path string `json:"path" yaml:"path"`
}
