package types

import (
	"fmt"
	"sort"
	"strings"
)

// Stage names one skippable pipeline stage.
type Stage string

const (
	// StageRaster renders source PDFs to per-page PNGs with the external rasterizer.
	StageRaster Stage = "gs"
	// StagePages writes the stitched page images and HTML stubs.
	StagePages Stage = "pages"
	// StageIndex builds the docset search index.
	StageIndex Stage = "index"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageRaster, StagePages, StageIndex}

// ParseStage validates a stage name from the command line or config file.
func ParseStage(s string) (Stage, error) {
	st := Stage(strings.TrimSpace(s))
	for _, known := range Stages {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q: use gs, pages, or index", s)
}

// StageSet is a set of stages, used for skip flags.
type StageSet map[Stage]bool

// ParseStageSet builds a StageSet from stage names.
func ParseStageSet(names []string) (StageSet, error) {
	set := make(StageSet, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		st, err := ParseStage(n)
		if err != nil {
			return nil, err
		}
		set[st] = true
	}
	return set, nil
}

// Has reports whether st is in the set.
func (s StageSet) Has(st Stage) bool { return s[st] }

func (s StageSet) String() string {
	names := make([]string, 0, len(s))
	for st := range s {
		names = append(names, string(st))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// DocsetConfig describes where the output bundle is written.
type DocsetConfig struct {
	// Dir is the bundle directory, e.g. "intel-isa.docset".
	Dir string `json:"dir" yaml:"dir"`

	// Name is the bundle display name written to Info.plist.
	Name string `json:"name" yaml:"name"`

	// Template is an optional HTML template path; empty uses the built-in one.
	Template string `json:"template,omitempty" yaml:"template,omitempty"`
}

// IndexConfig holds settings for the index stage.
type IndexConfig struct {
	// DuplicateSuffixOnly appends " — <description>" to index names only for
	// entries whose mnemonic is duplicated. The default appends it to every entry.
	DuplicateSuffixOnly bool `json:"duplicate_suffix_only" yaml:"duplicate_suffix_only"`
}

// GenerateConfig holds settings for one docset generation run.
type GenerateConfig struct {
	// Rasterizer is the resolved path of the Ghostscript binary.
	Rasterizer string `json:"rasterizer" yaml:"rasterizer"`

	// Inputs are the source PDF paths, processed in order.
	Inputs []string `json:"inputs" yaml:"inputs"`

	// Skip selects stages to bypass.
	Skip StageSet `json:"skip" yaml:"skip"`

	// DerivedDir holds intermediate per-page renders (<doc>-<page>.png).
	DerivedDir string `json:"derived_dir" yaml:"derived_dir"`

	Docset DocsetConfig `json:"docset" yaml:"docset"`
	Index  IndexConfig  `json:"index" yaml:"index"`
}
