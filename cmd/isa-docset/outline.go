// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/isa-docset/internal/outline"
	"github.com/pdiddy/isa-docset/internal/reconcile"
	"github.com/pdiddy/isa-docset/pkg/types"
)

var outlineCmd = &cobra.Command{
	Use:   "outline <pdf>",
	Short: "Show the instruction entries found in a PDF's bookmarks",
	Long: `Outline scans one PDF's bookmark tree exactly as generate does and prints
the harvested instruction records with their reconciled page spans as YAML.
Use it to check how a manual's bookmarks are interpreted before rendering.`,
	Args: cobra.ExactArgs(1),
	RunE: runOutline,
}

func init() {
	rootCmd.AddCommand(outlineCmd)
}

// outlineReport is the YAML document printed by the outline command.
type outlineReport struct {
	Document  string           `yaml:"document"`
	PageCount int              `yaml:"page_count"`
	Sections  []outlineSection `yaml:"sections"`
}

type outlineSection struct {
	Boundary      int            `yaml:"boundary"`
	BoundaryFound bool           `yaml:"boundary_found"`
	Instructions  []outlineEntry `yaml:"instructions"`
}

type outlineEntry struct {
	types.InstructionRecord `yaml:",inline"`
	End                     int `yaml:"end"`
}

func runOutline(cmd *cobra.Command, args []string) error {
	doc, err := outline.LoadPDF(args[0])
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	scanner := &outline.Scanner{Document: doc.Name, Lookup: doc.Lookup, Log: logger}
	res := scanner.Scan(doc.Outline, doc.PageCount)

	report := outlineReport{Document: doc.Name, PageCount: doc.PageCount}
	for _, sec := range res.Sections {
		spans, boundary := reconcile.Spans(sec.Records, sec.Boundary, logger.WithField("document", doc.Name))
		rs := outlineSection{Boundary: boundary, BoundaryFound: sec.BoundaryFound}
		for _, sp := range spans {
			rs.Instructions = append(rs.Instructions, outlineEntry{InstructionRecord: sp.Record, End: sp.End})
		}
		report.Sections = append(report.Sections, rs)
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(report)
}
