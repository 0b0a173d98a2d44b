// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/isa-docset/internal/pipeline"
	"github.com/pdiddy/isa-docset/internal/raster"
	"github.com/pdiddy/isa-docset/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate [pdfs...]",
	Short: "Convert instruction-set reference PDFs into a docset",
	Long: `Generate scans each input PDF's bookmarks for the instruction reference
section, rasterizes the PDF with Ghostscript, then writes one stitched image
and HTML page per instruction group and the docset search index.

Stages can be skipped with --skip: gs (rasterization; reuses renders already
in --derived-dir), pages (images and HTML), index (search database).`,
	Example: `  isa-docset generate -i 325383-sdm-vol-2abcd.pdf
  isa-docset generate -s gs -s pages -i vol2.pdf -i vol3.pdf`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringP("gs", "g", "", "Ghostscript binary (default $GHOSTSCRIPT or gs on PATH)")
	f.StringArrayP("input", "i", nil, "input PDF (repeatable; positional arguments are also inputs)")
	f.StringSliceP("skip", "s", nil, "stages to skip: gs, pages, index (repeatable)")
	f.String("derived-dir", "derived", "directory for intermediate page renders")
	f.String("docset-name", "Intel ISA", "docset display name")
	f.String("template", "", "HTML page template (default: built-in)")
	f.Bool("duplicate-suffix-only", false, "append descriptions to index names only for duplicated mnemonics")

	mustBind(f, map[string]string{
		"gs":                    "gs",
		"input":                 "input",
		"skip":                  "skip",
		"derived_dir":           "derived-dir",
		"docset_name":           "docset-name",
		"template":              "template",
		"duplicate_suffix_only": "duplicate-suffix-only",
	})
	if err := viper.BindEnv("gs", "ISA_DOCSET_GS", raster.EnvBinary); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(generateCmd)
}

// generateConfig assembles the run configuration from flags, config file,
// and environment. It does not touch the filesystem.
func generateConfig(args []string) (types.GenerateConfig, error) {
	skip, err := types.ParseStageSet(viper.GetStringSlice("skip"))
	if err != nil {
		return types.GenerateConfig{}, err
	}

	inputs := append([]string{}, viper.GetStringSlice("input")...)
	inputs = append(inputs, args...)

	return types.GenerateConfig{
		Rasterizer: viper.GetString("gs"),
		Inputs:     inputs,
		Skip:       skip,
		DerivedDir: viper.GetString("derived_dir"),
		Docset: types.DocsetConfig{
			Dir:      viper.GetString("docset_dir"),
			Name:     viper.GetString("docset_name"),
			Template: viper.GetString("template"),
		},
		Index: types.IndexConfig{
			DuplicateSuffixOnly: viper.GetBool("duplicate_suffix_only"),
		},
	}, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := generateConfig(args)
	if err != nil {
		return err
	}

	r, err := raster.Resolve(cfg.Rasterizer)
	if err != nil {
		return err
	}
	cfg.Rasterizer = r.Bin

	if err := pipeline.Validate(cfg); err != nil {
		return err
	}

	// Configuration is valid; later failures are not usage errors.
	cmd.SilenceUsage = true

	gsOut := logger.WriterLevel(logrus.DebugLevel)
	defer gsOut.Close()
	r.Output = gsOut

	logger.WithFields(logrus.Fields{
		"rasterizer": cfg.Rasterizer,
		"inputs":     len(cfg.Inputs),
		"skip":       cfg.Skip.String(),
	}).Debug("starting")

	p := &pipeline.Pipeline{
		Config: cfg,
		Log:    logger,
		Raster: r,
	}
	summary, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\nDocuments: %d (%d skipped), pages: %d, instructions: %d\n",
		summary.Documents, len(summary.Skipped), summary.Pages, summary.Entries)
	if !cfg.Skip.Has(types.StagePages) {
		fmt.Fprintf(os.Stdout, "Images: %d written, %d blank\n", summary.Images.Written, summary.Images.Blank)
	}
	if !cfg.Skip.Has(types.StageIndex) {
		fmt.Fprintf(os.Stdout, "Index: %d rows (%d duplicate mnemonics)\n", summary.Index.Rows, summary.Index.Duplicates)
	}
	return nil
}
