// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs a docset generation: it scans each source PDF's
// outline, reconciles instruction page spans, rasterizes the PDFs, then
// emits page artifacts and the search index.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/isa-docset/internal/docset"
	"github.com/pdiddy/isa-docset/internal/index"
	"github.com/pdiddy/isa-docset/internal/outline"
	"github.com/pdiddy/isa-docset/internal/pages"
	"github.com/pdiddy/isa-docset/internal/reconcile"
	"github.com/pdiddy/isa-docset/pkg/types"
)

var (
	// ErrNoInputs is returned when no source PDF is configured.
	ErrNoInputs = errors.New("no input PDF specified")

	// ErrInputMissing is returned when a configured source PDF does not exist.
	ErrInputMissing = errors.New("input PDF does not exist")
)

// Loader reads a source PDF's outline.
type Loader func(path string) (*outline.Document, error)

// Rasterizer renders a PDF to per-page PNGs named <name>-<page>.png in outDir.
type Rasterizer interface {
	Render(pdfPath, outDir, name string) error
}

// Pipeline holds the collaborators of one generation run.
type Pipeline struct {
	Config types.GenerateConfig
	Log    logrus.FieldLogger

	// Load defaults to outline.LoadPDF.
	Load Loader

	// Raster is required unless the gs stage is skipped.
	Raster Rasterizer

	// Images defaults to the rasterizer's output in Config.DerivedDir.
	Images pages.ImageSource
}

// Summary holds counts from a generation run.
type Summary struct {
	Documents int
	Skipped   []string
	Pages     int
	Entries   int

	Images pages.BatchResult
	Index  index.Summary
}

// Validate checks the configuration before any work starts.
func Validate(cfg types.GenerateConfig) error {
	if len(cfg.Inputs) == 0 {
		return ErrNoInputs
	}
	for _, in := range cfg.Inputs {
		if _, err := os.Stat(in); err != nil {
			return fmt.Errorf("%w: %s", ErrInputMissing, in)
		}
	}
	return nil
}

// Run executes every stage not listed in Config.Skip.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	if err := Validate(p.Config); err != nil {
		return summary, err
	}

	log := p.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	load := p.Load
	if load == nil {
		load = outline.LoadPDF
	}
	if !p.Config.Skip.Has(types.StageRaster) && p.Raster == nil {
		return summary, errors.New("pipeline: no rasterizer configured")
	}

	catalog := reconcile.NewCatalog(log)

	for _, path := range p.Config.Inputs {
		skipped, err := p.document(catalog, load, path, log)
		if err != nil {
			return summary, err
		}
		summary.Documents++
		if skipped != "" {
			summary.Skipped = append(summary.Skipped, skipped)
		}
	}
	summary.Pages = len(catalog.Pages)
	summary.Entries = len(catalog.Entries)

	layout := docset.Layout{Dir: p.Config.Docset.Dir}
	if !p.Config.Skip.Has(types.StagePages) || !p.Config.Skip.Has(types.StageIndex) {
		if err := layout.Prepare(); err != nil {
			return summary, err
		}
		if err := layout.WriteInfo(docset.NewInfo(p.Config.Docset.Name, "")); err != nil {
			return summary, err
		}
	}

	if p.Config.Skip.Has(types.StagePages) {
		log.Info("not generating pages (skipped)")
	} else {
		log.Info("generating pages")
		result, err := p.emitPages(catalog.Pages, layout, log)
		summary.Images = result
		if err != nil {
			return summary, err
		}
	}

	if p.Config.Skip.Has(types.StageIndex) {
		log.Info("not generating index (skipped)")
	} else {
		log.Info("generating index")
		opts := index.Options{DuplicateSuffixOnly: p.Config.Index.DuplicateSuffixOnly}
		s, err := index.Build(ctx, layout.IndexPath(), catalog.Entries, opts, log)
		summary.Index = s
		if err != nil {
			return summary, fmt.Errorf("building index: %w", err)
		}
	}

	return summary, nil
}

// document scans, reconciles, and rasterizes one source PDF. It returns the
// document name when the document was skipped for having no instructions.
func (p *Pipeline) document(catalog *reconcile.Catalog, load Loader, path string, log logrus.FieldLogger) (string, error) {
	log.WithField("path", path).Info("reading")
	doc, err := load(path)
	if err != nil {
		return "", err
	}
	dlog := log.WithField("document", doc.Name)

	dlog.Info("scanning outline")
	scanner := &outline.Scanner{Document: doc.Name, Lookup: doc.Lookup, Log: log}
	res := scanner.Scan(doc.Outline, doc.PageCount)
	for _, sec := range res.Sections {
		dlog.WithFields(logrus.Fields{
			"boundary":       sec.Boundary,
			"boundary_found": sec.BoundaryFound,
			"instructions":   len(sec.Records),
		}).Info("last page of instructions")
	}

	if len(res.Sections) == 0 {
		dlog.Warn("no instructions found, skipping")
		return doc.Name, nil
	}

	dlog.Info("organizing")
	for _, sec := range res.Sections {
		catalog.Add(doc.Name, sec.Records, sec.Boundary)
	}

	if p.Config.Skip.Has(types.StageRaster) {
		dlog.Info("not rendering to PNG (skipped)")
		return "", nil
	}
	dlog.Info("rendering to PNG")
	if err := p.Raster.Render(path, p.Config.DerivedDir, doc.Name); err != nil {
		return "", err
	}
	return "", nil
}

func (p *Pipeline) emitPages(out []*types.OutputPage, layout docset.Layout, log logrus.FieldLogger) (pages.BatchResult, error) {
	tmpl, err := docset.LoadTemplate(p.Config.Docset.Template)
	if err != nil {
		return pages.BatchResult{}, err
	}
	images := p.Images
	if images == nil {
		images = pages.DirSource{Dir: p.Config.DerivedDir}
	}
	return pages.NewEmitter(images, tmpl, layout.Documents(), log).EmitAll(out)
}
