// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pages emits the per-instruction artifacts of a docset: the
// stitched page image and the HTML stub that shows it.
package pages

import (
	"errors"
	"fmt"
	"html"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/isa-docset/internal/imaging"
	"github.com/pdiddy/isa-docset/internal/raster"
	"github.com/pdiddy/isa-docset/pkg/types"
)

// Template placeholders replaced with HTML-escaped page fields.
const (
	tokenTitle       = "%TITLE%"
	tokenDescription = "%DESCRIPTION%"
	tokenName        = "%NAME%"
)

// ImageSource supplies the rasterized image of one source page.
type ImageSource interface {
	Page(document string, page int) (image.Image, error)
}

// DirSource reads renders written by the rasterizer into Dir.
type DirSource struct {
	Dir string
}

// Page loads <Dir>/<document>-<page>.png.
func (s DirSource) Page(document string, page int) (image.Image, error) {
	return imaging.Load(raster.PagePath(s.Dir, document, page))
}

// BatchResult holds the outcome of emitting all pages.
type BatchResult struct {
	Written int
	Blank   int
}

// Total returns the number of pages processed.
func (r BatchResult) Total() int { return r.Written + r.Blank }

// Emitter writes page images and HTML stubs into OutDir.
type Emitter struct {
	Images   ImageSource
	Template string
	OutDir   string

	Margins imaging.Margins
	TrimPad int
	Colors  int

	Log logrus.FieldLogger
}

// NewEmitter returns an Emitter with the default crop and palette settings.
func NewEmitter(images ImageSource, template, outDir string, log logrus.FieldLogger) *Emitter {
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = l
	}
	return &Emitter{
		Images:   images,
		Template: template,
		OutDir:   outDir,
		Margins:  imaging.DefaultMargins,
		TrimPad:  imaging.DefaultTrimPad,
		Colors:   imaging.DefaultColors,
		Log:      log,
	}
}

// EmitAll writes artifacts for every page in order. Any error aborts the
// batch; blank pages are counted and skipped.
func (e *Emitter) EmitAll(pages []*types.OutputPage) (BatchResult, error) {
	var result BatchResult
	for i, p := range pages {
		wrote, err := e.Emit(i, p)
		if err != nil {
			return result, err
		}
		if wrote {
			result.Written++
		} else {
			result.Blank++
		}
	}
	e.Log.WithFields(logrus.Fields{
		"written": result.Written,
		"blank":   result.Blank,
	}).Info("pages generated")
	return result, nil
}

// Emit writes the image and HTML stub for one page. It reports false when
// every source page was blank, in which case only the HTML stub is written.
func (e *Emitter) Emit(id int, p *types.OutputPage) (bool, error) {
	log := e.Log.WithFields(logrus.Fields{"id": id, "page": p.Name, "span": p.Key.String()})
	log.Debugf("generating image (%s)", p.Title)

	wrote := true
	img, err := e.Compose(p)
	switch {
	case errors.Is(err, imaging.ErrNothingToStitch):
		log.Warn("every source page is blank, no image written")
		wrote = false
	case err != nil:
		return false, err
	default:
		path := filepath.Join(e.OutDir, p.ImageFile())
		if err := imaging.SavePNG(path, img); err != nil {
			return false, fmt.Errorf("writing image for %s: %w", p.Name, err)
		}
	}

	path := filepath.Join(e.OutDir, p.HTMLFile())
	if err := os.WriteFile(path, []byte(RenderHTML(e.Template, p)), 0o644); err != nil {
		return false, fmt.Errorf("writing page for %s: %w", p.Name, err)
	}
	return wrote, nil
}

// Compose crops and trims every source page of p, stitches the non-blank
// ones, and palettizes the result. It returns imaging.ErrNothingToStitch
// when no page has content.
func (e *Emitter) Compose(p *types.OutputPage) (image.Image, error) {
	var parts []image.Image
	for n := p.Key.Start; n <= p.Key.End; n++ {
		src, err := e.Images.Page(p.Key.Document, n)
		if err != nil {
			return nil, fmt.Errorf("loading page %d of %s: %w", n, p.Key.Document, err)
		}
		cropped := imaging.CropMargins(src, e.Margins)
		trimmed, ok := imaging.AutoTrim(cropped, e.TrimPad)
		if !ok {
			continue
		}
		parts = append(parts, trimmed)
	}

	out, mismatch, err := imaging.Stitch(parts)
	if err != nil {
		return nil, err
	}
	if mismatch {
		e.Log.WithField("page", p.Name).Warn("image width differs across source pages")
	}
	return imaging.Palettize(out, e.Colors), nil
}

// RenderHTML substitutes the page fields into tmpl.
func RenderHTML(tmpl string, p *types.OutputPage) string {
	r := strings.NewReplacer(
		tokenTitle, html.EscapeString(p.Title),
		tokenDescription, html.EscapeString(p.Description),
		tokenName, html.EscapeString(p.Name),
	)
	return r.Replace(tmpl)
}
