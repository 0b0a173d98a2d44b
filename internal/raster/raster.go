// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package raster resolves and runs the external PDF rasterizer (Ghostscript)
// that renders every source page to a PNG in the derived directory.
package raster

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// DefaultBinary is the rasterizer looked up on PATH when no override is given.
const DefaultBinary = "gs"

// EnvBinary names the environment variable that overrides DefaultBinary.
const EnvBinary = "GHOSTSCRIPT"

var (
	// ErrNotFound is returned when the rasterizer binary cannot be resolved.
	ErrNotFound = errors.New("rasterizer not found")

	// ErrFailed is returned when the rasterizer exits unsuccessfully.
	ErrFailed = errors.New("rasterizer failed")
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(name string, args []string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec executor = &osExecutor{}

// Rasterizer renders PDFs to per-page PNG files.
type Rasterizer struct {
	// Bin is the resolved path of the rasterizer binary.
	Bin string

	// Output receives the rasterizer's stdout and stderr. Nil discards it.
	Output io.Writer

	exec executor
}

// Resolve locates the rasterizer binary. bin may be a name searched on PATH
// or a path; empty falls back to DefaultBinary.
func Resolve(bin string) (*Rasterizer, error) {
	return resolve(defaultExec, bin)
}

func resolve(exec executor, bin string) (*Rasterizer, error) {
	if bin == "" {
		bin = DefaultBinary
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, bin, err)
	}
	return &Rasterizer{Bin: path, exec: exec}, nil
}

// PagePattern returns the output file pattern for a document's pages, in
// the rasterizer's %d page-number syntax.
func PagePattern(dir, name string) string {
	return filepath.Join(dir, name+"-%d.png")
}

// PagePath returns the rendered PNG path of one page of a document.
func PagePath(dir, name string, page int) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%d.png", name, page))
}

// Args returns the rasterizer arguments that render pdfPath as 600 dpi
// 24-bit color PNGs downscaled by 4, one file per page.
func Args(pdfPath, outDir, name string) []string {
	return []string{
		"-sDEVICE=png16m",
		"-r600",
		"-dDownScaleFactor=4",
		"-sOutputFile=" + PagePattern(outDir, name),
		"-dNOPAUSE",
		"-dBATCH",
		pdfPath,
	}
}

// Render rasterizes every page of pdfPath into outDir as <name>-<page>.png.
// The call blocks until the rasterizer exits.
func (r *Rasterizer) Render(pdfPath, outDir, name string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outDir, err)
	}

	out := r.Output
	if out == nil {
		out = io.Discard
	}
	ex := r.exec
	if ex == nil {
		ex = defaultExec
	}

	if err := ex.Run(r.Bin, Args(pdfPath, outDir, name), out, out); err != nil {
		return fmt.Errorf("%w: %s on %s: %v", ErrFailed, r.Bin, pdfPath, err)
	}
	return nil
}
