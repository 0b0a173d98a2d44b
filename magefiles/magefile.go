//go:build mage

// Package main contains Mage build targets for isa-docset developer tooling.
package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir    = "bin"
	binName   = "isa-docset"
	cmdPkg    = "./cmd/isa-docset"
	manualDir = "manuals"
	docsetDir = "intel-isa.docset"
)

// workDirs are generated by a docset run and removed by Clean.
var workDirs = []string{binDir, "derived", docsetDir}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Docset builds the binary and generates the docset from every PDF in manuals/.
func Docset() error {
	mg.Deps(Build)

	pdfs, err := filepath.Glob(filepath.Join(manualDir, "*.pdf"))
	if err != nil {
		return err
	}
	if len(pdfs) == 0 {
		return fmt.Errorf("no PDFs in %s/", manualDir)
	}

	args := []string{"generate"}
	for _, p := range pdfs {
		args = append(args, "-i", p)
	}
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Clean removes the binary, intermediate renders, and the generated docset.
func Clean() error {
	for _, dir := range workDirs {
		if err := sh.Rm(dir); err != nil {
			return err
		}
		fmt.Println("  removed", dir)
	}
	return nil
}

// Stats prints non-blank Go lines per package and, when a docset has been
// generated, how many page images and HTML pages it holds.
func Stats() error {
	prod := map[string]int{}
	tests := map[string]int{}
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := countLines(path)
		if err != nil {
			return err
		}
		pkg := filepath.Dir(path)
		if strings.HasSuffix(path, "_test.go") {
			tests[pkg] += n
		} else {
			prod[pkg] += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	pkgs := make([]string, 0, len(prod))
	for pkg := range prod {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	var prodTotal, testTotal int
	fmt.Printf("%-24s %6s %6s\n", "PACKAGE", "CODE", "TESTS")
	for _, pkg := range pkgs {
		fmt.Printf("%-24s %6d %6d\n", pkg, prod[pkg], tests[pkg])
		prodTotal += prod[pkg]
		testTotal += tests[pkg]
	}
	fmt.Printf("%-24s %6d %6d\n", "total", prodTotal, testTotal)

	docs := filepath.Join(docsetDir, "Contents", "Resources", "Documents")
	images, _ := filepath.Glob(filepath.Join(docs, "I-*.png"))
	pages, _ := filepath.Glob(filepath.Join(docs, "P-*.html"))
	if len(pages) > 0 {
		fmt.Printf("\n%s: %d pages, %d images\n", docsetDir, len(pages), len(images))
	}
	return nil
}

func countLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	n := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			n++
		}
	}
	return n, nil
}

// skipDir reports whether a walk should not descend into path: hidden
// directories, underscore-prefixed reference trees, and generated output.
func skipDir(path string) bool {
	base := filepath.Base(path)
	if base == "." {
		return false
	}
	if base[0] == '.' || base[0] == '_' {
		return true
	}
	return slices.Contains(workDirs, path)
}
