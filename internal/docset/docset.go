// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docset describes the on-disk layout of the generated documentation
// bundle and writes its bundle-level files.
package docset

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"howett.net/plist"
)

const (
	contentsDir  = "Contents"
	resourcesDir = "Resources"
	documentsDir = "Documents"
	indexFile    = "docSet.dsidx"
	plistFile    = "Info.plist"
)

// defaultTemplate is the page template used when no override is configured.
//
//go:embed template.html
var defaultTemplate string

// Layout locates the files of a docset bundle rooted at Dir.
type Layout struct {
	Dir string
}

// Contents returns <Dir>/Contents.
func (l Layout) Contents() string { return filepath.Join(l.Dir, contentsDir) }

// Documents returns the directory holding page images and HTML stubs.
func (l Layout) Documents() string {
	return filepath.Join(l.Dir, contentsDir, resourcesDir, documentsDir)
}

// IndexPath returns the path of the search index database.
func (l Layout) IndexPath() string {
	return filepath.Join(l.Dir, contentsDir, resourcesDir, indexFile)
}

// PlistPath returns the path of the bundle's Info.plist.
func (l Layout) PlistPath() string { return filepath.Join(l.Dir, contentsDir, plistFile) }

// Prepare creates the bundle directory structure.
func (l Layout) Prepare() error {
	if err := os.MkdirAll(l.Documents(), 0o755); err != nil {
		return fmt.Errorf("creating docset directories: %w", err)
	}
	return nil
}

// Info is the subset of Info.plist keys a documentation viewer reads.
type Info struct {
	Identifier     string `plist:"CFBundleIdentifier"`
	Name           string `plist:"CFBundleName"`
	PlatformFamily string `plist:"DocSetPlatformFamily"`
	IsDashDocset   bool   `plist:"isDashDocset"`
	IndexFilePath  string `plist:"dashIndexFilePath,omitempty"`
}

// NewInfo derives the plist fields from a display name and an optional
// landing page file name.
func NewInfo(name, indexPage string) Info {
	id := strings.ToLower(strings.Join(strings.Fields(name), "-"))
	return Info{
		Identifier:     id,
		Name:           name,
		PlatformFamily: id,
		IsDashDocset:   true,
		IndexFilePath:  indexPage,
	}
}

// WriteInfo writes info as an XML property list to the bundle.
func (l Layout) WriteInfo(info Info) error {
	data, err := plist.MarshalIndent(info, plist.XMLFormat, "\t")
	if err != nil {
		return fmt.Errorf("encoding Info.plist: %w", err)
	}
	if err := os.MkdirAll(l.Contents(), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", l.Contents(), err)
	}
	return os.WriteFile(l.PlistPath(), data, 0o644)
}

// LoadTemplate returns the page template at path, or the built-in template
// when path is empty.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return defaultTemplate, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading template: %w", err)
	}
	return string(data), nil
}
