// Package fs implements the local-file source: it walks a directory tree
// and yields one content unit per supported file.
package fs

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/docbase"
)

// Ensure Importer implements docbase.Source at compile time.
var _ docbase.Source = (*Importer)(nil)

// Importer walks a directory tree and yields markdown, plain-text and HTML
// files as content units. Files use their absolute path as locator, so
// re-importing the same tree dedups against the store.
type Importer struct {
	// Root is the directory to walk.
	Root string

	// Files optionally restricts the import to a subset, given as paths
	// relative to Root. Empty means the whole tree.
	Files []string

	Category docbase.Category

	// Extractor and Converter handle HTML files; markdown and text pass
	// through untouched.
	Extractor docbase.Extractor
	Converter docbase.Converter

	started bool
	queue   []string
	pos     int
}

// supportedExt reports whether the importer handles files with this
// extension.
func supportedExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".md", ".txt", ".html", ".htm":
		return true
	}
	return false
}

// EstimatedTotal returns the number of files queued for import.
// Zero before the first Next call, when the tree has not been walked yet.
func (im *Importer) EstimatedTotal() int {
	return len(im.queue)
}

// Next yields the next file as a content unit. Unreadable or unparseable
// files produce a recoverable per-unit error.
func (im *Importer) Next(ctx context.Context) (*docbase.SourceUnit, bool, error) {
	if !im.started {
		if err := im.start(); err != nil {
			return nil, false, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if im.pos >= len(im.queue) {
		return nil, false, nil
	}

	path := im.queue[im.pos]
	im.pos++

	unit, err := im.readFile(path)
	if err != nil {
		return nil, true, err
	}
	return unit, true, nil
}

// start resolves the file queue: either the explicit subset or a walk of
// the whole tree. WalkDir visits files in lexical order, so repeated
// imports of the same tree process files in the same order.
func (im *Importer) start() error {
	root, err := filepath.Abs(im.Root)
	if err != nil {
		return docbase.Errorf(docbase.EINVALID, "invalid import root %q", im.Root)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return docbase.Errorf(docbase.EINVALID, "import root %q is not a directory", im.Root)
	}
	im.Root = root

	if len(im.Files) > 0 {
		for _, f := range im.Files {
			path := filepath.Join(root, f)
			if !supportedExt(filepath.Ext(path)) {
				return docbase.Errorf(docbase.EINVALID, "unsupported file type %q", f)
			}
			im.queue = append(im.queue, path)
		}
		im.started = true
		return nil
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories like .git.
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if supportedExt(filepath.Ext(path)) {
			im.queue = append(im.queue, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	im.started = true
	return nil
}

// readFile turns one file into a content unit.
func (im *Importer) readFile(path string) (*docbase.SourceUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, docbase.Errorf(docbase.EINVALID, "reading %s: %v", path, err)
	}

	var title, content string
	var imageRefs []string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		extracted, err := im.Extractor.Extract(string(data))
		if err != nil {
			return nil, docbase.Errorf(docbase.EINVALID, "extracting %s: %v", path, err)
		}
		markdown, err := im.Converter.Convert(extracted.ContentHTML)
		if err != nil {
			return nil, docbase.Errorf(docbase.EINVALID, "converting %s: %v", path, err)
		}
		title = extracted.Title
		content = markdown
	default:
		content = string(data)
		title = firstHeading(content)
	}

	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	section, topic := im.sectionTopic(path)

	return &docbase.SourceUnit{
		Locator:   path,
		Title:     title,
		Content:   content,
		Kind:      docbase.SourceLocalFile,
		Section:   section,
		Topic:     topic,
		ImageRefs: imageRefs,
	}, nil
}

// sectionTopic derives structural metadata from the file's position under
// the import root, mirroring how web locators map to section and topic.
func (im *Importer) sectionTopic(path string) (string, string) {
	rel, err := filepath.Rel(im.Root, path)
	if err != nil {
		return "General", "Documentation"
	}
	return docbase.DeriveSectionTopic("/", "/"+filepath.ToSlash(rel))
}

// firstHeading returns the text of the first markdown H1, if any.
func firstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}
