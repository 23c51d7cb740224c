package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vk/superelastix/internal/blueprint"
	"github.com/vk/superelastix/internal/criteria"
	"github.com/vk/superelastix/internal/ctxlog"
	"github.com/vk/superelastix/internal/fsutil"
	"github.com/vk/superelastix/internal/network"
)

// Loader turns configuration files into a blueprint.
type Loader interface {
	// Load reads every path (files or directories), resolves includes and
	// returns the composed blueprint.
	Load(ctx context.Context, paths ...string) (*blueprint.Blueprint, error)
}

// Parser decodes one file of a specific format.
type Parser interface {
	Parse(path string, data []byte) (*Document, error)
}

// Document is the format-agnostic content of one configuration file.
type Document struct {
	Path        string
	Includes    []string
	Components  []Component
	Connections []Connection
}

// Component declares a blueprint node.
type Component struct {
	Name     string
	Criteria criteria.Map
}

// Connection declares a blueprint edge.
type Connection struct {
	Upstream   string
	Downstream string
	Criteria   criteria.Map
}

// FileLoader is the Loader for HCL, YAML and JSON files.
type FileLoader struct {
	parsers map[string]Parser
}

// NewLoader creates a loader that picks the parser by file extension.
func NewLoader() *FileLoader {
	y := yamlParser{}
	return &FileLoader{parsers: map[string]Parser{
		".hcl":  hclParser{},
		".yaml": y,
		".yml":  y,
		".json": y,
	}}
}

func (l *FileLoader) extensions() []string {
	out := make([]string, 0, len(l.parsers))
	for ext := range l.parsers {
		out = append(out, ext)
	}
	return out
}

// Load implements Loader. Components from all files are merged first, so a
// connection may refer to a component declared in any loaded file.
func (l *FileLoader) Load(ctx context.Context, paths ...string) (*blueprint.Blueprint, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Blueprint loader started.", "path_count", len(paths))

	files, err := l.expand(paths)
	if err != nil {
		return nil, err
	}

	var docs []*Document
	visiting := make(map[string]bool)
	done := make(map[string]bool)
	for _, f := range files {
		if docs, err = l.collect(f, docs, visiting, done); err != nil {
			return nil, err
		}
	}
	logger.Debug("Discovered configuration files.", "count", len(docs))

	bp, err := assemble(docs)
	if err != nil {
		return nil, err
	}
	logger.Info("Blueprint loaded.", "files", len(docs), "components", len(bp.ComponentNames()), "connections", len(bp.Connections()))
	return bp, nil
}

// expand replaces directories by the configuration files they contain.
func (l *FileLoader) expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("error accessing configuration %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		found, err := fsutil.FindFilesByExtension(p, l.extensions()...)
		if err != nil {
			return nil, fmt.Errorf("failed to find configuration files in %s: %w", p, err)
		}
		out = append(out, found...)
	}
	return out, nil
}

// collect parses path and its includes depth first, includes before the
// including file. Every file is parsed once.
func (l *FileLoader) collect(path string, docs []*Document, visiting, done map[string]bool) ([]*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if done[abs] {
		return docs, nil
	}
	if visiting[abs] {
		return nil, fmt.Errorf("configuration %s includes itself", path)
	}
	visiting[abs] = true

	doc, err := l.parse(path)
	if err != nil {
		return nil, err
	}
	for _, inc := range doc.Includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		if docs, err = l.collect(inc, docs, visiting, done); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	visiting[abs] = false
	done[abs] = true
	return append(docs, doc), nil
}

func (l *FileLoader) parse(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	p, ok := l.parsers[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported configuration file %s: extension must be one of %s", path, strings.Join(l.sortedExtensions(), ", "))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	doc, err := p.Parse(path, data)
	if err != nil {
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

func (l *FileLoader) sortedExtensions() []string {
	exts := l.extensions()
	slices.Sort(exts)
	return exts
}

// assemble composes all documents into one blueprint. Repeated declarations
// merge; a criterion declared twice with different values is an error.
func assemble(docs []*Document) (*blueprint.Blueprint, error) {
	bp := blueprint.New()
	for _, doc := range docs {
		for _, c := range doc.Components {
			piece := blueprint.New()
			piece.SetComponent(c.Name, c.Criteria)
			if !bp.Compose(piece) {
				return nil, fmt.Errorf("%s: component '%s' conflicts with an earlier declaration", doc.Path, c.Name)
			}
		}
	}
	for _, doc := range docs {
		for _, c := range doc.Connections {
			for _, end := range []string{c.Upstream, c.Downstream} {
				if !bp.ComponentExists(end) {
					return nil, fmt.Errorf("%w: %s: connection '%s' -> '%s' refers to undeclared component '%s'",
						network.ErrUsage, doc.Path, c.Upstream, c.Downstream, end)
				}
			}
			piece := blueprint.New()
			piece.SetComponent(c.Upstream, nil)
			piece.SetComponent(c.Downstream, nil)
			piece.SetConnection(c.Upstream, c.Downstream, c.Criteria)
			if !bp.Compose(piece) {
				return nil, fmt.Errorf("%s: connection '%s' -> '%s' conflicts with an earlier declaration", doc.Path, c.Upstream, c.Downstream)
			}
		}
	}
	return bp, nil
}
