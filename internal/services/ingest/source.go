// File: internal/services/ingest/source.go
package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Document is one knowledge-base file as raw bytes. Filename is relative to
// the knowledge base root and uses forward slashes.
type Document struct {
	Filename string
	Content  []byte
}

// Type is the file extension without the dot, lower-cased.
func (d Document) Type() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(d.Filename)), ".")
}

// LoadDirectory reads every accepted file under dir, recursively, in
// lexical order. A missing directory yields no documents.
func LoadDirectory(dir string, cfg *Config) ([]Document, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var docs []Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !cfg.accepts(path) {
			return nil
		}

		doc, err := LoadFile(dir, path)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading knowledge base %s: %w", dir, err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Filename < docs[j].Filename })
	return docs, nil
}

// LoadFile reads one file and names it relative to root.
func LoadFile(root, path string) (Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}

	name, err := filepath.Rel(root, path)
	if err != nil {
		name = filepath.Base(path)
	}
	return Document{Filename: filepath.ToSlash(name), Content: content}, nil
}
