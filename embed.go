package blockpress

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/eringen/blockpress/content"
)

// SampleContent holds the bundled sample posts served when the blog API
// refuses a request. Each file is one document.
//
//go:embed samples/*.json
var SampleContent embed.FS

// Samples decodes every bundled sample document.
func Samples() ([]content.Document, error) {
	return loadSamples(SampleContent)
}

func loadSamples(fsys fs.FS) ([]content.Document, error) {
	paths, err := fs.Glob(fsys, "samples/*.json")
	if err != nil {
		return nil, err
	}
	docs := make([]content.Document, 0, len(paths))
	for _, p := range paths {
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, err
		}
		var doc content.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("sample %s: %w", p, err)
		}
		if doc.ID == "" {
			return nil, fmt.Errorf("sample %s: missing _id", p)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// SeedSamples writes the bundled samples into store.
func SeedSamples(store *Store) error {
	docs, err := Samples()
	if err != nil {
		return err
	}
	return store.SaveDocuments(docs, OriginSample)
}
