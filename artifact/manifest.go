// Package artifact persists and loads the versioned set of files produced by
// one training run. Every file carries the run id, and Load refuses a set
// whose files disagree with the manifest or with each other.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SchemaVersion is the manifest layout understood by this build.
const SchemaVersion = 1

// Artifact file names inside a set directory.
const (
	FileManifest   = "manifest.json"
	FileIndex      = "index.bin"
	FileIDF        = "idf.json"
	FileClassifier = "classifier.json"
	FileSubword    = "subword.bin"
	FileItems      = "items.bolt"
	FileCorpus     = "corpus.db"
)

// Embedding variants.
const (
	// VariantSubword embeds with idf-weighted trained subword vectors.
	VariantSubword = "subword"
	// VariantEncoder embeds with an external sentence encoder.
	VariantEncoder = "encoder"
)

// File records the checksum of one artifact file.
type File struct {
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// Manifest describes an artifact set.
type Manifest struct {
	Schema    int             `json:"schema"`
	RunID     string          `json:"run_id"`
	CreatedAt time.Time       `json:"created_at"`
	Variant   string          `json:"variant"`
	IndexKind string          `json:"index_kind"`
	Dimension int             `json:"dimension"`
	Items     int             `json:"items"`
	Files     map[string]File `json:"files"`
}

// ReadManifest reads dir/manifest.json.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileManifest))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("artifact: decode manifest: %w", err)
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if m.Schema != SchemaVersion {
		return fmt.Errorf("unsupported schema %d, want %d", m.Schema, SchemaVersion)
	}
	if m.RunID == "" {
		return fmt.Errorf("missing run id")
	}
	switch m.Variant {
	case VariantSubword, VariantEncoder:
	default:
		return fmt.Errorf("unknown variant %q", m.Variant)
	}
	if m.Items <= 0 || m.Dimension <= 0 {
		return fmt.Errorf("invalid items %d or dimension %d", m.Items, m.Dimension)
	}
	for _, name := range m.requiredFiles() {
		if _, ok := m.Files[name]; !ok {
			return fmt.Errorf("file %s not listed", name)
		}
	}
	return nil
}

func (m *Manifest) requiredFiles() []string {
	files := []string{FileIndex, FileIDF, FileClassifier, FileItems, FileCorpus}
	if m.Variant == VariantSubword {
		files = append(files, FileSubword)
	}
	return files
}

// LoadError reports an invalid or unreadable artifact file. It is fatal at
// startup.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("artifact: load %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
