package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/viant/jokeqa/classify"
	"github.com/viant/jokeqa/corpus"
	"github.com/viant/jokeqa/index"
	"github.com/viant/jokeqa/subword"
	"github.com/viant/jokeqa/tfidf"
)

// Parts is everything a training run produces.
type Parts struct {
	RunID      string
	Variant    string
	Index      index.Index
	IDF        *tfidf.IdfTable
	Classifier *classify.Model
	// Subword is required for VariantSubword and ignored otherwise.
	Subword *subword.Model
	Items   []corpus.Item
	// Vectors are the item embeddings stored in the corpus database, parallel
	// to Items.
	Vectors [][]float32
}

func (p *Parts) validate() error {
	switch {
	case p.RunID == "":
		return errors.New("artifact: run id required")
	case p.Index == nil || p.IDF == nil || p.Classifier == nil:
		return errors.New("artifact: index, idf and classifier are required")
	case p.Variant == VariantSubword && p.Subword == nil:
		return errors.New("artifact: subword variant requires a subword model")
	case p.Variant != VariantSubword && p.Variant != VariantEncoder:
		return fmt.Errorf("artifact: unknown variant %q", p.Variant)
	case len(p.Items) == 0 || p.Index.Len() != len(p.Items):
		return fmt.Errorf("artifact: %d items but index holds %d", len(p.Items), p.Index.Len())
	case p.Index.RunID() != p.RunID:
		return fmt.Errorf("artifact: index run id %q, want %q", p.Index.RunID(), p.RunID)
	}
	return nil
}

// Save writes parts into dir and returns the manifest. The manifest is
// written last so a partially written directory never loads.
func Save(ctx context.Context, dir string, p *Parts) (*Manifest, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := func(name string) string { return filepath.Join(dir, name) }

	data, err := p.Index.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("artifact: encode index: %w", err)
	}
	if err := os.WriteFile(path(FileIndex), data, 0o644); err != nil {
		return nil, err
	}
	if err := writeJSON(path(FileIDF), p.RunID, p.IDF); err != nil {
		return nil, fmt.Errorf("artifact: write idf: %w", err)
	}
	if err := writeJSON(path(FileClassifier), p.RunID, p.Classifier); err != nil {
		return nil, fmt.Errorf("artifact: write classifier: %w", err)
	}
	if p.Variant == VariantSubword {
		data, err := p.Subword.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("artifact: encode subword: %w", err)
		}
		if err := os.WriteFile(path(FileSubword), stampBinary(p.RunID, data), 0o644); err != nil {
			return nil, err
		}
	}
	if err := corpus.CreateMap(path(FileItems), p.RunID, p.Items); err != nil {
		return nil, err
	}
	if err := corpus.CreateStore(ctx, path(FileCorpus), p.RunID, p.Items, p.Vectors); err != nil {
		return nil, err
	}

	m := &Manifest{
		Schema:    SchemaVersion,
		RunID:     p.RunID,
		CreatedAt: time.Now().UTC(),
		Variant:   p.Variant,
		IndexKind: p.Index.Kind(),
		Dimension: p.Index.Dim(),
		Items:     len(p.Items),
		Files:     map[string]File{},
	}
	for _, name := range m.requiredFiles() {
		f, err := checksum(path(name))
		if err != nil {
			return nil, err
		}
		m.Files[name] = f
	}
	data, err = json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path(FileManifest), data, 0o644); err != nil {
		return nil, err
	}
	return m, nil
}

// Publish atomically replaces dir with the fully written staging directory.
// The previous set, if any, is kept as dir+".prev" until the swap succeeds.
func Publish(staging, dir string) error {
	if _, err := ReadManifest(staging); err != nil {
		return fmt.Errorf("artifact: staging %s is incomplete: %w", staging, err)
	}
	prev := dir + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		return err
	}
	hadPrev := false
	if _, err := os.Stat(dir); err == nil {
		if err := os.Rename(dir, prev); err != nil {
			return fmt.Errorf("artifact: move aside %s: %w", dir, err)
		}
		hadPrev = true
	}
	if err := os.Rename(staging, dir); err != nil {
		if hadPrev {
			_ = os.Rename(prev, dir)
		}
		return fmt.Errorf("artifact: publish %s: %w", dir, err)
	}
	if hadPrev {
		return os.RemoveAll(prev)
	}
	return nil
}
