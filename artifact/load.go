package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/viant/jokeqa/classify"
	"github.com/viant/jokeqa/corpus"
	"github.com/viant/jokeqa/index"
	"github.com/viant/jokeqa/internal/logging"
	"github.com/viant/jokeqa/subword"
	"github.com/viant/jokeqa/tfidf"
	"golang.org/x/sync/errgroup"
)

// LoadOptions tunes Load.
type LoadOptions struct {
	Store     corpus.StoreConfig
	IndexBase float32
	// SkipChecksums disables sha256 verification of the listed files.
	SkipChecksums bool
}

// Set is a loaded, cross-validated artifact set. Every part is read-only and
// safe for concurrent use.
type Set struct {
	Dir        string
	Manifest   *Manifest
	Index      index.Index
	IDF        *tfidf.IdfTable
	Classifier *classify.Model
	Subword    *subword.Model
	Items      *corpus.Map
	Corpus     *corpus.Store
}

// Close releases the item map and the store pool.
func (s *Set) Close() error {
	if s == nil {
		return nil
	}
	return errors.Join(s.Items.Close(), s.Corpus.Close())
}

// Load reads and validates the set in dir. Any inconsistency is returned as
// a *LoadError naming the offending file.
func Load(ctx context.Context, dir string, opts LoadOptions) (*Set, error) {
	logger := logging.Component("artifact")
	m, err := ReadManifest(dir)
	if err != nil {
		return nil, &LoadError{File: FileManifest, Err: err}
	}
	if err := m.validate(); err != nil {
		return nil, &LoadError{File: FileManifest, Err: err}
	}
	path := func(name string) string { return filepath.Join(dir, name) }

	if !opts.SkipChecksums {
		g, _ := errgroup.WithContext(ctx)
		for _, name := range m.requiredFiles() {
			g.Go(func() error {
				got, err := checksum(path(name))
				if err != nil {
					return &LoadError{File: name, Err: err}
				}
				if want := m.Files[name]; got.SHA256 != want.SHA256 {
					return &LoadError{File: name, Err: fmt.Errorf("checksum mismatch: %s, want %s", got.SHA256, want.SHA256)}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	set := &Set{Dir: dir, Manifest: m}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		idx, err := NewIndex(m.IndexKind, index.Options{Base: opts.IndexBase})
		if err != nil {
			return &LoadError{File: FileIndex, Err: err}
		}
		data, err := os.ReadFile(path(FileIndex))
		if err == nil {
			err = idx.UnmarshalBinary(data)
		}
		if err != nil {
			return &LoadError{File: FileIndex, Err: err}
		}
		set.Index = idx
		return nil
	})
	g.Go(func() error {
		runID, table, err := readJSON[*tfidf.IdfTable](path(FileIDF))
		if err == nil {
			err = checkRunID(runID, m.RunID)
		}
		if err == nil && table == nil {
			err = errors.New("empty idf table")
		}
		if err != nil {
			return &LoadError{File: FileIDF, Err: err}
		}
		set.IDF = table
		return nil
	})
	g.Go(func() error {
		runID, model, err := readJSON[*classify.Model](path(FileClassifier))
		if err == nil {
			err = checkRunID(runID, m.RunID)
		}
		if err == nil && model == nil {
			err = errors.New("empty classifier")
		}
		if err == nil {
			err = model.Validate()
		}
		if err != nil {
			return &LoadError{File: FileClassifier, Err: err}
		}
		set.Classifier = model
		return nil
	})
	if m.Variant == VariantSubword {
		g.Go(func() error {
			model, err := loadSubword(path(FileSubword), m.RunID)
			if err != nil {
				return &LoadError{File: FileSubword, Err: err}
			}
			set.Subword = model
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if set.Items, err = corpus.OpenMap(path(FileItems)); err != nil {
		return nil, &LoadError{File: FileItems, Err: err}
	}
	if set.Corpus, err = corpus.OpenStore(path(FileCorpus), opts.Store); err != nil {
		set.Items.Close()
		return nil, &LoadError{File: FileCorpus, Err: err}
	}
	if err := set.validate(ctx); err != nil {
		set.Close()
		return nil, err
	}
	logger.Info("artifacts loaded", "dir", dir, "run_id", m.RunID, "variant", m.Variant,
		"index", m.IndexKind, "items", m.Items, "dim", m.Dimension)
	return set, nil
}

func (s *Set) validate(ctx context.Context) error {
	m := s.Manifest
	if err := checkRunID(s.Index.RunID(), m.RunID); err != nil {
		return &LoadError{File: FileIndex, Err: err}
	}
	if s.Index.Len() != m.Items || s.Index.Dim() != m.Dimension {
		return &LoadError{File: FileIndex, Err: fmt.Errorf("index holds %d vectors of dim %d, manifest says %d of dim %d",
			s.Index.Len(), s.Index.Dim(), m.Items, m.Dimension)}
	}
	if s.Subword != nil && s.Subword.Dimension() != m.Dimension {
		return &LoadError{File: FileSubword, Err: fmt.Errorf("dimension %d, want %d", s.Subword.Dimension(), m.Dimension)}
	}
	if err := checkRunID(s.Items.RunID(), m.RunID); err != nil {
		return &LoadError{File: FileItems, Err: err}
	}
	if err := s.Items.Verify(m.Items); err != nil {
		return &LoadError{File: FileItems, Err: err}
	}
	meta, err := s.Corpus.Manifest(ctx)
	if err != nil {
		return &LoadError{File: FileCorpus, Err: err}
	}
	if err := checkRunID(meta["run_id"], m.RunID); err != nil {
		return &LoadError{File: FileCorpus, Err: err}
	}
	if n, err := strconv.Atoi(meta["count"]); err != nil || n != m.Items {
		return &LoadError{File: FileCorpus, Err: fmt.Errorf("count %q, want %d", meta["count"], m.Items)}
	}
	topics, err := s.Corpus.Topics(ctx)
	if err != nil {
		return &LoadError{File: FileCorpus, Err: err}
	}
	var missing []string
	for _, label := range s.Classifier.Topics() {
		if topics[label] == 0 {
			missing = append(missing, label)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &LoadError{File: FileCorpus, Err: fmt.Errorf("classifier topics without items: %v", missing)}
	}
	return nil
}

func loadSubword(path, runID string) (*subword.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	stamp, payload, err := unstampBinary(data)
	if err != nil {
		return nil, err
	}
	if err := checkRunID(stamp, runID); err != nil {
		return nil, err
	}
	model := &subword.Model{}
	if err := model.UnmarshalBinary(payload); err != nil {
		return nil, err
	}
	return model, nil
}

func checkRunID(got, want string) error {
	if got != want {
		return fmt.Errorf("run id %q, want %q", got, want)
	}
	return nil
}
