package corpus

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/viant/jokeqa/engine"
)

// ReadSamples loads training samples from path: a ".jsonl" file of
// {"topic","text"} records, or a SQLite database with a joke(theme, text)
// table.
func ReadSamples(ctx context.Context, path string) ([]Sample, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("corpus: open samples: %w", err)
		}
		defer f.Close()
		return ReadJSONL(f)
	default:
		return ReadSQLite(ctx, path)
	}
}

// ReadJSONL decodes one Sample per non-empty line.
func ReadJSONL(r io.Reader) ([]Sample, error) {
	var out []Sample
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var s Sample
		if err := json.Unmarshal([]byte(text), &s); err != nil {
			return nil, fmt.Errorf("corpus: line %d: %w", line, err)
		}
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("corpus: line %d: %w", line, err)
		}
		out = append(out, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("corpus: read samples: %w", err)
	}
	return out, nil
}

// ReadSQLite reads every row of joke(theme, text) in rowid order.
func ReadSQLite(ctx context.Context, path string) ([]Sample, error) {
	dsn, err := engine.FileDSN(path, 0, true)
	if err != nil {
		return nil, err
	}
	raw, err := engine.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("corpus: open samples: %w", err)
	}
	db := sqlx.NewDb(raw, engine.DriverName)
	defer db.Close()
	var out []Sample
	if err := db.SelectContext(ctx, &out, `SELECT theme AS topic, text FROM joke ORDER BY rowid`); err != nil {
		return nil, fmt.Errorf("corpus: read joke table: %w", err)
	}
	for i := range out {
		if err := out[i].validate(); err != nil {
			return nil, fmt.Errorf("corpus: row %d: %w", i+1, err)
		}
	}
	return out, nil
}

func (s Sample) validate() error {
	if strings.TrimSpace(s.Topic) == "" {
		return fmt.Errorf("empty topic")
	}
	if strings.TrimSpace(s.Text) == "" {
		return fmt.Errorf("empty text")
	}
	return nil
}
