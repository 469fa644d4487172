package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/viant/jokeqa/engine"
	"github.com/viant/jokeqa/vector"
)

const schema = `
CREATE TABLE items (
	id        INTEGER PRIMARY KEY,
	topic     TEXT NOT NULL,
	text      TEXT NOT NULL,
	embedding BLOB
);
CREATE INDEX idx_items_topic ON items(topic);
CREATE TABLE manifest (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// StoreConfig tunes the read-only connection pool.
type StoreConfig struct {
	MaxOpenConns int
	BusyTimeout  time.Duration
}

// Store is the SQLite corpus database. At serving time it is opened
// read-only; every call takes its own pooled connection and releases it
// before returning.
type Store struct {
	db *sqlx.DB
}

// Match is an exact-scan neighbor returned by Nearest.
type Match struct {
	ID       int     `db:"id"`
	Topic    string  `db:"topic"`
	Text     string  `db:"text"`
	Distance float64 `db:"distance"`
}

type itemRow struct {
	ID        int    `db:"id"`
	Topic     string `db:"topic"`
	Text      string `db:"text"`
	Embedding []byte `db:"embedding"`
}

// CreateStore writes a new corpus database at path. vectors may be nil; when
// present it must be parallel to items.
func CreateStore(ctx context.Context, path, runID string, items []Item, vectors [][]float32) error {
	if vectors != nil && len(vectors) != len(items) {
		return fmt.Errorf("corpus: %d items but %d vectors", len(items), len(vectors))
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("corpus: remove %s: %w", path, err)
	}
	dsn, err := engine.FileDSN(path, 0, false)
	if err != nil {
		return err
	}
	raw, err := engine.Open(dsn)
	if err != nil {
		return fmt.Errorf("corpus: open %s: %w", path, err)
	}
	db := sqlx.NewDb(raw, engine.DriverName)
	defer db.Close()
	return withTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("corpus: create schema: %w", err)
		}
		stmt, err := tx.PrepareNamedContext(ctx, `INSERT INTO items(id, topic, text, embedding) VALUES (:id, :topic, :text, :embedding)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, item := range items {
			row := itemRow{ID: item.ID, Topic: item.Topic, Text: item.Text}
			if vectors != nil {
				if row.Embedding, err = vector.EncodeEmbedding(vectors[i]); err != nil {
					return fmt.Errorf("corpus: item %d: %w", item.ID, err)
				}
			}
			if _, err := stmt.ExecContext(ctx, row); err != nil {
				return fmt.Errorf("corpus: insert item %d: %w", item.ID, err)
			}
		}
		for key, value := range map[string]string{"run_id": runID, "count": fmt.Sprint(len(items))} {
			if _, err := tx.ExecContext(ctx, `INSERT INTO manifest(key, value) VALUES (?, ?)`, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// OpenStore opens the corpus database at path read-only.
func OpenStore(path string, cfg StoreConfig) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("corpus: store path required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("corpus: open store: %w", err)
	}
	if err := engine.RegisterVectorFunctions(); err != nil {
		return nil, err
	}
	dsn, err := engine.FileDSN(path, cfg.BusyTimeout, true)
	if err != nil {
		return nil, err
	}
	raw, err := engine.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("corpus: open store: %w", err)
	}
	db := sqlx.NewDb(raw, engine.DriverName)
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	pingTimeout := cfg.BusyTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("corpus: ping store: %w", err)
	}
	return &Store{db: db}, nil
}

// RandomForTopic returns the text of a uniformly random item of topic. It
// reports false when the topic has no items.
func (s *Store) RandomForTopic(ctx context.Context, topic string) (string, bool, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return "", false, fmt.Errorf("corpus: acquire connection: %w", err)
	}
	defer conn.Close()
	tx, err := conn.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return "", false, fmt.Errorf("corpus: begin read: %w", err)
	}
	defer tx.Rollback()
	var text string
	err = tx.GetContext(ctx, &text, `SELECT text FROM items WHERE topic = ? ORDER BY random() LIMIT 1`, topic)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("corpus: sample topic %q: %w", topic, err)
	}
	return text, true, nil
}

// Topics returns the distinct topics with their item counts.
func (s *Store) Topics(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Topic string `db:"topic"`
		Count int    `db:"n"`
	}
	if err := s.db.SelectContext(ctx, &rows, `SELECT topic, COUNT(*) AS n FROM items GROUP BY topic ORDER BY topic`); err != nil {
		return nil, fmt.Errorf("corpus: list topics: %w", err)
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Topic] = r.Count
	}
	return out, nil
}

// Nearest scans every stored embedding and returns the k closest items by
// angular distance, ties by id.
func (s *Store) Nearest(ctx context.Context, query []float32, k int) ([]Match, error) {
	if len(query) == 0 {
		return nil, errors.New("corpus: empty query vector")
	}
	blob, err := vector.EncodeEmbedding(query)
	if err != nil {
		return nil, err
	}
	var out []Match
	err = s.db.SelectContext(ctx, &out, `SELECT id, topic, text, vec_angular(embedding, ?) AS distance
FROM items WHERE embedding IS NOT NULL
ORDER BY distance ASC, id ASC LIMIT ?`, blob, k)
	if err != nil {
		return nil, fmt.Errorf("corpus: nearest: %w", err)
	}
	return out, nil
}

// Embedding returns the stored embedding of item id.
func (s *Store) Embedding(ctx context.Context, id int) ([]float32, error) {
	var blob []byte
	if err := s.db.GetContext(ctx, &blob, `SELECT embedding FROM items WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("corpus: embedding %d: %w", id, err)
	}
	return vector.DecodeEmbedding(blob)
}

// Manifest returns the key/value metadata written at build time.
func (s *Store) Manifest(ctx context.Context) (map[string]string, error) {
	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := s.db.SelectContext(ctx, &rows, `SELECT key, value FROM manifest`); err != nil {
		return nil, fmt.Errorf("corpus: read manifest: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
