// Package postgres provides a PostgreSQL-backed implementation of
// [lexicon.Lexicon] using a pgvector column for the embedding table.
//
// The pgvector extension must be available in the target database; [Migrate]
// installs it automatically via CREATE EXTENSION IF NOT EXISTS.
//
// The word → index mapping is loaded into memory once at [NewStore] (the table
// is ordered by corpus frequency, so the index column is authoritative);
// vectors are fetched on demand by index.
//
// Usage:
//
//	store, err := postgres.NewStore(ctx, dsn, 300)
//	if err != nil { … }
//	defer store.Close()
//
//	idx, ok := store.Lookup("hello")
//	vec, err := store.Vector(idx)
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/transcriptlab/editcheck/pkg/lexicon"
)

// Compile-time assertion that Store satisfies the Lexicon interface.
var _ lexicon.Lexicon = (*Store)(nil)

// Store is the Postgres-backed [lexicon.Lexicon]. All methods are safe for
// concurrent use; the in-memory index is read-only after construction and
// vector reads go through the connection pool.
type Store struct {
	pool  *pgxpool.Pool
	dims  int
	index map[string]int
	count int
}

// NewStore connects to the database at dsn, registers pgvector types on every
// connection, runs [Migrate], and loads the full word → index mapping into
// memory. dims must match the dimension of the embedding column.
func NewStore(ctx context.Context, dsn string, dims int) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("lexicon postgres: parse dsn: %w", err)
	}

	// Register pgvector types on every new connection so the embedding
	// column can be scanned into pgvector.Vector values.
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("lexicon postgres: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("lexicon postgres: ping: %w", err)
	}

	if err := Migrate(ctx, pool, dims); err != nil {
		pool.Close()
		return nil, fmt.Errorf("lexicon postgres: migrate: %w", err)
	}

	s := &Store{pool: pool, dims: dims, index: make(map[string]int)}
	if err := s.loadIndex(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// loadIndex reads the full word → index mapping from the words table.
func (s *Store) loadIndex(ctx context.Context) error {
	rows, err := s.pool.Query(ctx, `SELECT word, idx FROM words`)
	if err != nil {
		return fmt.Errorf("lexicon postgres: load index: %w", err)
	}
	defer rows.Close()

	max := -1
	for rows.Next() {
		var word string
		var idx int
		if err := rows.Scan(&word, &idx); err != nil {
			return fmt.Errorf("lexicon postgres: scan index row: %w", err)
		}
		s.index[word] = idx
		if idx > max {
			max = idx
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("lexicon postgres: load index: %w", err)
	}
	s.count = max + 1
	return nil
}

// Lookup implements [lexicon.Lexicon.Lookup].
func (s *Store) Lookup(word string) (int, bool) {
	i, ok := s.index[word]
	return i, ok
}

// Vector implements [lexicon.Lexicon.Vector]. The pgvector column stores
// float32 components; they are widened to float64 on read.
func (s *Store) Vector(index int) ([]float64, error) {
	if index < 0 || index >= s.count {
		return nil, fmt.Errorf("lexicon postgres: index %d out of range [0, %d)", index, s.count)
	}

	var v pgvector.Vector
	err := s.pool.QueryRow(context.Background(),
		`SELECT embedding FROM words WHERE idx = $1`, index).Scan(&v)
	if err != nil {
		return nil, fmt.Errorf("lexicon postgres: read vector %d: %w", index, err)
	}

	f32 := v.Slice()
	if len(f32) != s.dims {
		return nil, fmt.Errorf("lexicon postgres: vector %d has %d dimensions, table declared %d", index, len(f32), s.dims)
	}
	vec := make([]float64, len(f32))
	for i, x := range f32 {
		vec[i] = float64(x)
	}
	return vec, nil
}

// Dimensions implements [lexicon.Lexicon.Dimensions].
func (s *Store) Dimensions() int { return s.dims }

// Len returns the number of word indices in the table.
func (s *Store) Len() int { return s.count }

// Insert upserts a single word row. Intended for table-loading tools, not the
// classification path; the in-memory index of already-open Stores is not
// refreshed.
func (s *Store) Insert(ctx context.Context, word string, index int, vec []float32) error {
	const q = `
		INSERT INTO words (idx, word, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT (idx) DO UPDATE SET
		    word      = EXCLUDED.word,
		    embedding = EXCLUDED.embedding`

	if _, err := s.pool.Exec(ctx, q, index, word, pgvector.NewVector(vec)); err != nil {
		return fmt.Errorf("lexicon postgres: insert %q: %w", word, err)
	}
	return nil
}

// Close releases all connections held by the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}
