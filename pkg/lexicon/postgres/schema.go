package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlExtension = `CREATE EXTENSION IF NOT EXISTS vector;`

// ddlWords is the word-table DDL. The idx column is the vocabulary index
// (frequency rank) and must be dense starting at 0 for [Store.Vector] range
// checks to hold.
const ddlWords = `
CREATE TABLE IF NOT EXISTS words (
    idx       INTEGER      PRIMARY KEY,
    word      TEXT         NOT NULL UNIQUE,
    embedding VECTOR(%d)   NOT NULL
);
`

// Migrate ensures the pgvector extension and the words table exist.
// embeddingDimensions must match the vectors that will be stored; changing it
// after the first migration requires a manual schema change.
func Migrate(ctx context.Context, pool *pgxpool.Pool, embeddingDimensions int) error {
	if embeddingDimensions <= 0 {
		return fmt.Errorf("postgres migrate: embedding dimensions %d must be positive", embeddingDimensions)
	}

	if _, err := pool.Exec(ctx, ddlExtension); err != nil {
		return fmt.Errorf("postgres migrate: create extension: %w", err)
	}
	if _, err := pool.Exec(ctx, fmt.Sprintf(ddlWords, embeddingDimensions)); err != nil {
		return fmt.Errorf("postgres migrate: create words table: %w", err)
	}
	return nil
}
