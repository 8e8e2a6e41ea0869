package meta

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"

	"github.com/chunksink/chunksink"
	"github.com/chunksink/chunksink/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const metaTableDDL = `
CREATE TABLE IF NOT EXISTS chunksink_datasets (
	namespace  text NOT NULL,
	name       text NOT NULL,
	definition jsonb NOT NULL,
	PRIMARY KEY (namespace, name)
)`

// PostgresMetaStore persists dataset definitions in a Postgres table,
// one jsonb document per dataset. Column additions are read-modify-write
// within a transaction; across concurrent writers the merge is
// last-writer-wins, matching the MetaStore contract.
type PostgresMetaStore struct {
	pool *pgxpool.Pool
}

// CreatePostgresMetaStore connects to Postgres and ensures the metadata
// table exists
func CreatePostgresMetaStore(ctx context.Context, connString string) (*PostgresMetaStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("Unable to connect to metastore: %w", err)
	}
	if _, err := pool.Exec(ctx, metaTableDDL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("Unable to initialize metastore table: %w", err)
	}
	return &PostgresMetaStore{pool: pool}, nil
}

// Close releases the underlying connection pool
func (p *PostgresMetaStore) Close() {
	p.pool.Close()
}

// GetDataset returns the persisted definition for ref, or a NotFoundError
func (p *PostgresMetaStore) GetDataset(ctx context.Context, ref chunksink.DatasetRef) (*chunksink.Dataset, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx,
		`SELECT definition FROM chunksink_datasets WHERE namespace = $1 AND name = $2`,
		ref.Namespace, ref.Name).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, errors.NotFoundError{Ref: ref.String()}
	}
	if err != nil {
		return nil, err
	}
	var ds chunksink.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("Unable to decode definition for %s: %w", ref.String(), err)
	}
	return &ds, nil
}

// CreateDataset persists a new definition, failing if one already exists
func (p *PostgresMetaStore) CreateDataset(ctx context.Context, dataset *chunksink.Dataset) error {
	raw, err := json.Marshal(dataset)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO chunksink_datasets (namespace, name, definition) VALUES ($1, $2, $3)`,
		dataset.Ref.Namespace, dataset.Ref.Name, raw)
	var pgErr *pgconn.PgError
	if err != nil {
		if goerrors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return errors.AlreadyExistsError{Ref: dataset.Ref.String()}
		}
		return err
	}
	return nil
}

// DeleteDataset removes the definition for ref, if any
func (p *PostgresMetaStore) DeleteDataset(ctx context.Context, ref chunksink.DatasetRef) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM chunksink_datasets WHERE namespace = $1 AND name = $2`,
		ref.Namespace, ref.Name)
	return err
}

// AddColumn appends a column to the definition for ref
func (p *PostgresMetaStore) AddColumn(ctx context.Context, ref chunksink.DatasetRef, col chunksink.ColumnDef) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx,
		`SELECT definition FROM chunksink_datasets WHERE namespace = $1 AND name = $2 FOR UPDATE`,
		ref.Namespace, ref.Name).Scan(&raw)
	if err == pgx.ErrNoRows {
		return errors.NotFoundError{Ref: ref.String()}
	}
	if err != nil {
		return err
	}
	var ds chunksink.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return fmt.Errorf("Unable to decode definition for %s: %w", ref.String(), err)
	}
	ds.Columns[col.Name] = col.Type
	raw, err = json.Marshal(&ds)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE chunksink_datasets SET definition = $3 WHERE namespace = $1 AND name = $2`,
		ref.Namespace, ref.Name, raw); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
