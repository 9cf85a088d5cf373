// Package iostore implements store.Store on PostgreSQL. Every record is
// a JSONB document, filters are rendered into SQL conditions with bound
// parameters.
package iostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/eufgis/fgrdb/pkg/config"
	"github.com/eufgis/fgrdb/pkg/record"
	"github.com/eufgis/fgrdb/pkg/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// collection describes a table of documents.
type collection struct {
	table string
	label string
	// withDataset is true for tables that keep the owner dataset
	// in a column.
	withDataset bool
}

var (
	datasetsColl = collection{table: "datasets", label: "dataset"}
	dataColl     = collection{table: "data", label: "data", withDataset: true}
)

type pgStore struct {
	pool       *pgxpool.Pool
	textConfig string
}

// New creates a store on top of a connected pool. The pool belongs to
// the caller and is not closed by the store.
func New(pool *pgxpool.Pool, cfg config.CatalogConfig) store.Store {
	tc := cfg.TextConfig
	if tc == "" {
		tc = "simple"
	}
	return &pgStore{pool: pool, textConfig: tc}
}

func (s *pgStore) Close() error {
	return nil
}

func (s *pgStore) ListDatasets(
	ctx context.Context,
	page store.Page,
) ([]record.Dataset, error) {
	return list(ctx, s, datasetsColl, page, decodeDataset)
}

func (s *pgStore) GetDataset(
	ctx context.Context,
	key string,
) (record.Dataset, error) {
	rev, doc, err := s.get(ctx, datasetsColl, key)
	if err != nil {
		return record.Dataset{}, err
	}
	return decodeDataset(rev, doc)
}

func (s *pgStore) CreateDataset(
	ctx context.Context,
	d record.Dataset,
) (record.Dataset, error) {
	doc, err := encodeDataset(d)
	if err != nil {
		return d, err
	}
	rev, err := s.insert(ctx, datasetsColl, d.Key, "", doc)
	if err != nil {
		return d, err
	}
	d.Rev = rev
	return d, nil
}

func (s *pgStore) ReplaceDataset(
	ctx context.Context,
	d record.Dataset,
	ifRev string,
) (record.Dataset, error) {
	doc, err := encodeDataset(d)
	if err != nil {
		return d, err
	}
	rev, err := s.replace(ctx, datasetsColl, d.Key, "", doc, ifRev)
	if err != nil {
		return d, err
	}
	d.Rev = rev
	return d, nil
}

func (s *pgStore) DeleteDataset(ctx context.Context, key string) error {
	return s.delete(ctx, datasetsColl, key)
}

func (s *pgStore) SearchDatasets(
	ctx context.Context,
	q store.Query,
) ([]record.Dataset, error) {
	return search(ctx, s, datasetsColl, q, decodeDataset)
}

func (s *pgStore) SearchDatasetKeys(
	ctx context.Context,
	q store.Query,
) ([]string, error) {
	return s.searchKeys(ctx, datasetsColl, q)
}

func (s *pgStore) ListData(
	ctx context.Context,
	page store.Page,
) ([]record.Data, error) {
	return list(ctx, s, dataColl, page, decodeData)
}

func (s *pgStore) GetData(ctx context.Context, key string) (record.Data, error) {
	rev, doc, err := s.get(ctx, dataColl, key)
	if err != nil {
		return record.Data{}, err
	}
	return decodeData(rev, doc)
}

func (s *pgStore) CreateData(
	ctx context.Context,
	d record.Data,
) (record.Data, error) {
	doc, err := encodeData(d)
	if err != nil {
		return d, err
	}
	rev, err := s.insert(ctx, dataColl, d.Key, d.DatasetID, doc)
	if err != nil {
		return d, err
	}
	d.Rev = rev
	return d, nil
}

func (s *pgStore) ReplaceData(
	ctx context.Context,
	d record.Data,
	ifRev string,
) (record.Data, error) {
	doc, err := encodeData(d)
	if err != nil {
		return d, err
	}
	rev, err := s.replace(ctx, dataColl, d.Key, d.DatasetID, doc, ifRev)
	if err != nil {
		return d, err
	}
	d.Rev = rev
	return d, nil
}

func (s *pgStore) DeleteData(ctx context.Context, key string) error {
	return s.delete(ctx, dataColl, key)
}

func (s *pgStore) SearchData(
	ctx context.Context,
	q store.Query,
) ([]record.Data, error) {
	return search(ctx, s, dataColl, q, decodeData)
}

func (s *pgStore) SearchDataKeys(
	ctx context.Context,
	q store.Query,
) ([]string, error) {
	return s.searchKeys(ctx, dataColl, q)
}

func (s *pgStore) ScanData(
	ctx context.Context,
	datasetKey string,
	fn func(record.Data) error,
) error {
	q := `SELECT rev, doc FROM data WHERE dataset_id = $1 ORDER BY key`
	rows, err := s.pool.Query(ctx, q, datasetKey)
	if err != nil {
		return QueryError(dataColl.table, err)
	}

	var rev string
	var doc []byte
	// errors of decoding and of fn are returned as they are
	var cbErr error
	_, err = pgx.ForEachRow(rows, []any{&rev, &doc}, func() error {
		d, err := decodeData(rev, doc)
		if err != nil {
			cbErr = ScanError(dataColl.table, err)
			return cbErr
		}
		cbErr = fn(d)
		return cbErr
	})
	switch {
	case err == nil:
		return nil
	case cbErr != nil:
		return cbErr
	case ctx.Err() != nil:
		return ctx.Err()
	}
	return QueryError(dataColl.table, err)
}

func (s *pgStore) TermsByIDs(
	ctx context.Context,
	ids []string,
) ([]record.Term, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT doc FROM terms WHERE gid = ANY($1::text[]) ORDER BY gid`
	rows, err := s.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, QueryError("terms", err)
	}
	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (record.Term, error) {
		var doc []byte
		var t record.Term
		if err := row.Scan(&doc); err != nil {
			return t, err
		}
		err := json.Unmarshal(doc, &t)
		return t, err
	})
	if err != nil {
		return nil, ScanError("terms", err)
	}
	return res, nil
}

func (s *pgStore) PutTerms(ctx context.Context, terms []record.Term) error {
	q := `INSERT INTO terms (gid, class, doc) VALUES ($1, $2, $3)
ON CONFLICT (gid) DO UPDATE SET class = EXCLUDED.class, doc = EXCLUDED.doc`

	batch := &pgx.Batch{}
	for _, t := range terms {
		doc, err := json.Marshal(t)
		if err != nil {
			return WriteError("terms", t.GID, err)
		}
		batch.Queue(q, t.GID, t.Class, doc)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for _, t := range terms {
		if _, err := br.Exec(); err != nil {
			return WriteError("terms", t.GID, err)
		}
	}
	return nil
}

func (s *pgStore) get(
	ctx context.Context,
	c collection,
	key string,
) (string, []byte, error) {
	q := fmt.Sprintf("SELECT rev, doc FROM %s WHERE key = $1", c.table)
	var rev string
	var doc []byte
	err := s.pool.QueryRow(ctx, q, key).Scan(&rev, &doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil, fmt.Errorf("%s %s: %w", c.label, key, store.ErrNotFound)
	}
	if err != nil {
		return "", nil, QueryError(c.table, err)
	}
	return rev, doc, nil
}

func (s *pgStore) insert(
	ctx context.Context,
	c collection,
	key, datasetID string,
	doc []byte,
) (string, error) {
	rev := uuid.NewString()
	args := []any{key, rev, doc}
	q := fmt.Sprintf(`INSERT INTO %s (key, rev, doc, updated_at)
VALUES ($1, $2, $3, now()) ON CONFLICT (key) DO NOTHING`, c.table)
	if c.withDataset {
		q = fmt.Sprintf(`INSERT INTO %s (key, rev, doc, dataset_id, updated_at)
VALUES ($1, $2, $3, $4, now()) ON CONFLICT (key) DO NOTHING`, c.table)
		args = append(args, datasetID)
	}

	tag, err := s.pool.Exec(ctx, q, args...)
	if err != nil {
		return "", WriteError(c.table, key, err)
	}
	if tag.RowsAffected() == 0 {
		return "", fmt.Errorf("%s %s: %w", c.label, key, store.ErrConflict)
	}
	return rev, nil
}

// replace updates a document if its revision is ifRev, or
// unconditionally if ifRev is empty.
func (s *pgStore) replace(
	ctx context.Context,
	c collection,
	key, datasetID string,
	doc []byte,
	ifRev string,
) (string, error) {
	rev := uuid.NewString()
	args := []any{key, rev, doc, ifRev}
	set := ""
	if c.withDataset {
		set = ", dataset_id = $5"
		args = append(args, datasetID)
	}
	q := fmt.Sprintf(`UPDATE %s SET rev = $2, doc = $3, updated_at = now()%s
WHERE key = $1 AND ($4::text = '' OR rev = $4::text)`, c.table, set)

	tag, err := s.pool.Exec(ctx, q, args...)
	if err != nil {
		return "", WriteError(c.table, key, err)
	}
	if tag.RowsAffected() > 0 {
		return rev, nil
	}

	// nothing updated: either the document is gone or its revision moved
	if _, _, err = s.get(ctx, c, key); err != nil {
		return "", err
	}
	return "", fmt.Errorf("%s %s rev %s: %w", c.label, key, ifRev, store.ErrConflict)
}

func (s *pgStore) delete(ctx context.Context, c collection, key string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE key = $1", c.table)
	tag, err := s.pool.Exec(ctx, q, key)
	if err != nil {
		return WriteError(c.table, key, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", c.label, key, store.ErrNotFound)
	}
	return nil
}

func (s *pgStore) searchKeys(
	ctx context.Context,
	c collection,
	q store.Query,
) ([]string, error) {
	sql, args := searchSQL(c.table, "key", q, s.textConfig)
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, QueryError(c.table, err)
	}
	res, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, QueryError(c.table, err)
	}
	return res, nil
}

func list[T any](
	ctx context.Context,
	s *pgStore,
	c collection,
	page store.Page,
	decode func(string, []byte) (T, error),
) ([]T, error) {
	return search(ctx, s, c, store.Query{Page: page}, decode)
}

func search[T any](
	ctx context.Context,
	s *pgStore,
	c collection,
	q store.Query,
	decode func(string, []byte) (T, error),
) ([]T, error) {
	sql, args := searchSQL(c.table, "rev, doc", q, s.textConfig)
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, QueryError(c.table, err)
	}
	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		var rev string
		var doc []byte
		if err := row.Scan(&rev, &doc); err != nil {
			var zero T
			return zero, err
		}
		return decode(rev, doc)
	})
	if err != nil {
		return nil, ScanError(c.table, err)
	}
	// callers expect an empty result, not a nil one
	if res == nil {
		res = []T{}
	}
	return res, nil
}
