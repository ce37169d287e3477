// Package wordstore implements the word cache on PostgreSQL.
// Records live in word_entries, one row per headword, with meanings kept as JSONB.
package wordstore

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/myenglish-lookup/internal/adapter/postgres"
	"github.com/heartmarshall/myenglish-lookup/internal/domain"
)

const table = "word_entries"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides word cache persistence backed by PostgreSQL.
type Repo struct {
	db  postgres.DB
	txm *postgres.TxManager
}

// New creates a word cache repository. db is usually a *pgxpool.Pool.
func New(db postgres.DB, txm *postgres.TxManager) *Repo {
	return &Repo{db: db, txm: txm}
}

type wordRow struct {
	ID       int64  `db:"id"`
	Word     string `db:"word"`
	Phonetic string `db:"phonetic"`
	Meanings []byte `db:"meanings"`
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// FindByInfix returns records whose word contains fragment, ignoring case,
// in insertion order. An empty fragment returns every record.
func (r *Repo) FindByInfix(ctx context.Context, fragment string) ([]domain.WordRecord, error) {
	b := psql.Select("id", "word", "phonetic", "meanings").From(table).OrderBy("id ASC")
	if fragment != "" {
		b = b.Where("strpos(lower(word), lower(?)) > 0", fragment)
	}

	entries, err := r.selectEntries(ctx, b)
	if err != nil {
		return nil, mapError(err, "find by infix", fragment)
	}
	return records(entries), nil
}

// AllByRecency returns every record, newest first.
func (r *Repo) AllByRecency(ctx context.Context) ([]domain.WordRecord, error) {
	entries, err := r.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return records(entries), nil
}

// Entries returns every stored entry with its id, newest first.
func (r *Repo) Entries(ctx context.Context) ([]domain.CacheEntry, error) {
	b := psql.Select("id", "word", "phonetic", "meanings").From(table).OrderBy("id DESC")

	entries, err := r.selectEntries(ctx, b)
	if err != nil {
		return nil, mapError(err, "list by recency", "")
	}
	return entries, nil
}

func (r *Repo) selectEntries(ctx context.Context, b sq.SelectBuilder) ([]domain.CacheEntry, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []wordRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, err
	}

	entries := make([]domain.CacheEntry, 0, len(rows))
	for _, row := range rows {
		e, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// ReplaceAll deletes the stored rows for every key in records and inserts the
// new ones in a single transaction. Records sharing a key are merged first, so
// the table never holds two rows for one word. Inserted rows receive new ids
// in input order.
func (r *Repo) ReplaceAll(ctx context.Context, recs []domain.WordRecord) error {
	if len(recs) == 0 {
		return nil
	}
	merged := domain.MergeByWord(recs)

	del, delArgs, err := psql.Delete(table).Where(sq.Eq{"word": domain.Keys(merged)}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	ins := psql.Insert(table).Columns("word", "phonetic", "meanings")
	for _, rec := range merged {
		meanings, err := json.Marshal(rec.Meanings)
		if err != nil {
			return fmt.Errorf("encode meanings for %q: %w", rec.Word, err)
		}
		ins = ins.Values(rec.Word, rec.Phonetic, string(meanings))
	}
	insert, insArgs, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	err = r.txm.RunInTx(ctx, func(txCtx context.Context) error {
		q := postgres.QuerierFromCtx(txCtx, r.db)

		if _, err := q.Exec(txCtx, del, delArgs...); err != nil {
			return err
		}
		if _, err := q.Exec(txCtx, insert, insArgs...); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return mapError(err, "replace", merged[0].Word)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

func (row wordRow) toDomain() (domain.CacheEntry, error) {
	meanings := []domain.Meaning{}
	if len(row.Meanings) > 0 {
		if err := json.Unmarshal(row.Meanings, &meanings); err != nil {
			return domain.CacheEntry{}, fmt.Errorf("decode meanings for %q: %w", row.Word, err)
		}
		if meanings == nil {
			meanings = []domain.Meaning{}
		}
	}

	return domain.CacheEntry{
		ID: row.ID,
		WordRecord: domain.WordRecord{
			Word:     row.Word,
			Phonetic: row.Phonetic,
			Meanings: meanings,
		},
	}, nil
}

func records(entries []domain.CacheEntry) []domain.WordRecord {
	out := make([]domain.WordRecord, len(entries))
	for i, e := range entries {
		out[i] = e.WordRecord
	}
	return out
}
