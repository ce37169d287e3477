package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/heartmarshall/myenglish-lookup/internal/domain"
)

const table = "word_entries"

// WordStore is the word cache on SQLite.
type WordStore struct {
	db *sql.DB
}

// NewWordStore wraps a migrated database returned by Open.
func NewWordStore(db *sql.DB) *WordStore {
	return &WordStore{db: db}
}

// FindByInfix returns records whose word contains fragment, ignoring case,
// in insertion order. An empty fragment returns every record.
func (s *WordStore) FindByInfix(ctx context.Context, fragment string) ([]domain.WordRecord, error) {
	b := sq.Select("id", "word", "phonetic", "meanings").From(table).OrderBy("id ASC")
	if fragment != "" {
		b = b.Where("instr(word_folded, ?) > 0", fold(fragment))
	}

	entries, err := s.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("word cache find by infix %q: %w: %w", fragment, domain.ErrStorage, err)
	}
	return records(entries), nil
}

// AllByRecency returns every record, newest first.
func (s *WordStore) AllByRecency(ctx context.Context) ([]domain.WordRecord, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return records(entries), nil
}

// Entries returns every stored entry with its id, newest first.
func (s *WordStore) Entries(ctx context.Context) ([]domain.CacheEntry, error) {
	entries, err := s.query(ctx, sq.Select("id", "word", "phonetic", "meanings").From(table).OrderBy("id DESC"))
	if err != nil {
		return nil, fmt.Errorf("word cache list by recency: %w: %w", domain.ErrStorage, err)
	}
	return entries, nil
}

// ReplaceAll deletes the stored rows for every key in recs and inserts the
// new ones in one transaction. Records sharing a key are merged first.
func (s *WordStore) ReplaceAll(ctx context.Context, recs []domain.WordRecord) (err error) {
	if len(recs) == 0 {
		return nil
	}
	merged := domain.MergeByWord(recs)

	del, delArgs, err := sq.Delete(table).Where(sq.Eq{"word": domain.Keys(merged)}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	ins := sq.Insert(table).Columns("word", "word_folded", "phonetic", "meanings")
	for _, rec := range merged {
		meanings, err := json.Marshal(rec.Meanings)
		if err != nil {
			return fmt.Errorf("encode meanings for %q: %w", rec.Word, err)
		}
		ins = ins.Values(rec.Word, fold(rec.Word), rec.Phonetic, string(meanings))
	}
	insert, insArgs, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	defer func() {
		if err != nil {
			err = fmt.Errorf("word cache replace %q: %w: %w", merged[0].Word, domain.ErrStorage, err)
		}
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if _, err := tx.ExecContext(ctx, insert, insArgs...); err != nil {
		return errors.Join(err, tx.Rollback())
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *WordStore) query(ctx context.Context, b sq.SelectBuilder) ([]domain.CacheEntry, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.CacheEntry{}
	for rows.Next() {
		var (
			e        domain.CacheEntry
			meanings string
		)
		if err := rows.Scan(&e.ID, &e.Word, &e.Phonetic, &meanings); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(meanings), &e.Meanings); err != nil {
			return nil, fmt.Errorf("decode meanings for %q: %w", e.Word, err)
		}
		if e.Meanings == nil {
			e.Meanings = []domain.Meaning{}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// fold matches domain.ContainsFold, which SQLite's lower() cannot do for
// non-ASCII text.
func fold(s string) string {
	return strings.ToLower(s)
}

func records(entries []domain.CacheEntry) []domain.WordRecord {
	out := make([]domain.WordRecord, len(entries))
	for i, e := range entries {
		out[i] = e.WordRecord
	}
	return out
}
