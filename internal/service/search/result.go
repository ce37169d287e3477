package search

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/myenglish-lookup/internal/domain"
)

// Status tags a QueryResult.
type Status int

const (
	// StatusPending carries the local cache view while the remote fetch runs.
	StatusPending Status = iota
	// StatusReady carries the reconciled view. It is terminal.
	StatusReady
	// StatusFailed carries the pre-fetch cache view and a reason. It is terminal.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// QueryResult is one emission of a search stream. Words is never nil.
type QueryResult struct {
	Status Status
	Words  []domain.WordRecord
	// Reason is a human-readable message, set for StatusFailed only.
	Reason string
	// Err is the underlying failure, set for StatusFailed only.
	Err error
}

// Terminal reports whether no emission follows r in its stream.
func (r QueryResult) Terminal() bool {
	return r.Status != StatusPending
}

// Pending builds a non-terminal result over the cached words.
func Pending(words []domain.WordRecord) QueryResult {
	return QueryResult{Status: StatusPending, Words: nonNil(words)}
}

// Ready builds the terminal result over the reconciled words.
func Ready(words []domain.WordRecord) QueryResult {
	return QueryResult{Status: StatusReady, Words: nonNil(words)}
}

// Failed builds the terminal failure result; partial is the cache view
// taken before the fetch.
func Failed(reason string, err error, partial []domain.WordRecord) QueryResult {
	return QueryResult{Status: StatusFailed, Words: nonNil(partial), Reason: reason, Err: err}
}

// Snapshot is a QueryResult delivered by a Feed, tagged with the job that
// produced it. Query is empty for Recent jobs.
type Snapshot struct {
	JobID uuid.UUID
	Query string
	QueryResult
}

func nonNil(words []domain.WordRecord) []domain.WordRecord {
	if words == nil {
		return []domain.WordRecord{}
	}
	return words
}
