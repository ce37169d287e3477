package domain

// Definition is a single sense text with an optional usage example.
type Definition struct {
	Text    string  `json:"text"`
	Example *string `json:"example,omitempty"`
}

// Meaning groups definitions sharing a part of speech.
type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
}

// WordRecord is an immutable dictionary record. Word is the identity key and
// is compared case-sensitively.
type WordRecord struct {
	Word     string    `json:"word"`
	Phonetic string    `json:"phonetic"`
	Meanings []Meaning `json:"meanings"`
}

// CacheEntry is a stored WordRecord. ID is assigned by the store, grows
// monotonically and is used only for recency ordering.
type CacheEntry struct {
	ID int64
	WordRecord
}

// MergeByWord collapses records sharing a key into one record, preserving
// first-seen key order. Meanings are concatenated in input order; the first
// non-empty phonetic wins. The remote service returns one record per
// etymology, so homographs of one headword arrive as separate records.
func MergeByWord(records []WordRecord) []WordRecord {
	if len(records) == 0 {
		return []WordRecord{}
	}

	index := make(map[string]int, len(records))
	merged := make([]WordRecord, 0, len(records))

	for _, r := range records {
		i, ok := index[r.Word]
		if !ok {
			index[r.Word] = len(merged)
			merged = append(merged, WordRecord{
				Word:     r.Word,
				Phonetic: r.Phonetic,
				Meanings: append([]Meaning(nil), r.Meanings...),
			})
			continue
		}
		if merged[i].Phonetic == "" {
			merged[i].Phonetic = r.Phonetic
		}
		merged[i].Meanings = append(merged[i].Meanings, r.Meanings...)
	}

	for i := range merged {
		if merged[i].Meanings == nil {
			merged[i].Meanings = []Meaning{}
		}
	}

	return merged
}

// Keys returns the identity keys of records in input order, without duplicates.
func Keys(records []WordRecord) []string {
	seen := make(map[string]struct{}, len(records))
	keys := make([]string, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Word]; ok {
			continue
		}
		seen[r.Word] = struct{}{}
		keys = append(keys, r.Word)
	}
	return keys
}
