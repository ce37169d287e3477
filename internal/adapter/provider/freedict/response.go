package freedict

import "github.com/heartmarshall/myenglish-lookup/internal/domain"

// apiEntry is one element of the response array. The API returns one entry
// per etymology, so a headword may appear several times.
type apiEntry struct {
	Word      string        `json:"word"`
	Phonetic  *string       `json:"phonetic"`
	Phonetics []apiPhonetic `json:"phonetics"`
	Meanings  []apiMeaning  `json:"meanings"`
}

type apiPhonetic struct {
	Text  string `json:"text"`
	Audio string `json:"audio"`
}

type apiMeaning struct {
	PartOfSpeech string          `json:"partOfSpeech"`
	Definitions  []apiDefinition `json:"definitions"`
}

type apiDefinition struct {
	Definition string  `json:"definition"`
	Example    *string `json:"example"`
}

// mapAPIResponse converts entries one to one, keeping their order.
func mapAPIResponse(entries []apiEntry) []domain.WordRecord {
	records := make([]domain.WordRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, mapEntry(e))
	}
	return records
}

func mapEntry(e apiEntry) domain.WordRecord {
	rec := domain.WordRecord{
		Word:     e.Word,
		Meanings: make([]domain.Meaning, 0, len(e.Meanings)),
	}
	if e.Phonetic != nil {
		rec.Phonetic = *e.Phonetic
	}

	for _, m := range e.Meanings {
		meaning := domain.Meaning{
			PartOfSpeech: m.PartOfSpeech,
			Definitions:  make([]domain.Definition, 0, len(m.Definitions)),
		}
		for _, d := range m.Definitions {
			def := domain.Definition{Text: d.Definition}
			if d.Example != nil && *d.Example != "" {
				ex := *d.Example
				def.Example = &ex
			}
			meaning.Definitions = append(meaning.Definitions, def)
		}
		rec.Meanings = append(rec.Meanings, meaning)
	}

	return rec
}
