package narration

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/myenglish-lookup/internal/domain"
)

func ptr(s string) *string { return &s }

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		record domain.WordRecord
		want   string
	}{
		{
			name:   "no meanings",
			record: domain.WordRecord{Word: "zzz", Meanings: []domain.Meaning{}},
			want:   "The word zzz means ",
		},
		{
			name: "numbering restarts per meaning",
			record: domain.WordRecord{
				Word: "run",
				Meanings: []domain.Meaning{
					{PartOfSpeech: "verb", Definitions: []domain.Definition{
						{Text: "Move fast.", Example: ptr("I run daily.")},
						{Text: "Operate."},
					}},
					{PartOfSpeech: "noun", Definitions: []domain.Definition{
						{Text: "An act of running."},
					}},
				},
			},
			want: "The word run means 1. Move fast.For Example: I run daily.2. Operate.1. An act of running.",
		},
		{
			name: "empty example is still read",
			record: domain.WordRecord{
				Word: "a",
				Meanings: []domain.Meaning{{Definitions: []domain.Definition{
					{Text: "First letter.", Example: ptr("")},
				}}},
			},
			want: "The word a means 1. First letter.For Example: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Text(tt.record))
		})
	}
}
