package narration

import (
	"strconv"
	"strings"

	"github.com/heartmarshall/myenglish-lookup/internal/domain"
)

// Text renders record as the sentence read aloud. Definitions are numbered
// from 1 within each meaning and concatenated without separators.
func Text(record domain.WordRecord) string {
	var b strings.Builder
	b.WriteString("The word ")
	b.WriteString(record.Word)
	b.WriteString(" means ")

	for _, m := range record.Meanings {
		for i, d := range m.Definitions {
			b.WriteString(strconv.Itoa(i + 1))
			b.WriteString(". ")
			b.WriteString(d.Text)
			if d.Example != nil {
				b.WriteString("For Example: ")
				b.WriteString(*d.Example)
			}
		}
	}
	return b.String()
}
