// Package moderation masks censored words in message bodies before
// they reach the durability point, so the persisted and delivered
// content are identical.
package moderation

import (
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	matcher      *goahocorasick.Machine
	censoredChar rune
}

// NewModerator builds the Aho-Corasick automaton over the lowercased
// word list.
func NewModerator(censoredWords []string, censoredChar rune) (Moderator, error) {
	patterns := make([][]rune, len(censoredWords))
	for i, word := range censoredWords {
		patterns[i] = []rune(strings.ToLower(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{matcher: m, censoredChar: censoredChar}, nil
}

// Censor replaces every occurrence of a censored word with the mask
// character, case-insensitively, and returns the list of words found.
// Input without matches is returned unchanged.
func (m *Moderator) Censor(original string) (string, []string) {
	origRunes := []rune(original)
	lowered := make([]rune, len(origRunes))
	for i, r := range origRunes {
		lowered[i] = unicode.ToLower(r)
	}

	spans := m.matcher.MultiPatternSearch(lowered, false)
	if len(spans) == 0 {
		return original, nil
	}

	var found []string
	for _, span := range spans {
		found = append(found, string(span.Word))
		for i := span.Pos; i < span.Pos+len(span.Word) && i < len(origRunes); i++ {
			origRunes[i] = m.censoredChar
		}
	}
	return string(origRunes), found
}
