package scoring

import (
	"strings"
	"unicode"
)

// stopWords are excluded from lexical overlap so function words do not
// dominate short queries.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "for": {}, "from": {}, "has": {},
	"have": {}, "in": {}, "is": {}, "it": {}, "its": {}, "of": {},
	"on": {}, "or": {}, "that": {}, "the": {}, "to": {}, "was": {},
	"were": {}, "will": {}, "with": {},
}

// IsStopWord reports whether the lower-cased term is a stop word.
func IsStopWord(term string) bool {
	_, ok := stopWords[term]
	return ok
}

// Tokenize lower-cases text and splits it on non-alphanumeric runes.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// ContentTokens tokenizes text and drops stop words.
func ContentTokens(text string) []string {
	tokens := Tokenize(text)
	out := tokens[:0]
	for _, tok := range tokens {
		if !IsStopWord(tok) {
			out = append(out, tok)
		}
	}
	return out
}

// TermSet converts a token list into a membership set.
func TermSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// Normalize collapses whitespace and lower-cases text for verbatim
// containment checks.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// SplitSentences splits content into sentences on common terminators.
// Newlines are treated as terminators so headings and list items become
// their own sentences.
func SplitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
