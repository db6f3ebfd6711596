// Package markertoken encodes and decodes inline marker tokens of the form
// ⟦M:<uuid>⟧ embedded in slide script text. Tokens carry a language-independent
// marker identity through translation, so all offsets here are in Unicode code
// points, never bytes — the same offset space the tokenizer and word timings use.
package markertoken

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	openDelim  = "⟦M:"
	closeDelim = "⟧"
)

// TranslationInstruction is the prompt fragment supplied to the translation
// provider so tokens survive translation verbatim.
const TranslationInstruction = "The text contains marker tokens of the form " +
	"⟦M:xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx⟧. Copy each token into the " +
	"translation completely unchanged, character for character, and place it " +
	"immediately before the translated equivalent of the word it precedes in " +
	"the source text. Never translate, reorder, split, or drop a token."

// tokenPattern matches only well-formed tokens: a strict 8-4-4-4-12 hex UUID.
// Anything that merely looks like a token is left alone as ordinary text.
var tokenPattern = regexp.MustCompile(
	`⟦M:([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})⟧`)

// Token is one well-formed marker token occurrence in a text.
// Start and End are code point offsets; End is exclusive.
type Token struct {
	MarkerID string
	Start    int
	End      int
	Text     string
}

// WordSpan is a tokenized word with code point offsets, as produced by the
// text normalizer's tokenizer.
type WordSpan struct {
	Start int
	End   int
	Text  string
}

// Insertion pairs a marker ID with the code point offset its token should be
// inserted at.
type Insertion struct {
	MarkerID string
	Position int
}

// Format renders the token for a marker ID, lowercased.
func Format(markerID string) string {
	return openDelim + strings.ToLower(markerID) + closeDelim
}

// Parse returns every well-formed token occurrence in left-to-right order.
// Marker IDs are normalized to lowercase.
func Parse(text string) []Token {
	matches := tokenPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	tokens := make([]Token, 0, len(matches))
	lastByte, lastRune := 0, 0
	for _, m := range matches {
		start := lastRune + utf8.RuneCountInString(text[lastByte:m[0]])
		end := start + utf8.RuneCountInString(text[m[0]:m[1]])
		tokens = append(tokens, Token{
			MarkerID: strings.ToLower(text[m[2]:m[3]]),
			Start:    start,
			End:      end,
			Text:     text[m[0]:m[1]],
		})
		lastByte, lastRune = m[1], end
	}
	return tokens
}

// Contains reports whether the text holds at least one well-formed token.
func Contains(text string) bool {
	return tokenPattern.MatchString(text)
}

// Strip removes every token, for display-only contexts.
func Strip(text string) string {
	return tokenPattern.ReplaceAllString(text, "")
}

// InsertAt inserts a marker's token at the given code point offset.
// Offsets outside the text are clamped to its ends.
func InsertAt(text, markerID string, position int) string {
	runes := []rune(text)
	if position < 0 {
		position = 0
	}
	if position > len(runes) {
		position = len(runes)
	}
	return string(runes[:position]) + Format(markerID) + string(runes[position:])
}

// InsertBeforeWord inserts a token immediately before a word and returns the
// updated text together with the word's shifted offsets.
func InsertBeforeWord(text, markerID string, wordStart, wordEnd int) (string, int, int) {
	token := Format(markerID)
	shift := utf8.RuneCountInString(token)
	return InsertAt(text, markerID, wordStart), wordStart + shift, wordEnd + shift
}

// InsertMany performs batched insertions. Insertions are applied in strictly
// descending position order so earlier ones never invalidate later offsets.
func InsertMany(text string, insertions []Insertion) string {
	sorted := make([]Insertion, len(insertions))
	copy(sorted, insertions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Position > sorted[j].Position
	})
	for _, ins := range sorted {
		text = InsertAt(text, ins.MarkerID, ins.Position)
	}
	return text
}

// Locate finds a specific marker's token span.
func Locate(text, markerID string) (start, end int, ok bool) {
	want := strings.ToLower(markerID)
	for _, tok := range Parse(text) {
		if tok.MarkerID == want {
			return tok.Start, tok.End, true
		}
	}
	return 0, 0, false
}

// FindAnchorWord returns the word a marker's token anchors to: the first word
// starting at or after the token, else the last word ending at or before it.
// Words must be ordered by start offset.
func FindAnchorWord(text, markerID string, words []WordSpan) (WordSpan, bool) {
	_, tokenEnd, ok := Locate(text, markerID)
	if !ok {
		return WordSpan{}, false
	}
	tokenStart := tokenEnd - utf8.RuneCountInString(Format(markerID))

	for _, w := range words {
		if w.Start >= tokenEnd {
			return w, true
		}
	}
	for i := len(words) - 1; i >= 0; i-- {
		if words[i].End <= tokenStart {
			return words[i], true
		}
	}
	return WordSpan{}, false
}
