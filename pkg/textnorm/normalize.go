// Package textnorm canonicalizes raw script text and tokenizes it into words.
// Marker tokens embedded in the text pass through normalization byte-for-byte
// unchanged, and their internals are never emitted as words.
//
// All offsets are Unicode code point offsets into the text.
package textnorm

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/slidevoxdev/slidevox/pkg/markertoken"
)

// TokenizationVersion is stored alongside normalized scripts so a future
// change to the word-boundary rules can invalidate stale tokenizations.
const TokenizationVersion = 1

// typographicReplacer maps smart punctuation to ASCII equivalents.
var typographicReplacer = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"–", "-", // en dash
	"—", "-", // em dash
	"…", "...", // ellipsis
	" ", " ", // non-breaking space
)

var (
	hspacePattern = regexp.MustCompile(`[ \t]+`)

	// A word is a maximal run of word characters/apostrophes, or a maximal
	// run of non-whitespace non-word characters (punctuation clusters).
	wordPattern = regexp.MustCompile(`[\p{L}\p{N}_']+|[^\p{L}\p{N}_\s]+`)
)

// lonePunctuation is dropped when it appears as a standalone single-character
// match: isolated sentence punctuation is not an animatable unit.
const lonePunctuation = ".,;:!?"

// placeholder returns a substitution sequence guaranteed absent from script
// text: a NUL control character bracketing the token index.
func placeholder(i int) string {
	return "\x00" + strconv.Itoa(i) + "\x00"
}

// Normalize canonicalizes raw script text: Unicode NFC, smart punctuation to
// ASCII, line endings to LF, runs of horizontal whitespace collapsed, lines
// trimmed. Well-formed marker tokens are swapped for placeholders up front
// (in reverse position order, so earlier substitutions cannot shift spans
// captured later) and restored verbatim at the end.
func Normalize(text string) string {
	tokens := markertoken.Parse(text)
	if len(tokens) > 0 {
		runes := []rune(text)
		for i := len(tokens) - 1; i >= 0; i-- {
			head := runes[:tokens[i].Start:tokens[i].Start]
			tail := append([]rune(placeholder(i)), runes[tokens[i].End:]...)
			runes = append(head, tail...)
		}
		text = string(runes)
	}

	text = norm.NFC.String(text)
	text = typographicReplacer.Replace(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = hspacePattern.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	text = strings.TrimSpace(strings.Join(lines, "\n"))

	for i, tok := range tokens {
		text = strings.Replace(text, placeholder(i), tok.Text, 1)
	}
	return text
}

// TokenizeWords splits normalized text into words with code point offsets.
// Matches that fall inside a marker token's span are excluded, so the UUID
// hex inside a token never surfaces as a pseudo-word.
func TokenizeWords(text string) []markertoken.WordSpan {
	tokens := markertoken.Parse(text)

	matches := wordPattern.FindAllStringIndex(text, -1)
	words := make([]markertoken.WordSpan, 0, len(matches))

	lastByte, lastRune := 0, 0
	for _, m := range matches {
		start := lastRune + utf8.RuneCountInString(text[lastByte:m[0]])
		end := start + utf8.RuneCountInString(text[m[0]:m[1]])
		lastByte, lastRune = m[1], end

		word := text[m[0]:m[1]]
		if end-start == 1 && strings.Contains(lonePunctuation, word) {
			continue
		}
		if insideToken(tokens, start, end) {
			continue
		}
		words = append(words, markertoken.WordSpan{Start: start, End: end, Text: word})
	}
	return words
}

// TokenizeWordsWithMarkers returns the word list plus the marker token
// occurrences of the text in one pass over it.
func TokenizeWordsWithMarkers(text string) ([]markertoken.WordSpan, []markertoken.Token) {
	return TokenizeWords(text), markertoken.Parse(text)
}

func insideToken(tokens []markertoken.Token, start, end int) bool {
	for _, tok := range tokens {
		if start < tok.End && end > tok.Start {
			return true
		}
	}
	return false
}
