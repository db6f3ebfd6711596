// Package wordtiming converts character-level timing from a speech provider
// into word-level timing records, and resolves marker anchor times against
// those records.
package wordtiming

import (
	"sort"
	"strings"

	"github.com/slidevoxdev/slidevox/pkg/textnorm"
)

// defaultWordTailSeconds pads a word's end time when the provider's end-time
// index falls out of range.
const defaultWordTailSeconds = 0.1

// WordTiming describes when one word of a normalized script is spoken.
// CharStart/CharEnd are code point offsets into the normalized text.
type WordTiming struct {
	CharStart int     `json:"charStart"`
	CharEnd   int     `json:"charEnd"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Word      string  `json:"word"`
}

// CharAlignment is the provider's character-level alignment: three parallel
// arrays of characters and their start/end times.
type CharAlignment struct {
	Characters     []string  `json:"characters"`
	CharStartTimes []float64 `json:"character_start_times_seconds"`
	CharEndTimes   []float64 `json:"character_end_times_seconds"`
}

// Valid reports whether the alignment arrays are non-empty and consistent.
func (a CharAlignment) Valid() bool {
	return len(a.Characters) > 0 &&
		len(a.Characters) == len(a.CharStartTimes) &&
		len(a.Characters) == len(a.CharEndTimes)
}

// Align maps each tokenized word of the normalized text onto the provider's
// character stream and returns one timing record per word that could be
// located. A malformed alignment yields an empty result, never an error.
//
// The search cursor advances monotonically through the stream, so repeated
// words resolve to successive occurrences. A word not found from the cursor
// is retried from the stream start, then case-insensitively, before being
// omitted.
func Align(normalizedText string, alignment CharAlignment) []WordTiming {
	if !alignment.Valid() {
		return nil
	}

	// The provider's characters may each hold more than one rune; owner maps
	// every rune of the concatenated stream back to its provider index.
	var stream []rune
	var owner []int
	for i, ch := range alignment.Characters {
		for _, r := range ch {
			stream = append(stream, r)
			owner = append(owner, i)
		}
	}
	lowered := []rune(strings.ToLower(string(stream)))

	words := textnorm.TokenizeWords(normalizedText)
	timings := make([]WordTiming, 0, len(words))

	cursor := 0
	for _, w := range words {
		target := []rune(w.Text)

		idx := indexRunes(stream, target, cursor)
		if idx < 0 {
			idx = indexRunes(stream, target, 0)
		}
		if idx < 0 && len(lowered) == len(stream) {
			idx = indexRunes(lowered, []rune(strings.ToLower(w.Text)), 0)
		}
		if idx < 0 {
			continue
		}

		start := alignment.CharStartTimes[owner[idx]]
		end := start + defaultWordTailSeconds
		if last := owner[idx+len(target)-1]; last < len(alignment.CharEndTimes) {
			end = alignment.CharEndTimes[last]
		}

		timings = append(timings, WordTiming{
			CharStart: w.Start,
			CharEnd:   w.End,
			StartTime: start,
			EndTime:   end,
			Word:      w.Text,
		})
		cursor = idx + len(target)
	}
	return timings
}

// Estimate lays words out back-to-back over the total duration, each word
// receiving time proportional to its character count. Used when no provider
// alignment exists.
func Estimate(normalizedText string, totalDurationSeconds float64) []WordTiming {
	words := textnorm.TokenizeWords(normalizedText)
	if len(words) == 0 || totalDurationSeconds <= 0 {
		return nil
	}

	totalChars := 0
	for _, w := range words {
		totalChars += len([]rune(w.Text))
	}
	if totalChars == 0 {
		return nil
	}

	timings := make([]WordTiming, 0, len(words))
	elapsed := 0.0
	for _, w := range words {
		share := float64(len([]rune(w.Text))) / float64(totalChars) * totalDurationSeconds
		timings = append(timings, WordTiming{
			CharStart: w.Start,
			CharEnd:   w.End,
			StartTime: elapsed,
			EndTime:   elapsed + share,
			Word:      w.Text,
		})
		elapsed += share
	}
	return timings
}

// SortByCharStart returns a copy of the timings ordered by character offset.
func SortByCharStart(timings []WordTiming) []WordTiming {
	sorted := make([]WordTiming, len(timings))
	copy(sorted, timings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CharStart < sorted[j].CharStart
	})
	return sorted
}

func indexRunes(haystack, needle []rune, from int) int {
	if len(needle) == 0 || from < 0 {
		return -1
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, r := range needle {
			if haystack[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
