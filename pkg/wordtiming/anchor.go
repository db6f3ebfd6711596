package wordtiming

import (
	"github.com/slidevoxdev/slidevox/pkg/markertoken"
)

// AnchorTime resolves a marker's time against word timings by locating its
// embedded token in the text. The anchor is preferentially the first word at
// or after the token (the trigger fires when that word begins); the word
// before the token only anchors when nothing follows it.
//
// Returns false when the token is absent from the text or no word timing can
// anchor it — both are data-unavailable conditions, not errors.
func AnchorTime(text, markerID string, timings []WordTiming) (float64, bool) {
	tokenStart, tokenEnd, ok := markertoken.Locate(text, markerID)
	if !ok {
		return 0, false
	}
	return AnchorTimeAt(tokenStart, tokenEnd, timings)
}

// AnchorTimeAt resolves a time for a marker spanning [tokenStart, tokenEnd)
// in the same offset space as the timings. Used directly when a marker's
// position is known from stored character offsets rather than a token.
func AnchorTimeAt(tokenStart, tokenEnd int, timings []WordTiming) (float64, bool) {
	sorted := SortByCharStart(timings)

	for _, wt := range sorted {
		if wt.CharStart >= tokenEnd {
			return wt.StartTime, true
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].CharEnd <= tokenStart {
			if sorted[i].EndTime > 0 {
				return sorted[i].EndTime, true
			}
			return sorted[i].StartTime, true
		}
	}
	return 0, false
}
