package wordtiming_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slidevoxdev/slidevox/pkg/markertoken"
	"github.com/slidevoxdev/slidevox/pkg/wordtiming"
)

const testID = "a1b2c3d4-e5f6-4a7b-8c9d-0123456789ab"

// uniformAlignment builds a character alignment where character i spans
// [i*0.1, (i+1)*0.1) seconds.
func uniformAlignment(text string) wordtiming.CharAlignment {
	var a wordtiming.CharAlignment
	i := 0
	for _, r := range text {
		a.Characters = append(a.Characters, string(r))
		a.CharStartTimes = append(a.CharStartTimes, float64(i)*0.1)
		a.CharEndTimes = append(a.CharEndTimes, float64(i+1)*0.1)
		i++
	}
	return a
}

func TestAlign_RepeatedWordsAdvance(t *testing.T) {
	t.Parallel()

	text := "the cat and the dog"
	timings := wordtiming.Align(text, uniformAlignment(text))
	require.Len(t, timings, 5)

	assert.Equal(t, "the", timings[0].Word)
	assert.Equal(t, "the", timings[3].Word)
	assert.InDelta(t, 0.0, timings[0].StartTime, 1e-9)
	assert.InDelta(t, 1.2, timings[3].StartTime, 1e-9)
	assert.Greater(t, timings[3].StartTime, timings[0].StartTime)
}

func TestAlign_MalformedAlignmentIsEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		alignment wordtiming.CharAlignment
	}{
		{"all empty", wordtiming.CharAlignment{}},
		{"length mismatch", wordtiming.CharAlignment{
			Characters:     []string{"h", "i"},
			CharStartTimes: []float64{0.0},
			CharEndTimes:   []float64{0.1, 0.2},
		}},
		{"missing end times", wordtiming.CharAlignment{
			Characters:     []string{"h", "i"},
			CharStartTimes: []float64{0.0, 0.1},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Empty(t, wordtiming.Align("hi", tc.alignment))
		})
	}
}

func TestAlign_CaseInsensitiveFallback(t *testing.T) {
	t.Parallel()

	// Provider stream differs in casing from our normalized text.
	timings := wordtiming.Align("Hello world", uniformAlignment("hello world"))
	require.Len(t, timings, 2)
	assert.Equal(t, "Hello", timings[0].Word)
	assert.InDelta(t, 0.0, timings[0].StartTime, 1e-9)
	assert.InDelta(t, 0.6, timings[1].StartTime, 1e-9)
}

func TestAlign_UnfoundWordsOmitted(t *testing.T) {
	t.Parallel()

	timings := wordtiming.Align("alpha beta", uniformAlignment("alpha"))
	require.Len(t, timings, 1)
	assert.Equal(t, "alpha", timings[0].Word)
}

func TestAlign_MarkerTokenSkipped(t *testing.T) {
	t.Parallel()

	// The provider never hears the token, so its stream has plain words only.
	text := "Hello " + markertoken.Format(testID) + "world"
	timings := wordtiming.Align(text, uniformAlignment("Hello world"))
	require.Len(t, timings, 2)
	assert.Equal(t, "world", timings[1].Word)

	// Offsets stay in the tokenized text's space, past the token.
	_, tokenEnd, ok := markertoken.Locate(text, testID)
	require.True(t, ok)
	assert.Equal(t, tokenEnd, timings[1].CharStart)
	assert.InDelta(t, 0.6, timings[1].StartTime, 1e-9)
}

func TestEstimate_Proportional(t *testing.T) {
	t.Parallel()

	timings := wordtiming.Estimate("Hi there", 7.0)
	require.Len(t, timings, 2)

	assert.InDelta(t, 0.0, timings[0].StartTime, 1e-9)
	assert.InDelta(t, 2.0, timings[0].EndTime, 1e-9)
	assert.InDelta(t, 2.0, timings[1].StartTime, 1e-9)
	assert.InDelta(t, 7.0, timings[1].EndTime, 1e-9)
}

func TestEstimate_DegenerateInputs(t *testing.T) {
	t.Parallel()

	assert.Empty(t, wordtiming.Estimate("", 5.0))
	assert.Empty(t, wordtiming.Estimate("words here", 0))
	assert.Empty(t, wordtiming.Estimate("words here", -1))
}

func TestAnchorTime(t *testing.T) {
	t.Parallel()

	t.Run("anchors to first word after token", func(t *testing.T) {
		t.Parallel()

		text := "Hello " + markertoken.Format(testID) + "world"
		timings := wordtiming.Align(text, uniformAlignment("Hello world"))

		got, ok := wordtiming.AnchorTime(text, testID, timings)
		require.True(t, ok)
		assert.InDelta(t, 0.6, got, 1e-9)
	})

	t.Run("falls back to end of last word before token", func(t *testing.T) {
		t.Parallel()

		text := "Hello world " + markertoken.Format(testID)
		timings := wordtiming.Align(text, uniformAlignment("Hello world"))

		got, ok := wordtiming.AnchorTime(text, testID, timings)
		require.True(t, ok)
		assert.InDelta(t, 1.1, got, 1e-9)
	})

	t.Run("no words at all", func(t *testing.T) {
		t.Parallel()

		text := markertoken.Format(testID)
		_, ok := wordtiming.AnchorTime(text, testID, nil)
		assert.False(t, ok)
	})

	t.Run("token missing from text", func(t *testing.T) {
		t.Parallel()

		_, ok := wordtiming.AnchorTime("no token here", testID, wordtiming.Estimate("no token here", 3.0))
		assert.False(t, ok)
	})
}
