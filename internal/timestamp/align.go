// Package timestamp reconstructs approximate per-word timings for synthesized
// speech. The synthesis engine produces a single continuous recording with no
// timing metadata, so timings are estimated from the audio's speech/silence
// envelope and the exact text that was synthesized: characters are assumed to
// be spoken at a uniform rate within the non-silent portions of the audio.
package timestamp

import (
	"strings"
	"unicode/utf8"
)

// Interval is a non-silent region of the audio, in milliseconds.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// WordTimestamp is the estimated span of a single whitespace-delimited word,
// in seconds from the start of the audio.
type WordTimestamp struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Align estimates a timestamp for every whitespace-delimited word of text.
// intervals must be sorted by start and non-overlapping; durationMS is the
// total length of the audio. The text must be the exact string the audio was
// synthesized from, otherwise the result is silently skewed. Character counts
// are in runes so accented text keeps proportional estimates.
func Align(intervals []Interval, durationMS float64, text string) []WordTimestamp {
	if len(intervals) == 0 {
		return alignUniform(durationMS, text)
	}

	var speechMS float64
	for _, iv := range intervals {
		speechMS += iv.End - iv.Start
	}

	totalChars := utf8.RuneCountInString(text)
	if totalChars == 0 || speechMS == 0 {
		return nil
	}
	timePerChar := speechMS / float64(totalChars)

	words := strings.Fields(text)
	timestamps := make([]WordTimestamp, 0, len(words))

	// fallbackMS tracks a wall-clock position that advances past each
	// interval and the silence gap after it; words whose estimated position
	// lands beyond the last interval collapse onto it.
	charIndex := 0
	fallbackMS := intervals[0].Start

	for _, word := range words {
		wordLen := utf8.RuneCountInString(word) + 1 // word plus its separating space
		estStart := float64(charIndex) * timePerChar
		estEnd := float64(charIndex+wordLen) * timePerChar

		absStart := fallbackMS
		absEnd := fallbackMS
		var consumed float64
		for i, iv := range intervals {
			segDur := iv.End - iv.Start
			if estStart < consumed+segDur {
				absStart = iv.Start + (estStart - consumed)
				if estEnd <= consumed+segDur {
					absEnd = iv.Start + (estEnd - consumed)
				} else {
					absEnd = iv.End
				}
				break
			}
			consumed += segDur
			if i+1 < len(intervals) {
				silence := intervals[i+1].Start - iv.End
				fallbackMS += segDur + silence
			}
		}

		timestamps = append(timestamps, WordTimestamp{
			Word:  word,
			Start: absStart / 1000.0,
			End:   absEnd / 1000.0,
		})
		charIndex += wordLen
	}

	return timestamps
}

// alignUniform divides the audio duration evenly across all words. Used when
// no non-silent interval was detected (very short or very quiet audio).
func alignUniform(durationMS float64, text string) []WordTimestamp {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	timePerWord := durationMS / float64(len(words))
	timestamps := make([]WordTimestamp, len(words))
	for i, word := range words {
		timestamps[i] = WordTimestamp{
			Word:  word,
			Start: float64(i) * timePerWord / 1000.0,
			End:   float64(i+1) * timePerWord / 1000.0,
		}
	}
	return timestamps
}
