package client

import (
	"math"
	"testing"

	"github.com/polyvox/api/internal/timestamp"
)

const ffmpegOutput = `Input #0, mp3, from 'voice.mp3':
  Duration: 00:00:10.00, start: 0.000000, bitrate: 64 kb/s
[silencedetect @ 0x5555] silence_start: 2.5
[silencedetect @ 0x5555] silence_end: 4.0 | silence_duration: 1.5
[silencedetect @ 0x5555] silence_start: 7.25
[silencedetect @ 0x5555] silence_end: 8.0 | silence_duration: 0.75
size=N/A time=00:00:10.00 bitrate=N/A speed= 500x
`

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestParseSilences(t *testing.T) {
	silences := parseSilences(ffmpegOutput, 10000)
	if len(silences) != 2 {
		t.Fatalf("silences = %d, want 2", len(silences))
	}
	if !approx(silences[0].Start, 2500) || !approx(silences[0].End, 4000) {
		t.Errorf("first silence = %+v, want [2500,4000]", silences[0])
	}
	if !approx(silences[1].Start, 7250) || !approx(silences[1].End, 8000) {
		t.Errorf("second silence = %+v, want [7250,8000]", silences[1])
	}
}

func TestParseSilencesUnclosedTrailing(t *testing.T) {
	out := "[silencedetect @ 0x1] silence_start: 9.0\n"
	silences := parseSilences(out, 10000)
	if len(silences) != 1 {
		t.Fatalf("silences = %d, want 1", len(silences))
	}
	if !approx(silences[0].End, 10000) {
		t.Errorf("unclosed silence end = %v, want file duration", silences[0].End)
	}
}

func TestComplementIntervals(t *testing.T) {
	silences := []timestamp.Interval{
		{Start: 2500, End: 4000},
		{Start: 7250, End: 8000},
	}
	speech := complementIntervals(silences, 10000)

	want := []timestamp.Interval{
		{Start: 0, End: 2500},
		{Start: 4000, End: 7250},
		{Start: 8000, End: 10000},
	}
	if len(speech) != len(want) {
		t.Fatalf("speech intervals = %d, want %d", len(speech), len(want))
	}
	for i := range want {
		if !approx(speech[i].Start, want[i].Start) || !approx(speech[i].End, want[i].End) {
			t.Errorf("interval %d = %+v, want %+v", i, speech[i], want[i])
		}
	}
}

func TestComplementIntervalsLeadingSilence(t *testing.T) {
	speech := complementIntervals([]timestamp.Interval{{Start: 0, End: 1000}}, 5000)
	if len(speech) != 1 {
		t.Fatalf("speech intervals = %d, want 1", len(speech))
	}
	if !approx(speech[0].Start, 1000) || !approx(speech[0].End, 5000) {
		t.Errorf("interval = %+v, want [1000,5000]", speech[0])
	}
}

func TestComplementIntervalsAllSilent(t *testing.T) {
	speech := complementIntervals([]timestamp.Interval{{Start: 0, End: 5000}}, 5000)
	if len(speech) != 0 {
		t.Errorf("speech intervals = %d for a fully silent file, want 0", len(speech))
	}
}
