package transcript_test

import (
	"reflect"
	"testing"

	"speakerscribe/internal/transcript"
)

func TestMergeSpeakerResolution(t *testing.T) {
	single := []transcript.Turn{{Start: 0, End: 5, Speaker: "A"}}

	tests := []struct {
		name  string
		turns []transcript.Turn
		start float64
		want  string
	}{
		{name: "contained", turns: single, start: 2.0, want: "A"},
		{name: "start inclusive", turns: single, start: 0.0, want: "A"},
		{name: "end exclusive", turns: single, start: 5.0, want: transcript.UnknownSpeaker},
		{name: "before first turn", turns: []transcript.Turn{{Start: 1, End: 2, Speaker: "A"}}, start: 0.5, want: transcript.UnknownSpeaker},
		{name: "no turns", turns: nil, start: 1.0, want: transcript.UnknownSpeaker},
		{
			name:  "first match wins on overlap",
			turns: []transcript.Turn{{Start: 0, End: 10, Speaker: "A"}, {Start: 0, End: 10, Speaker: "B"}},
			start: 1.0,
			want:  "A",
		},
		{
			name:  "list order beats tighter fit",
			turns: []transcript.Turn{{Start: 0, End: 100, Speaker: "LONG"}, {Start: 4, End: 6, Speaker: "SHORT"}},
			start: 5.0,
			want:  "LONG",
		},
		{
			name:  "unsorted turns still scanned fully",
			turns: []transcript.Turn{{Start: 10, End: 20, Speaker: "B"}, {Start: 0, End: 10, Speaker: "A"}},
			start: 3.0,
			want:  "A",
		},
		{
			name:  "abutting turns use later turn at boundary",
			turns: []transcript.Turn{{Start: 0, End: 5, Speaker: "A"}, {Start: 5, End: 9, Speaker: "B"}},
			start: 5.0,
			want:  "B",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := transcript.Merge([]transcript.Segment{{Start: tc.start, End: tc.start + 1, Text: "hi"}}, tc.turns)
			if len(out) != 1 {
				t.Fatalf("expected 1 segment, got %d", len(out))
			}
			if out[0].Speaker != tc.want {
				t.Fatalf("speaker = %q, want %q", out[0].Speaker, tc.want)
			}
		})
	}
}

func TestMergeIgnoresSegmentEnd(t *testing.T) {
	turns := []transcript.Turn{{Start: 0, End: 5, Speaker: "A"}, {Start: 5, End: 10, Speaker: "B"}}
	out := transcript.Merge([]transcript.Segment{{Start: 4.9, End: 9.9, Text: "mostly B"}}, turns)
	if out[0].Speaker != "A" {
		t.Fatalf("expected start-anchored speaker A, got %q", out[0].Speaker)
	}
}

func TestMergePreservesFieldsAndOrder(t *testing.T) {
	segments := []transcript.Segment{
		{Start: 12.5, End: 14.0, Text: " later"},
		{Start: 0.0, End: 2.25, Text: " first"},
		{Start: 6.0, End: 7.5, Text: " middle"},
	}
	turns := []transcript.Turn{
		{Start: 0, End: 6, Speaker: "SPEAKER_00"},
		{Start: 6, End: 12, Speaker: "SPEAKER_01"},
	}
	segmentsBefore := append([]transcript.Segment(nil), segments...)
	turnsBefore := append([]transcript.Turn(nil), turns...)

	out := transcript.Merge(segments, turns)

	want := []transcript.AnnotatedSegment{
		{Speaker: transcript.UnknownSpeaker, Start: 12.5, End: 14.0, Text: " later"},
		{Speaker: "SPEAKER_00", Start: 0.0, End: 2.25, Text: " first"},
		{Speaker: "SPEAKER_01", Start: 6.0, End: 7.5, Text: " middle"},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("unexpected merge result:\n got %+v\nwant %+v", out, want)
	}
	if !reflect.DeepEqual(segments, segmentsBefore) {
		t.Fatal("segments were mutated")
	}
	if !reflect.DeepEqual(turns, turnsBefore) {
		t.Fatal("turns were mutated")
	}
}

func TestMergeEmptyInputs(t *testing.T) {
	out := transcript.Merge(nil, []transcript.Turn{{Start: 0, End: 1, Speaker: "A"}})
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", out)
	}

	segments := make([]transcript.Segment, 25)
	for i := range segments {
		segments[i] = transcript.Segment{Start: float64(i), End: float64(i) + 0.5, Text: "x"}
	}
	out = transcript.Merge(segments, nil)
	if len(out) != len(segments) {
		t.Fatalf("length = %d, want %d", len(out), len(segments))
	}
	for i, seg := range out {
		if seg.Speaker != transcript.UnknownSpeaker {
			t.Fatalf("segment %d speaker = %q, want Unknown", i, seg.Speaker)
		}
	}
}

func TestSummarize(t *testing.T) {
	summary := transcript.Summarize([]transcript.AnnotatedSegment{
		{Speaker: "B"},
		{Speaker: transcript.UnknownSpeaker},
		{Speaker: "A"},
		{Speaker: "B"},
		{Speaker: transcript.UnknownSpeaker},
	})
	if !reflect.DeepEqual(summary.Speakers, []string{"B", "A"}) {
		t.Fatalf("speakers = %v", summary.Speakers)
	}
	if summary.Unknown != 2 {
		t.Fatalf("unknown = %d, want 2", summary.Unknown)
	}
}
