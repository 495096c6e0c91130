package transcript

// Merge assigns a speaker to every segment.
//
// A segment takes the speaker of the first turn, in the given turn order,
// whose half-open interval [Start, End) contains the segment's start time.
// The segment's end time is not consulted. Segments matched by no turn get
// UnknownSpeaker. The result has the same length and order as segments.
func Merge(segments []Segment, turns []Turn) []AnnotatedSegment {
	annotated := make([]AnnotatedSegment, 0, len(segments))
	for _, seg := range segments {
		annotated = append(annotated, AnnotatedSegment{
			Speaker: speakerAt(turns, seg.Start),
			Start:   seg.Start,
			End:     seg.End,
			Text:    seg.Text,
		})
	}
	return annotated
}

func speakerAt(turns []Turn, at float64) string {
	for _, turn := range turns {
		if turn.Start <= at && at < turn.End {
			return turn.Speaker
		}
	}
	return UnknownSpeaker
}

// Summary describes how speakers were distributed across a merge result.
type Summary struct {
	// Speakers lists distinct labels in order of first appearance,
	// excluding UnknownSpeaker.
	Speakers []string
	// Unknown counts segments that matched no turn.
	Unknown int
}

// Summarize reports the speakers present in annotated.
func Summarize(annotated []AnnotatedSegment) Summary {
	var summary Summary
	seen := make(map[string]struct{})
	for _, seg := range annotated {
		if seg.Speaker == UnknownSpeaker {
			summary.Unknown++
			continue
		}
		if _, ok := seen[seg.Speaker]; ok {
			continue
		}
		seen[seg.Speaker] = struct{}{}
		summary.Speakers = append(summary.Speakers, seg.Speaker)
	}
	return summary
}
