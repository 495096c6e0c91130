package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"speakerscribe/internal/config"
	"speakerscribe/internal/fileutil"
	"speakerscribe/internal/transcript"
)

// Artifact file names inside the output directory.
const (
	TranscriptionFile = "transcription.json"
	AnnotatedTextFile = "annotated_transcription.txt"
	AnnotatedSRTFile  = "annotated_transcription.srt"
	AnnotatedJSONFile = "annotated_transcription.json"
)

// WriteRawJSON writes raw re-indented with two spaces. Keys, values, and
// their order are left as the engine produced them.
func WriteRawJSON(path string, raw json.RawMessage) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.New("raw transcription is empty")
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("indent transcription json: %w", err)
	}
	buf.WriteByte('\n')
	return fileutil.WriteAtomic(path, buf.Bytes())
}

// FormatText writes one "<speaker> (<start>-<end>s): <text>" line per segment.
func FormatText(w io.Writer, annotated []transcript.AnnotatedSegment) error {
	bw := bufio.NewWriter(w)
	for _, seg := range annotated {
		if _, err := fmt.Fprintf(bw, "%s (%.2f-%.2fs): %s\n", seg.Speaker, seg.Start, seg.End, seg.Text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteText writes the annotated transcript in the line format of FormatText.
func WriteText(path string, annotated []transcript.AnnotatedSegment) error {
	var buf bytes.Buffer
	if err := FormatText(&buf, annotated); err != nil {
		return err
	}
	return fileutil.WriteAtomic(path, buf.Bytes())
}

// WriteSRT writes one SubRip cue per segment, prefixed with its speaker.
func WriteSRT(path string, annotated []transcript.AnnotatedSegment) error {
	var buf bytes.Buffer
	for i, seg := range annotated {
		fmt.Fprintf(&buf, "%d\n%s --> %s\n[%s] %s\n\n",
			i+1,
			formatSRTTimestamp(seg.Start),
			formatSRTTimestamp(seg.End),
			seg.Speaker,
			strings.TrimSpace(seg.Text),
		)
	}
	return fileutil.WriteAtomic(path, buf.Bytes())
}

// WriteAnnotatedJSON writes the merged sequence as an indented JSON array.
func WriteAnnotatedJSON(path string, annotated []transcript.AnnotatedSegment) error {
	if annotated == nil {
		annotated = []transcript.AnnotatedSegment{}
	}
	data, err := json.MarshalIndent(annotated, "", "  ")
	if err != nil {
		return fmt.Errorf("encode annotated json: %w", err)
	}
	return fileutil.WriteAtomic(path, append(data, '\n'))
}

// Paths lists the artifacts produced by WriteAll. Optional entries are empty
// when their format is disabled.
type Paths struct {
	Transcription string
	AnnotatedText string
	SRT           string
	AnnotatedJSON string
}

// All returns the non-empty paths in write order.
func (p Paths) All() []string {
	out := make([]string, 0, 4)
	for _, path := range []string{p.Transcription, p.AnnotatedText, p.SRT, p.AnnotatedJSON} {
		if path != "" {
			out = append(out, path)
		}
	}
	return out
}

// WriteAll writes every artifact cfg asks for into dir.
func WriteAll(dir string, cfg config.Output, raw json.RawMessage, annotated []transcript.AnnotatedSegment) (Paths, error) {
	paths := Paths{
		Transcription: filepath.Join(dir, TranscriptionFile),
		AnnotatedText: filepath.Join(dir, AnnotatedTextFile),
	}
	if err := WriteRawJSON(paths.Transcription, raw); err != nil {
		return Paths{}, fmt.Errorf("write %s: %w", TranscriptionFile, err)
	}
	if err := WriteText(paths.AnnotatedText, annotated); err != nil {
		return Paths{}, fmt.Errorf("write %s: %w", AnnotatedTextFile, err)
	}
	if cfg.WantsFormat(config.FormatSRT) {
		paths.SRT = filepath.Join(dir, AnnotatedSRTFile)
		if err := WriteSRT(paths.SRT, annotated); err != nil {
			return Paths{}, fmt.Errorf("write %s: %w", AnnotatedSRTFile, err)
		}
	}
	if cfg.WantsFormat(config.FormatAnnotatedJSON) {
		paths.AnnotatedJSON = filepath.Join(dir, AnnotatedJSONFile)
		if err := WriteAnnotatedJSON(paths.AnnotatedJSON, annotated); err != nil {
			return Paths{}, fmt.Errorf("write %s: %w", AnnotatedJSONFile, err)
		}
	}
	return paths, nil
}

func formatSRTTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	msTotal := int64(math.Round(seconds * 1000))
	hours := msTotal / 3_600_000
	msTotal %= 3_600_000
	minutes := msTotal / 60_000
	msTotal %= 60_000
	secs := msTotal / 1_000
	millis := msTotal % 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
