package guide

import (
	"path/filepath"
	"strings"
	"testing"
)

const sampleSRT = "\ufeff1\r\n00:00:01,000 --> 00:00:03,500\r\nHello there\r\n\r\n2\n00:00:04,250 --> 00:00:06,000\nSecond line\nwraps\n\n3\n00:01:00.500 --> 00:01:02,000 X1:0\nThird\n"

func TestParseSRT(t *testing.T) {
	cues, err := ParseSRT(strings.NewReader(sampleSRT))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(cues))
	}
	if cues[0].Index != 1 || cues[0].Start() != 1 || cues[0].End() != 3.5 || cues[0].Text() != "Hello there" {
		t.Fatalf("unexpected first cue %+v", cues[0])
	}
	if cues[1].Text() != "Second line\nwraps" {
		t.Fatalf("expected joined lines, got %q", cues[1].Text())
	}
	if cues[2].Start() != 60.5 || cues[2].End() != 62 {
		t.Fatalf("unexpected third cue timing %+v", cues[2].Span)
	}
}

func TestParseSRTRejectsBadTiming(t *testing.T) {
	_, err := ParseSRT(strings.NewReader("1\nsoon --> later\ntext\n"))
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("expected a located timing error, got %v", err)
	}
}

func TestApplyEditsSplitsCues(t *testing.T) {
	cues, err := ParseSRT(strings.NewReader(sampleSRT))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	start, end, text := 2.0, 3.5, "there"
	early, earlyEnd, earlyText := 1.0, 2.0, "Hello"
	edits := []Edit{
		{Index: 1, Segments: []EditSegment{
			{Start: &start, End: &end, Text: &text},
			{Start: &early, End: &earlyEnd, Text: &earlyText},
			{Start: &early},
		}},
		{Index: 2},
	}

	effective := ApplyEdits(cues, edits)
	if len(effective) != 4 {
		t.Fatalf("expected 4 effective entries, got %d", len(effective))
	}
	first, ok := effective[0].(Derived)
	if !ok {
		t.Fatalf("expected a derived entry first, got %T", effective[0])
	}
	if first.SourceIndex != 1 || first.SegmentIndex != 1 || first.Text() != "Hello" {
		t.Fatalf("unexpected derived entry %+v", first)
	}
	if second := effective[1].(Derived); second.SourceIndex != 1 || second.Start() != 2 {
		t.Fatalf("unexpected second entry %+v", second)
	}
	if _, ok := effective[2].(Original); !ok {
		t.Fatalf("expected cue without usable segments to stay original, got %T", effective[2])
	}
}

func TestLoadEdits(t *testing.T) {
	dir := t.TempDir()
	edits, err := LoadEdits(filepath.Join(dir, "missing.json"))
	if err != nil || edits != nil {
		t.Fatalf("expected no edits for a missing file, got %v, %v", edits, err)
	}

	path := writeFile(t, dir, "edits.json", `[{"index": 3, "segments": [{"start": 1, "end": 2, "text": "a"}]}]`)
	edits, err = LoadEdits(path)
	if err != nil {
		t.Fatalf("LoadEdits: %v", err)
	}
	if len(edits) != 1 || edits[0].Index != 3 || *edits[0].Segments[0].Text != "a" {
		t.Fatalf("unexpected edits %+v", edits)
	}

	bad := writeFile(t, dir, "bad.json", `{"index": 1}`)
	if _, err := LoadEdits(bad); err == nil {
		t.Fatal("expected parse error for a non-list edits file")
	}
}
