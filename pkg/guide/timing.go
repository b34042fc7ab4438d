package guide

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
)

// TimingEntry is one span of narration text.
type TimingEntry interface {
	Text() string
	Start() float64
	End() float64
}

// Span is a start/end pair in seconds.
type Span struct {
	From float64
	To   float64
}

// Original is a subtitle cue as read from the SRT file.
type Original struct {
	Index   int
	Span    Span
	Content string
}

func (o Original) Text() string   { return o.Content }
func (o Original) Start() float64 { return o.Span.From }
func (o Original) End() float64   { return o.Span.To }

// Derived is one segment of an original cue that was split by an edit. It
// keeps the index of the cue it came from.
type Derived struct {
	SourceIndex  int
	SegmentIndex int
	Span         Span
	Content      string
}

func (d Derived) Text() string   { return d.Content }
func (d Derived) Start() float64 { return d.Span.From }
func (d Derived) End() float64   { return d.Span.To }

// LoadSRT reads a SubRip file.
func LoadSRT(path string) ([]Original, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open subtitles: %w", err)
	}
	defer f.Close()
	return ParseSRT(f)
}

// ParseSRT parses SubRip cues. Cue text lines are joined with newlines.
func ParseSRT(r io.Reader) ([]Original, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		cues  []Original
		block []string
		line  int
		first int
	)
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		cue, err := parseCue(block)
		if err != nil {
			return fmt.Errorf("subtitles line %d: %w", first, err)
		}
		cues = append(cues, cue)
		block = block[:0]
		return nil
	}

	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if strings.TrimSpace(text) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		if len(block) == 0 {
			first = line
		}
		block = append(block, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read subtitles: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cues, nil
}

func parseCue(block []string) (Original, error) {
	if len(block) < 2 {
		return Original{}, errors.New("incomplete cue")
	}
	index, err := strconv.Atoi(strings.TrimSpace(block[0]))
	if err != nil {
		return Original{}, fmt.Errorf("invalid cue index %q", block[0])
	}
	from, to, ok := strings.Cut(block[1], "-->")
	if !ok {
		return Original{}, fmt.Errorf("invalid cue timing %q", block[1])
	}
	start, err := parseTimestamp(from)
	if err != nil {
		return Original{}, err
	}
	end, err := parseTimestamp(to)
	if err != nil {
		return Original{}, err
	}
	return Original{
		Index:   index,
		Span:    Span{From: start, To: end},
		Content: strings.Join(block[2:], "\n"),
	}, nil
}

// parseTimestamp reads HH:MM:SS,mmm. A period is accepted for the comma.
func parseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	// Some tools append position hints after the end time.
	if fields := strings.Fields(value); len(fields) > 0 {
		value = fields[0]
	}
	value = strings.Replace(value, ",", ".", 1)
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return roundMillis(float64(hours*3600+minutes*60) + seconds), nil
}

func roundMillis(seconds float64) float64 {
	return math.Round(seconds*1000) / 1000
}

// Edit splits the original cue Index into segments.
type Edit struct {
	Index    int           `json:"index"`
	Segments []EditSegment `json:"segments"`
}

// EditSegment is one replacement span. Fields are pointers so incomplete
// segments can be told apart from zero values.
type EditSegment struct {
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Text  *string  `json:"text"`
}

// LoadEdits reads a JSON edits file. A missing file means no edits.
func LoadEdits(path string) ([]Edit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read edits: %w", err)
	}
	var edits []Edit
	if err := json.Unmarshal(data, &edits); err != nil {
		return nil, fmt.Errorf("parse edits: %w", err)
	}
	return edits, nil
}

// ApplyEdits returns the effective timing list. Cues with an edit are
// replaced by their complete segments; cues without one, or whose edit has
// no usable segment, are kept. The result is ordered by start time.
func ApplyEdits(cues []Original, edits []Edit) []TimingEntry {
	byIndex := make(map[int]Edit, len(edits))
	for _, e := range edits {
		byIndex[e.Index] = e
	}

	effective := make([]TimingEntry, 0, len(cues))
	for _, cue := range cues {
		edit, ok := byIndex[cue.Index]
		if !ok {
			effective = append(effective, cue)
			continue
		}
		var derived []TimingEntry
		for i, seg := range edit.Segments {
			if seg.Start == nil || seg.End == nil || seg.Text == nil {
				continue
			}
			derived = append(derived, Derived{
				SourceIndex:  cue.Index,
				SegmentIndex: i,
				Span:         Span{From: roundMillis(*seg.Start), To: roundMillis(*seg.End)},
				Content:      *seg.Text,
			})
		}
		if len(derived) == 0 {
			effective = append(effective, cue)
			continue
		}
		effective = append(effective, derived...)
	}

	slices.SortStableFunc(effective, func(a, b TimingEntry) int {
		switch {
		case a.Start() < b.Start():
			return -1
		case a.Start() > b.Start():
			return 1
		default:
			return 0
		}
	})
	return effective
}
