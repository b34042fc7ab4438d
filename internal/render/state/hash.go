package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"

	"clipforge/internal/config"
	"clipforge/internal/render"
)

// globalConfigInput is the canonical structure hashed for global config changes.
type globalConfigInput struct {
	Video config.VideoConfig `json:"video"`
}

// sourceStamp identifies the content of one input file cheaply.
type sourceStamp struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	ModTime int64  `json:"mod_time"`
}

// clipInput is the canonical structure hashed for per-clip changes.
type clipInput struct {
	FilterGraph string        `json:"filter_graph"`
	Frames      int           `json:"frames"`
	Sources     []sourceStamp `json:"sources"`
}

// GlobalConfigHash returns a deterministic hash of the video output settings.
// Every clip shares them, so a change invalidates all clips.
func GlobalConfigHash(cfg config.Config) string {
	return hashJSON(globalConfigInput{Video: cfg.Video})
}

// ClipInputHash returns a deterministic hash of everything that shapes one
// rendered clip: its filter graph, its length and the files it reads.
func ClipInputHash(job render.Job) string {
	graph, err := render.BuildFilterGraph(job.Plan)
	if err != nil {
		graph = "error: " + err.Error()
	}
	input := clipInput{FilterGraph: graph, Frames: job.Plan.TotalFrames}
	for _, in := range job.Plan.Inputs {
		if in.Path == "" {
			continue
		}
		stamp := sourceStamp{Path: in.Path}
		if info, err := os.Stat(in.Path); err == nil {
			stamp.Size = info.Size()
			stamp.ModTime = info.ModTime().UnixNano()
		}
		input.Sources = append(input.Sources, stamp)
	}
	return hashJSON(input)
}

func hashJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Should never happen with known struct types.
		return fmt.Sprintf("sha256:error-%v", err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("sha256:%x", sum)
}
