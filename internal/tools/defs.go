package tools

import (
	"maps"
	"runtime"
	"slices"
)

var toolDefinitions = map[string]ToolDefinition{
	"ffmpeg": {
		Name:           "ffmpeg",
		MinimumVersion: "6.0",
		Binaries: []BinarySpec{
			{ID: "ffmpeg", Executable: executableName("ffmpeg"), VersionSwitch: "-version"},
			{ID: "ffprobe", Executable: executableName("ffprobe"), VersionSwitch: "-version"},
		},
		Install: map[string][]string{
			"darwin":  {"brew install ffmpeg"},
			"linux":   {"install the ffmpeg package, e.g. sudo apt install ffmpeg"},
			"windows": {"winget install Gyan.FFmpeg", "choco install ffmpeg"},
			"":        {"install ffmpeg (which bundles ffprobe) and put it on PATH"},
		},
	},
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

// KnownTools returns the required tool names in sorted order.
func KnownTools() []string {
	return slices.Sorted(maps.Keys(toolDefinitions))
}

// Definition returns the tool definition for the provided name.
func Definition(name string) (ToolDefinition, bool) {
	def, ok := toolDefinitions[name]
	return def, ok
}
