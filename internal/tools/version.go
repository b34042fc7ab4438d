package tools

import (
	"bufio"
	"bytes"
	"cmp"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"time"
)

const versionTimeout = 5 * time.Second

var (
	dottedRelease = regexp.MustCompile(`[0-9]+(?:\.[0-9]+){0,2}`)
	digitRun      = regexp.MustCompile(`[0-9]+`)
)

// readVersion runs the tool's main binary with its version switch and
// returns the dotted release from the first line of output.
func readVersion(ctx context.Context, def ToolDefinition, paths map[string]string) (string, error) {
	if len(def.Binaries) == 0 {
		return "", fmt.Errorf("tool %s has no binary definition", def.Name)
	}
	bin := def.Binaries[0]
	path, ok := paths[bin.ID]
	if !ok {
		return "", fmt.Errorf("main binary %s missing", bin.ID)
	}

	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, bin.VersionSwitch).Output()
	if err != nil {
		return "", fmt.Errorf("%s version: %w", def.Name, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	line := ""
	if scanner.Scan() {
		line = scanner.Text()
	}
	return normalizeFFmpegVersion(line), nil
}

// normalizeFFmpegVersion extracts the dotted release from a banner such as
// "ffmpeg version 6.1.1-3ubuntu5 Copyright ...". Banners without digits are
// returned unchanged.
func normalizeFFmpegVersion(line string) string {
	if match := dottedRelease.FindString(line); match != "" {
		return match
	}
	return line
}

// meetsMinimum compares the numeric components of two versions, treating
// missing trailing components as zero. An empty minimum always passes.
func meetsMinimum(version, minimum string) bool {
	switch {
	case minimum == "":
		return true
	case version == "":
		return false
	}
	have, want := versionParts(version), versionParts(minimum)
	for i := range max(len(have), len(want)) {
		if c := cmp.Compare(partAt(have, i), partAt(want, i)); c != 0 {
			return c > 0
		}
	}
	return true
}

func versionParts(version string) []int {
	var parts []int
	for _, digits := range digitRun.FindAllString(version, -1) {
		n, err := strconv.Atoi(digits)
		if err != nil {
			n = 0
		}
		parts = append(parts, n)
	}
	return parts
}

func partAt(parts []int, i int) int {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}
