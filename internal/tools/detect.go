package tools

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// Detect returns the status of each required tool found on PATH.
func Detect(ctx context.Context) ([]Status, error) {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	var statuses []Status
	for _, name := range KnownTools() {
		def, _ := Definition(name)
		statuses = append(statuses, detectOne(ctx, def))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Tool < statuses[j].Tool })
	return statuses, nil
}

func detectOne(ctx context.Context, def ToolDefinition) Status {
	status := Status{Tool: def.Name, Minimum: def.MinimumVersion, Paths: map[string]string{}}

	systemPaths, err := locateSystem(def)
	if err != nil {
		status.Error = err.Error()
		status.Notes = def.InstallHints()
		return status
	}
	status.Paths = systemPaths
	status.Path = systemPaths[def.Binaries[0].ID]

	version, err := readVersion(ctx, def, systemPaths)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Version = version
	status.Satisfied = meetsMinimum(version, def.MinimumVersion)
	if !status.Satisfied {
		status.Error = fmt.Sprintf("version %s below minimum %s", version, def.MinimumVersion)
		status.Notes = def.InstallHints()
	}
	return status
}

func locateSystem(def ToolDefinition) (map[string]string, error) {
	paths := map[string]string{}
	for _, bin := range def.Binaries {
		path, err := exec.LookPath(bin.Executable)
		if err != nil {
			return nil, fmt.Errorf("%s not found in PATH", bin.Executable)
		}
		paths[bin.ID] = path
	}
	return paths, nil
}

// Ensure returns the status of toolName, or an error carrying install hints
// when it is missing or too old.
func Ensure(ctx context.Context, toolName string) (Status, error) {
	def, ok := Definition(toolName)
	if !ok {
		return Status{}, fmt.Errorf("unknown tool: %s", toolName)
	}
	status := detectOne(ctx, def)
	if status.Satisfied {
		return status, nil
	}
	msg := status.Error
	if len(status.Notes) > 0 {
		msg += "; " + strings.Join(status.Notes, "; ")
	}
	return status, errors.New(msg)
}

// Lookup returns the path of one binary, e.g. "ffprobe", without checking its
// version.
func Lookup(binaryID string) (string, error) {
	for _, name := range KnownTools() {
		def, _ := Definition(name)
		for _, bin := range def.Binaries {
			if bin.ID != binaryID {
				continue
			}
			path, err := exec.LookPath(bin.Executable)
			if err != nil {
				return "", fmt.Errorf("%s not found in PATH", bin.Executable)
			}
			return path, nil
		}
	}
	return "", fmt.Errorf("unknown binary: %s", binaryID)
}
