package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// parseIndexArgs expands CLI index arguments such as "3" or "5-10" into
// 1-based clip indexes.
func parseIndexArgs(args []string) ([]int, error) {
	indexes := make([]int, 0)
	for _, raw := range args {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if strings.Contains(token, "-") {
			parts := strings.SplitN(token, "-", 2)
			start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
			if err != nil {
				return nil, fmt.Errorf("invalid index %q: %w", parts[0], err)
			}
			end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err != nil {
				return nil, fmt.Errorf("invalid index %q: %w", parts[1], err)
			}
			if start <= 0 || end <= 0 {
				return nil, fmt.Errorf("index values must be greater than zero: %d-%d", start, end)
			}
			if end < start {
				return nil, fmt.Errorf("index range start greater than end: %d-%d", start, end)
			}
			for i := start; i <= end; i++ {
				indexes = append(indexes, i)
			}
			continue
		}
		val, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q: %w", token, err)
		}
		if val <= 0 {
			return nil, fmt.Errorf("index must be greater than zero: %d", val)
		}
		indexes = append(indexes, val)
	}
	return indexes, nil
}

// filterByIndexArgs keeps the clips whose index appears in args. An empty
// args list keeps everything; an index with no clip is an error.
func filterByIndexArgs(clips []compiledClip, args []string) ([]compiledClip, error) {
	if len(args) == 0 {
		return clips, nil
	}
	indexes, err := parseIndexArgs(args)
	if err != nil {
		return nil, err
	}
	filter := make(map[int]struct{}, len(indexes))
	for _, idx := range indexes {
		filter[idx] = struct{}{}
	}
	if len(filter) == 0 {
		return nil, fmt.Errorf("no indexes provided")
	}

	filtered := make([]compiledClip, 0, len(filter))
	for _, c := range clips {
		if _, ok := filter[c.Job.Index]; ok {
			filtered = append(filtered, c)
			delete(filter, c.Job.Index)
		}
	}
	if len(filter) > 0 {
		missing := make([]int, 0, len(filter))
		for idx := range filter {
			missing = append(missing, idx)
		}
		sort.Ints(missing)
		return nil, fmt.Errorf("indexes not found in guide: %v", missing)
	}
	return filtered, nil
}
