package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"clipforge/internal/tools"
	"clipforge/internal/tui"
)

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect external tools",
	}

	cmd.AddCommand(newToolsListCmd())

	return cmd
}

func newToolsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resolved tool statuses",
		RunE:  runToolsList,
	}
	return cmd
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	statuses, err := tools.Detect(cmd.Context())
	if err != nil {
		return err
	}

	if outputJSON {
		data, err := json.MarshalIndent(statuses, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printStatusTable(cmd, statuses)
	return nil
}

func printStatusTable(cmd *cobra.Command, statuses []tools.Status) {
	if len(statuses) == 0 {
		cmd.Println("(no tool statuses)")
		return
	}

	sorted := make([]tools.Status, len(statuses))
	copy(sorted, statuses)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Tool < sorted[j].Tool
	})

	rows := make([][]string, 0, len(sorted))
	for _, st := range sorted {
		ok := "no"
		if st.Satisfied {
			ok = "yes"
		}
		path := st.Path
		if path == "" {
			path = "(missing)"
		}
		rows = append(rows, []string{st.Tool, tui.NonEmptyOrDash(st.Version), tui.NonEmptyOrDash(st.Minimum), ok, path})
	}
	cmd.Println(renderTable([]string{"Tool", "Version", "Minimum", "OK", "Path"}, rows, nil))

	for _, st := range sorted {
		if st.Error != "" {
			cmd.Printf("%s: %s\n", st.Tool, st.Error)
		}
		for _, note := range st.Notes {
			cmd.Printf("%s: %s\n", st.Tool, strings.TrimSpace(note))
		}
	}
}
