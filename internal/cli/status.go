package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/render"
	"clipforge/internal/render/state"
	"clipforge/internal/tui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show compiled clips and whether each needs rendering",
		RunE:  runStatus,
	}
	return cmd
}

type statusRow struct {
	Index    int     `json:"index"`
	Trigger  string  `json:"trigger"`
	Start    string  `json:"start"`
	Duration float64 `json:"duration_s"`
	Layout   string  `json:"layout"`
	Action   string  `json:"action"`
	Reason   string  `json:"reason"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	pp, cfg, err := loadProject()
	if err != nil {
		return err
	}

	prober := newProber()
	built, err := buildProjectClips(cmd.Context(), pp, cfg, prober)
	if err != nil {
		return err
	}
	compiled, err := compileBuilt(cmd.Context(), cfg, built, prober, cfg.Render.Concurrency)
	if err != nil {
		return err
	}

	rs, err := state.Load(pp.StateFile)
	if err != nil {
		return err
	}

	svc := &render.Service{Paths: pp, Config: cfg}
	var jobs []render.Job
	rows := make([]statusRow, len(compiled))
	for i, c := range compiled {
		rows[i] = statusRow{
			Index:    c.Job.Index,
			Trigger:  c.Job.Trigger,
			Start:    formatDuration(secondsToDuration(built.Clips[i].Start)),
			Duration: built.Clips[i].Spec.Duration,
		}
		if c.Err != nil {
			rows[i].Action = "error"
			rows[i].Reason = oneLine(c.Err.Error())
			continue
		}
		rows[i].Layout = c.Job.Plan.Layout.Name.String()
		job := c.Job
		job.OutputPath, _ = svc.ClipPaths(job)
		jobs = append(jobs, job)
	}

	actions := state.DetectChanges(rs, jobs, cfg, false)
	byIndex := make(map[int]state.ClipAction, len(actions))
	for _, a := range actions {
		byIndex[a.Job.Index] = a
	}
	for i := range rows {
		if a, ok := byIndex[rows[i].Index]; ok {
			rows[i].Action = a.Action
			rows[i].Reason = a.Reason
		}
	}

	if outputJSON {
		return writeStatusJSON(cmd, pp.Root, rows, warningStrings(built.Warnings))
	}
	writeStatusTable(cmd, pp.Root, rows, warningStrings(built.Warnings))
	return nil
}

func writeStatusTable(cmd *cobra.Command, projectName string, rows []statusRow, warnings []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "Project: %s\n", projectName)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tTRIGGER\tSTART\tDURATION\tLAYOUT\tACTION\tREASON")
	for _, row := range rows {
		fmt.Fprintf(w, "%03d\t%s\t%s\t%.2f\t%s\t%s\t%s\n",
			row.Index,
			row.Trigger,
			row.Start,
			row.Duration,
			tui.NonEmptyOrDash(row.Layout),
			row.Action,
			row.Reason,
		)
	}
	w.Flush()

	if len(warnings) > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warnings:")
		for _, warning := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", warning)
		}
	}
}

func writeStatusJSON(cmd *cobra.Command, projectName string, rows []statusRow, warnings []string) error {
	payload := struct {
		Project  string      `json:"project"`
		Clips    []statusRow `json:"clips"`
		Warnings []string    `json:"warnings,omitempty"`
	}{
		Project:  projectName,
		Clips:    rows,
		Warnings: warnings,
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode status json: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Round(time.Millisecond)
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	totalSeconds := int64(d / time.Second)
	nanos := int64(d % time.Second)

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	var base string
	if hours > 0 {
		base = fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	} else {
		base = fmt.Sprintf("%d:%02d", minutes, seconds)
	}

	if nanos > 0 {
		frac := fmt.Sprintf(".%09d", nanos)
		frac = strings.TrimRight(frac, "0")
		base += frac
	}

	return base
}
