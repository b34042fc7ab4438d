package state

import (
	"os"

	"clipforge/internal/config"
	"clipforge/internal/render"
)

const (
	ActionRender = "render"
	ActionSkip   = "skip"

	ReasonForced        = "forced"
	ReasonNew           = "new clip"
	ReasonConfigChanged = "config changed"
	ReasonInputChanged  = "input changed"
	ReasonOutputMissing = "output missing"
	ReasonUpToDate      = "up to date"
)

// ClipAction describes the action to take for a single clip.
type ClipAction struct {
	Job    render.Job
	Action string
	Reason string
}

// DetectChanges determines which clips need re-rendering by comparing current
// inputs against the stored render state. Jobs are keyed by OutputPath, which
// callers resolve before detection.
func DetectChanges(rs *RenderState, jobs []render.Job, cfg config.Config, force bool) []ClipAction {
	actions := make([]ClipAction, len(jobs))

	if force {
		for i, job := range jobs {
			actions[i] = ClipAction{Job: job, Action: ActionRender, Reason: ReasonForced}
		}
		return actions
	}

	if GlobalConfigHash(cfg) != rs.GlobalConfigHash {
		for i, job := range jobs {
			actions[i] = ClipAction{Job: job, Action: ActionRender, Reason: ReasonConfigChanged}
		}
		return actions
	}

	for i, job := range jobs {
		key := job.OutputPath
		prior, exists := rs.Clips[key]
		if !exists {
			actions[i] = ClipAction{Job: job, Action: ActionRender, Reason: ReasonNew}
			continue
		}

		if ClipInputHash(job) != prior.InputHash {
			actions[i] = ClipAction{Job: job, Action: ActionRender, Reason: ReasonInputChanged}
			continue
		}

		if _, err := os.Stat(key); os.IsNotExist(err) {
			actions[i] = ClipAction{Job: job, Action: ActionRender, Reason: ReasonOutputMissing}
			continue
		}

		actions[i] = ClipAction{Job: job, Action: ActionSkip, Reason: ReasonUpToDate}
	}

	return actions
}

// Prune removes entries from the render state that are not in the current
// set of clip keys.
func Prune(rs *RenderState, currentKeys map[string]bool) {
	for key := range rs.Clips {
		if !currentKeys[key] {
			delete(rs.Clips, key)
		}
	}
}
