package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const maxBaseNameLen = 150

var (
	// $$ or $NAME, where NAME may contain underscores between word parts so
	// that "$INDEX_$TRIGGER" splits at the trailing underscore.
	templateToken = regexp.MustCompile(`\$\$|\$([A-Za-z0-9]+(?:_[A-Za-z0-9]+)*)`)
	unsafeRun     = regexp.MustCompile(`[^A-Za-z0-9.-]+`)
)

// ClipBaseName renders the clip filename template for job, without extension.
// Tokens are $NAME style; $$ is a literal dollar sign and unknown tokens
// expand to nothing.
func ClipBaseName(template string, job Job) string {
	template = strings.TrimSpace(template)
	if template == "" {
		return fallbackClipBase(job)
	}
	if base := sanitizeName(expandClipTemplate(template, clipTemplateValues(job))); base != "" {
		return base
	}
	return fallbackClipBase(job)
}

func fallbackClipBase(job Job) string {
	if name := safeFileSlug(job.Trigger); name != "" {
		return fmt.Sprintf("%03d_%s", job.Index, name)
	}
	return fmt.Sprintf("clip_%03d", job.Index)
}

func clipTemplateValues(job Job) map[string]string {
	values := map[string]string{
		"INDEX_RAW":    strconv.Itoa(job.Index),
		"TRIGGER":      sanitizeName(job.Trigger),
		"SAFE_TRIGGER": safeFileSlug(job.Trigger),
		"LAYOUT":       job.Plan.Layout.Name.String(),
		"DURATION":     sanitizeName(formatFloat(job.Plan.Duration)),
	}
	for width := 2; width <= 4; width++ {
		values[fmt.Sprintf("INDEX_PAD%d", width)] = fmt.Sprintf("%0*d", width, job.Index)
	}
	values["INDEX"] = values["INDEX_PAD3"]
	return values
}

func expandClipTemplate(template string, values map[string]string) string {
	return templateToken.ReplaceAllStringFunc(template, func(tok string) string {
		if tok == "$$" {
			return "$"
		}
		return values[tok[1:]]
	})
}

// sanitizeName keeps letters, digits, dots and dashes, folding every other
// run of characters into a single underscore.
func sanitizeName(value string) string {
	result := unsafeRun.ReplaceAllString(strings.TrimSpace(value), "_")
	result = strings.Trim(result, "_.-")
	if len(result) > maxBaseNameLen {
		result = result[:maxBaseNameLen]
	}
	return result
}
