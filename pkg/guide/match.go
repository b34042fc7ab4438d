package guide

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases text and strips diacritics so that "Café" and
// "cafe" compare equal.
func Normalize(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		out = text
	}
	return strings.TrimSpace(strings.ToLower(out))
}

// MatchTrigger reports whether trigger occurs in text. Multi-word triggers
// match as substrings; single words must sit on word boundaries.
func MatchTrigger(trigger, text string) bool {
	t := Normalize(trigger)
	if t == "" {
		return false
	}
	s := Normalize(text)
	if strings.Contains(t, " ") {
		return strings.Contains(s, t)
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(t) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// FindTiming returns the first timing entry whose text contains trigger.
func FindTiming(trigger string, timing []TimingEntry) (TimingEntry, bool) {
	for _, entry := range timing {
		if MatchTrigger(trigger, entry.Text()) {
			return entry, true
		}
	}
	return nil, false
}
