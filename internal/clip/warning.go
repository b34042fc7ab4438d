package clip

import "fmt"

// WarningKind classifies non-fatal findings.
type WarningKind int

const (
	// KindConfiguration covers unknown names, image count mismatches and
	// ignored options.
	KindConfiguration WarningKind = iota
	// KindValidation covers malformed keyframe input.
	KindValidation
)

func (k WarningKind) String() string {
	if k == KindValidation {
		return "validation"
	}
	return "configuration"
}

// Warning is a continuable finding returned alongside a successful result.
type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// Configf builds a configuration warning.
func Configf(format string, args ...any) Warning {
	return Warning{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// Validationf builds a validation warning.
func Validationf(format string, args ...any) Warning {
	return Warning{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}
