package tools

import "runtime"

// Status captures the resolved state for an external tool.
type Status struct {
	Tool      string            `json:"tool"`
	Version   string            `json:"version,omitempty"`
	Minimum   string            `json:"minimum,omitempty"`
	Path      string            `json:"path,omitempty"`
	Paths     map[string]string `json:"paths,omitempty"`
	Satisfied bool              `json:"satisfied"`
	Error     string            `json:"error,omitempty"`
	Notes     []string          `json:"notes,omitempty"`
}

// BinarySpec describes an executable shipped with a tool.
type BinarySpec struct {
	ID            string
	Executable    string
	VersionSwitch string
}

// ToolDefinition contains the metadata required to locate a tool.
type ToolDefinition struct {
	Name           string
	MinimumVersion string
	Binaries       []BinarySpec
	// Install maps a GOOS value to setup instructions; "" is the fallback.
	Install map[string][]string
}

// InstallHints returns setup instructions for the current platform.
func (d ToolDefinition) InstallHints() []string {
	if hints, ok := d.Install[runtime.GOOS]; ok {
		return hints
	}
	return d.Install[""]
}
