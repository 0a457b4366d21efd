package tcauto

import "encoding/json"

// Diagnostic is one compiler error or warning.
type Diagnostic struct {
	FileName    string `json:"fileName"`
	Line        int    `json:"line"`
	Description string `json:"description"`
}

// BuildReport is the payload of a build or deploy run.
type BuildReport struct {
	Success  bool         `json:"success"`
	Summary  string       `json:"summary"`
	Errors   []Diagnostic `json:"errors"`
	Warnings []Diagnostic `json:"warnings"`
}

// PlcProject is one PLC project inside a solution.
type PlcProject struct {
	Name    string `json:"name"`
	AmsPort int    `json:"amsPort"`
}

// ProjectInfo is the payload of an info run.
type ProjectInfo struct {
	SolutionPath        string       `json:"solutionPath"`
	TcVersion           string       `json:"tcVersion"`
	TcVersionPinned     bool         `json:"tcVersionPinned"`
	VisualStudioVersion string       `json:"visualStudioVersion"`
	TargetPlatform      string       `json:"targetPlatform"`
	PlcProjects         []PlcProject `json:"plcProjects"`
}

// VariableValue is the payload of a variable read or write.
type VariableValue struct {
	Path  string `json:"path"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

// decodePayload re-marshals the generic payload map into a typed
// struct. Unknown fields are dropped, missing ones zeroed.
func decodePayload(payload map[string]any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
