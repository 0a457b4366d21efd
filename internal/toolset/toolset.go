// Package toolset is the single table driving dispatch: tool
// identifiers mapped to safety tags, timeouts, argument builders,
// schemas, and renderers. Loaded once at startup.
package toolset

import (
	"fmt"
	"sort"
	"time"

	"github.com/plcops/twincat-mcp/internal/config"
	"github.com/plcops/twincat-mcp/internal/tcauto"
)

// Canonical tool identifiers.
const (
	ToolGetInfo        = "twincat_get_info"
	ToolBuild          = "twincat_build"
	ToolReadVariable   = "twincat_read_variable"
	ToolWriteVariable  = "twincat_write_variable"
	ToolSetRuntimeMode = "twincat_set_runtime_mode"
	ToolRestartRuntime = "twincat_restart_runtime"
	ToolActivateConfig = "twincat_activate_config"
	ToolDeploy         = "twincat_deploy"

	ToolArm       = "twincat_arm"
	ToolDisarm    = "twincat_disarm"
	ToolArmStatus = "twincat_arm_status"
)

// ArgType constrains the MCP input schema for one argument.
type ArgType string

const (
	ArgString  ArgType = "string"
	ArgBoolean ArgType = "boolean"
	ArgNumber  ArgType = "number"
)

// ArgSpec describes one named argument of a tool.
type ArgSpec struct {
	Name        string
	Type        ArgType
	Required    bool
	Description string
	Default     any
}

// Spec is one row of the dispatch table.
type Spec struct {
	Name        string
	Description string
	Args        []ArgSpec

	// Safety classification, static for the process lifetime.
	Dangerous            bool
	RequiresConfirmation bool
	ContextDependent     bool
	// Meta tools mutate or read the gate itself. They are never gated
	// and never spawn a process.
	Meta bool

	// Timeout is the hard execution deadline for non-meta tools.
	Timeout time.Duration
	// Build translates named arguments into the executable's argv.
	Build tcauto.ArgBuilder
	// Render formats the execution result for the calling agent.
	Render tcauto.Renderer
}

// Set is the loaded, read-only dispatch table.
type Set struct {
	specs map[string]Spec
	order []string
}

// New builds the table, applying the configured safety sets and
// timeout overrides. Unknown tool names in the configuration are
// rejected rather than silently ignored.
func New(cfg config.Config) (*Set, error) {
	specs := builtinSpecs()

	apply := func(names []string, tag func(*Spec)) error {
		for _, name := range names {
			spec, ok := specs[name]
			if !ok {
				return fmt.Errorf("toolset: unknown tool %q in configuration", name)
			}
			tag(&spec)
			specs[name] = spec
		}
		return nil
	}

	// Reset classification, then apply the configured sets.
	for name, spec := range specs {
		if spec.Meta {
			continue
		}
		spec.Dangerous = false
		spec.RequiresConfirmation = false
		specs[name] = spec
	}
	if err := apply(cfg.Dangerous, func(s *Spec) { s.Dangerous = true }); err != nil {
		return nil, err
	}
	if err := apply(cfg.ConfirmRequired, func(s *Spec) { s.RequiresConfirmation = true }); err != nil {
		return nil, err
	}
	for name, d := range cfg.Timeouts {
		spec, ok := specs[name]
		if !ok {
			return nil, fmt.Errorf("toolset: timeout override for unknown tool %q", name)
		}
		spec.Timeout = d
		specs[name] = spec
	}
	for name, spec := range specs {
		if spec.Meta && spec.Dangerous {
			return nil, fmt.Errorf("toolset: meta tool %q must not be classified dangerous", name)
		}
	}

	order := make([]string, 0, len(specs))
	for name := range specs {
		order = append(order, name)
	}
	sort.Strings(order)

	return &Set{specs: specs, order: order}, nil
}

// Lookup returns the spec for a tool identifier.
func (s *Set) Lookup(name string) (Spec, bool) {
	spec, ok := s.specs[name]
	return spec, ok
}

// All returns every spec in stable name order.
func (s *Set) All() []Spec {
	out := make([]Spec, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.specs[name])
	}
	return out
}

// GatedBy reports whether the tool requires the armed window. Context-
// dependent tools are gated conservatively.
func (spec Spec) GatedBy() bool {
	return spec.Dangerous || spec.ContextDependent
}

func builtinSpecs() map[string]Spec {
	solutionArg := ArgSpec{
		Name: "solutionPath", Type: ArgString, Required: true,
		Description: "Full path to the TwinCAT .sln file",
	}
	portArg := ArgSpec{
		Name: "amsPort", Type: ArgNumber,
		Description: "AMS port of the PLC runtime (default: first project's port)",
	}
	confirmArg := ArgSpec{
		Name: "confirm", Type: ArgString,
		Description: "Confirmation phrase; must match the configured literal exactly",
	}

	specs := []Spec{
		{
			Name:        ToolGetInfo,
			Description: "Get information about a TwinCAT solution including version, PLC projects, and configuration.",
			Args:        []ArgSpec{solutionArg},
			Timeout:     time.Minute,
			Build:       tcauto.InfoArgs,
			Render:      tcauto.RenderInfo,
		},
		{
			Name:        ToolBuild,
			Description: "Build a TwinCAT solution and return any compile errors or warnings. Use this to validate TwinCAT/PLC code changes.",
			Args: []ArgSpec{
				solutionArg,
				{Name: "clean", Type: ArgBoolean, Description: "Clean solution before building", Default: true},
				{Name: "tcVersion", Type: ArgString, Description: "Force a specific TwinCAT version (e.g. '3.1.4026.17')"},
			},
			Timeout: 10 * time.Minute,
			Build:   tcauto.BuildArgs,
			Render:  tcauto.RenderBuild,
		},
		{
			Name:        ToolReadVariable,
			Description: "Read the current value of a PLC variable by its full path (e.g. 'MAIN.counter').",
			Args: []ArgSpec{
				{Name: "variablePath", Type: ArgString, Required: true, Description: "Full variable path, e.g. 'MAIN.counter'"},
				portArg,
			},
			Timeout: 30 * time.Second,
			Build:   tcauto.ReadVariableArgs,
			Render:  tcauto.RenderVariable,
		},
		{
			Name:        ToolWriteVariable,
			Description: "Write a value to a PLC variable on the live runtime. Requires armed mode.",
			Args: []ArgSpec{
				{Name: "variablePath", Type: ArgString, Required: true, Description: "Full variable path, e.g. 'MAIN.setpoint'"},
				{Name: "value", Type: ArgString, Required: true, Description: "Value to write, rendered as text"},
				{Name: "valueType", Type: ArgString, Description: "PLC type hint (e.g. 'INT', 'LREAL')"},
				portArg,
			},
			Dangerous: true,
			Timeout:   30 * time.Second,
			Build:     tcauto.WriteVariableArgs,
			Render:    tcauto.RenderVariable,
		},
		{
			Name:        ToolSetRuntimeMode,
			Description: "Switch the TwinCAT runtime between RUN and CONFIG mode. Requires armed mode.",
			Args: []ArgSpec{
				{Name: "mode", Type: ArgString, Required: true, Description: "'run' or 'config'"},
			},
			Dangerous:        true,
			ContextDependent: true,
			Timeout:          2 * time.Minute,
			Build:            tcauto.SetRuntimeModeArgs,
			Render:           tcauto.RenderAck("Set runtime mode"),
		},
		{
			Name:        ToolRestartRuntime,
			Description: "Restart the TwinCAT runtime. Interrupts the running PLC program. Requires armed mode.",
			Args:        []ArgSpec{portArg},
			Dangerous:   true,
			Timeout:     2 * time.Minute,
			Build:       tcauto.RestartRuntimeArgs,
			Render:      tcauto.RenderAck("Restart runtime"),
		},
		{
			Name:        ToolActivateConfig,
			Description: "Activate the solution's configuration on the target. Overwrites the running configuration. Requires armed mode and per-call confirmation.",
			Args:        []ArgSpec{solutionArg, confirmArg},
			Dangerous:   true, RequiresConfirmation: true,
			Timeout: 5 * time.Minute,
			Build:   tcauto.ActivateConfigArgs,
			Render:  tcauto.RenderAck("Activate configuration"),
		},
		{
			Name:        ToolDeploy,
			Description: "Build, activate, and restart the solution on the target in one workflow. The most destructive operation. Requires armed mode and per-call confirmation.",
			Args: []ArgSpec{
				solutionArg,
				{Name: "targetNetId", Type: ArgString, Description: "AMS NetId of the deployment target"},
				{Name: "clean", Type: ArgBoolean, Description: "Clean before building", Default: true},
				confirmArg,
			},
			Dangerous: true, RequiresConfirmation: true,
			Timeout: 30 * time.Minute,
			Build:   tcauto.DeployArgs,
			Render:  tcauto.RenderBuild,
		},

		{
			Name:        ToolArm,
			Description: "Open the time-boxed authorization window for dangerous TwinCAT operations. A reason is required.",
			Args: []ArgSpec{
				{Name: "reason", Type: ArgString, Required: true, Description: "Why dangerous operations are needed right now"},
			},
			Meta: true,
		},
		{
			Name:        ToolDisarm,
			Description: "Close the authorization window immediately.",
			Meta:        true,
		},
		{
			Name:        ToolArmStatus,
			Description: "Report whether the authorization window is open and how long it has left.",
			Meta:        true,
		},
	}

	out := make(map[string]Spec, len(specs))
	for _, spec := range specs {
		out[spec.Name] = spec
	}
	return out
}
