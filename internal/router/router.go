// Package router sequences the safety guards and the supervised
// execution for one tool call. Stateless; all state lives in the gate.
package router

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/plcops/twincat-mcp/internal/gate"
	"github.com/plcops/twincat-mcp/internal/observability"
	"github.com/plcops/twincat-mcp/internal/supervisor"
	"github.com/plcops/twincat-mcp/internal/tcauto"
	"github.com/plcops/twincat-mcp/internal/toolset"
)

// DenialKind classifies guard denials.
type DenialKind string

const (
	DenialAuthorization DenialKind = "authorization_denied"
	DenialConfirmation  DenialKind = "confirmation_missing"
	DenialUnknownTool   DenialKind = "unknown_tool"
	DenialBadArguments  DenialKind = "bad_arguments"
)

// Dispatch is the outcome of one tool call. Exactly one is produced
// per call; failures are carried here, never raised.
type Dispatch struct {
	Tool          string
	CorrelationID string
	// Text is the rendered, user-facing response.
	Text   string
	Denied bool
	Kind   DenialKind
	// Exec is the supervised-execution result, nil for meta tools and
	// denials.
	Exec *supervisor.Result
}

// Router evaluates guards, translates arguments, and supervises the
// external process for each tool call.
type Router struct {
	tools     *toolset.Set
	gate      *gate.Gate
	confirmer *gate.Confirmer
	locator   *tcauto.Locator
	runner    supervisor.Runner
}

func New(tools *toolset.Set, g *gate.Gate, c *gate.Confirmer, l *tcauto.Locator, runner supervisor.Runner) *Router {
	return &Router{tools: tools, gate: g, confirmer: c, locator: l, runner: runner}
}

// Dispatch runs one tool call start to finish. Guard order is fixed:
// authorization, then confirmation, short-circuiting on the first
// denial. The gate lock is released before any process is spawned.
func (r *Router) Dispatch(ctx context.Context, tool string, args map[string]any) Dispatch {
	cid := uuid.NewString()
	logger := log.With().Str("tool", tool).Str("correlation_id", cid).Logger()

	spec, ok := r.tools.Lookup(tool)
	if !ok {
		observability.RecordToolInvocation(tool, "unknown_tool")
		return Dispatch{
			Tool: tool, CorrelationID: cid,
			Denied: true, Kind: DenialUnknownTool,
			Text: fmt.Sprintf("Unknown tool: %s", tool),
		}
	}

	if spec.Meta {
		return r.dispatchMeta(cid, spec, args)
	}

	if spec.GatedBy() && !r.gate.Armed() {
		logger.Warn().Msg("denied: gate disarmed")
		observability.RecordGuardDenial(tool, "authorization")
		observability.RecordToolInvocation(tool, "denied")
		return Dispatch{
			Tool: tool, CorrelationID: cid,
			Denied: true, Kind: DenialAuthorization,
			Text: fmt.Sprintf(
				"🔒 %s is a dangerous operation and the authorization gate is disarmed. "+
					"Call twincat_arm with a reason first; the window stays open for %s.",
				tool, r.gate.TTL(),
			),
		}
	}

	if allowed, msg := r.confirmer.Check(tool, stringArg(args, "confirm")); !allowed {
		logger.Warn().Msg("denied: confirmation missing")
		observability.RecordGuardDenial(tool, "confirmation")
		observability.RecordToolInvocation(tool, "denied")
		return Dispatch{
			Tool: tool, CorrelationID: cid,
			Denied: true, Kind: DenialConfirmation,
			Text: "🔒 " + msg,
		}
	}

	argv, err := spec.Build(args)
	if err != nil {
		observability.RecordToolInvocation(tool, "bad_arguments")
		return Dispatch{
			Tool: tool, CorrelationID: cid,
			Denied: true, Kind: DenialBadArguments,
			Text: fmt.Sprintf("❌ Invalid arguments: %v", err),
		}
	}

	exe, err := r.locator.Find()
	if err != nil {
		// No process object exists; report through the same taxonomy
		// the supervisor uses.
		res := &supervisor.Result{Kind: supervisor.KindExecutableNotFound, Message: err.Error()}
		observability.RecordToolInvocation(tool, string(res.Kind))
		return Dispatch{Tool: tool, CorrelationID: cid, Text: spec.Render(res), Exec: res}
	}

	logger.Info().Strs("argv", argv).Dur("timeout", spec.Timeout).Msg("dispatching")
	res := r.runner.Run(ctx, supervisor.Invocation{
		Command: exe,
		Args:    argv,
		Dir:     filepath.Dir(exe),
		Timeout: spec.Timeout,
	})

	outcome := outcomeLabel(res)
	observability.RecordToolInvocation(tool, outcome)
	observability.RecordProcessDuration(tool, outcome, res.Elapsed)
	logger.Info().Str("outcome", outcome).Dur("elapsed", res.Elapsed).Msg("dispatch complete")

	return Dispatch{Tool: tool, CorrelationID: cid, Text: spec.Render(res), Exec: res}
}

func (r *Router) dispatchMeta(cid string, spec toolset.Spec, args map[string]any) Dispatch {
	out := Dispatch{Tool: spec.Name, CorrelationID: cid}
	switch spec.Name {
	case toolset.ToolArm:
		reason := strings.TrimSpace(stringArg(args, "reason"))
		if err := r.gate.Arm(reason); err != nil {
			out.Denied = true
			out.Kind = DenialBadArguments
			out.Text = "❌ Arming requires a non-empty reason describing why dangerous operations are needed."
			return out
		}
		observability.RecordArmTransition("arm")
		observability.RecordToolInvocation(spec.Name, "success")
		out.Text = fmt.Sprintf("🔓 Armed for %s. Reason: %s. The window closes automatically.", r.gate.TTL(), reason)
	case toolset.ToolDisarm:
		r.gate.Disarm()
		observability.RecordArmTransition("disarm")
		observability.RecordToolInvocation(spec.Name, "success")
		out.Text = "🔒 Disarmed. Dangerous operations are blocked again."
	case toolset.ToolArmStatus:
		observability.RecordToolInvocation(spec.Name, "success")
		st := r.gate.Snapshot()
		if st.Armed {
			out.Text = fmt.Sprintf("🔓 Armed, %s remaining. Reason: %s.", st.Remaining.Round(time.Second), st.Reason)
		} else {
			out.Text = "🔒 Disarmed."
		}
	}
	return out
}

func outcomeLabel(res *supervisor.Result) string {
	if res.Failed() {
		return string(res.Kind)
	}
	if res.Success {
		return "success"
	}
	return "tool_failure"
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}
