package tcauto

import (
	"fmt"
	"strings"
	"time"

	"github.com/plcops/twincat-mcp/internal/supervisor"
)

// Renderer turns an execution result into the text handed back to the
// calling agent.
type Renderer func(res *supervisor.Result) string

const (
	maxRawTextChars     = 4000
	maxProgressTailSize = 20
)

func RenderBuild(res *supervisor.Result) string {
	if res.Failed() {
		return renderFailure("Build", res)
	}

	var report BuildReport
	if err := decodePayload(res.Payload, &report); err != nil {
		return renderFailure("Build", res)
	}

	var sb strings.Builder
	if res.Success {
		summary := report.Summary
		if summary == "" {
			summary = "Build succeeded"
		}
		sb.WriteString("✅ " + summary + "\n")
	} else {
		sb.WriteString("❌ Build failed\n")
		if msg := res.ErrorMessage(); msg != "" {
			sb.WriteString("\nError: " + msg + "\n")
		}
		writeDiagnostics(&sb, "🔴 Errors", report.Errors)
	}
	writeDiagnostics(&sb, "⚠️ Warnings", report.Warnings)
	return sb.String()
}

func RenderInfo(res *supervisor.Result) string {
	if res.Failed() {
		return renderFailure("Info query", res)
	}
	if !res.Success {
		return "❌ Error: " + res.ErrorMessage()
	}

	var info ProjectInfo
	if err := decodePayload(res.Payload, &info); err != nil {
		return renderFailure("Info query", res)
	}

	var sb strings.Builder
	sb.WriteString("📋 TwinCAT Project Info\n")
	sb.WriteString("Solution: " + orUnknown(info.SolutionPath) + "\n")
	sb.WriteString("TwinCAT Version: " + orUnknown(info.TcVersion))
	if info.TcVersionPinned {
		sb.WriteString(" (pinned)")
	}
	sb.WriteString("\n")
	sb.WriteString("Visual Studio Version: " + orUnknown(info.VisualStudioVersion) + "\n")
	sb.WriteString("Target Platform: " + orUnknown(info.TargetPlatform) + "\n")
	sb.WriteString("\nPLC Projects:\n")
	if len(info.PlcProjects) == 0 {
		sb.WriteString("  (none found)\n")
	}
	for _, plc := range info.PlcProjects {
		sb.WriteString(fmt.Sprintf("  - %s (AMS Port: %d)\n", orUnknown(plc.Name), plc.AmsPort))
	}
	return sb.String()
}

func RenderVariable(res *supervisor.Result) string {
	if res.Failed() {
		return renderFailure("Variable access", res)
	}
	if !res.Success {
		return "❌ Error: " + res.ErrorMessage()
	}

	var v VariableValue
	if err := decodePayload(res.Payload, &v); err != nil {
		return renderFailure("Variable access", res)
	}
	if v.Type != "" {
		return fmt.Sprintf("✅ %s = %s (%s)", v.Path, v.Value, v.Type)
	}
	return fmt.Sprintf("✅ %s = %s", v.Path, v.Value)
}

// RenderAck covers tools whose payload is just an acknowledgement:
// mode changes, restarts, config activation, deploys without a build
// report.
func RenderAck(operation string) Renderer {
	return func(res *supervisor.Result) string {
		if res.Failed() {
			return renderFailure(operation, res)
		}
		if !res.Success {
			return fmt.Sprintf("❌ %s failed: %s", operation, res.ErrorMessage())
		}
		if summary, ok := res.Payload["summary"].(string); ok && summary != "" {
			return "✅ " + summary
		}
		return fmt.Sprintf("✅ %s completed in %s", operation, roundElapsed(res.Elapsed))
	}
}

func renderFailure(operation string, res *supervisor.Result) string {
	var sb strings.Builder
	switch res.Kind {
	case supervisor.KindExecutableNotFound:
		sb.WriteString("❌ " + operation + " failed: " + res.Message)
	case supervisor.KindTimeout:
		sb.WriteString(fmt.Sprintf("⏱️ %s timed out after %s.\n", operation, roundElapsed(res.Elapsed)))
		writeProgressTail(&sb, res)
		sb.WriteString("Retry, or extend the tool's timeout budget if the operation legitimately needs longer.")
	case supervisor.KindUnparsableOutput:
		sb.WriteString("❌ " + operation + " produced output the gateway could not parse.\n")
		if res.RawText != "" {
			sb.WriteString("\nRaw output:\n" + truncate(res.RawText, maxRawTextChars) + "\n")
		} else {
			sb.WriteString("\n" + res.Message + "\n")
		}
		writeProgressTail(&sb, res)
	default:
		sb.WriteString("❌ " + operation + " could not start: " + res.Message)
	}
	return sb.String()
}

func writeDiagnostics(sb *strings.Builder, heading string, diags []Diagnostic) {
	if len(diags) == 0 {
		return
	}
	sb.WriteString("\n" + heading + ":\n")
	for _, d := range diags {
		sb.WriteString(fmt.Sprintf("  - %s:%d: %s\n", d.FileName, d.Line, d.Description))
	}
}

func writeProgressTail(sb *strings.Builder, res *supervisor.Result) {
	if len(res.Progress) == 0 {
		return
	}
	tail := res.Progress
	if len(tail) > maxProgressTailSize {
		tail = tail[len(tail)-maxProgressTailSize:]
	}
	sb.WriteString(fmt.Sprintf("\nLast progress (%d of %d lines):\n", len(tail), len(res.Progress)))
	for _, line := range tail {
		sb.WriteString("  " + line.Text + "\n")
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "… (truncated)"
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func roundElapsed(d time.Duration) time.Duration {
	if d >= time.Second {
		return d.Round(time.Second)
	}
	return d.Round(time.Millisecond)
}
