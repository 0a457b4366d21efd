package tcauto

import (
	"strings"
	"testing"
	"time"

	"github.com/plcops/twincat-mcp/internal/supervisor"
	"github.com/plcops/twincat-mcp/internal/testutil/testlog"
)

func TestRenderBuildSuccessWithWarnings(t *testing.T) {
	testlog.Start(t)

	res := &supervisor.Result{
		Success: true,
		Payload: map[string]any{
			"success": true,
			"summary": "Build succeeded: 0 errors, 1 warning",
			"warnings": []any{
				map[string]any{"fileName": "MAIN.TcPOU", "line": float64(12), "description": "unused variable"},
			},
		},
	}

	out := RenderBuild(res)
	if !strings.Contains(out, "✅ Build succeeded: 0 errors, 1 warning") {
		t.Fatalf("missing success summary: %q", out)
	}
	if !strings.Contains(out, "MAIN.TcPOU:12: unused variable") {
		t.Fatalf("missing warning detail: %q", out)
	}
}

func TestRenderBuildFailureListsErrors(t *testing.T) {
	testlog.Start(t)

	res := &supervisor.Result{
		Success: false,
		Payload: map[string]any{
			"success":      false,
			"errorMessage": "compile failed",
			"errors": []any{
				map[string]any{"fileName": "FB_Axis.TcPOU", "line": float64(88), "description": "identifier not defined"},
			},
		},
	}

	out := RenderBuild(res)
	for _, want := range []string{"❌ Build failed", "compile failed", "FB_Axis.TcPOU:88: identifier not defined"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestRenderInfo(t *testing.T) {
	testlog.Start(t)

	res := &supervisor.Result{
		Success: true,
		Payload: map[string]any{
			"solutionPath":        `C:\plc\Machine.sln`,
			"tcVersion":           "3.1.4026.17",
			"tcVersionPinned":     true,
			"visualStudioVersion": "17.9",
			"targetPlatform":      "TwinCAT RT (x64)",
			"plcProjects": []any{
				map[string]any{"name": "Machine", "amsPort": float64(851)},
			},
		},
	}

	out := RenderInfo(res)
	for _, want := range []string{
		"📋 TwinCAT Project Info",
		`Solution: C:\plc\Machine.sln`,
		"TwinCAT Version: 3.1.4026.17 (pinned)",
		"Machine (AMS Port: 851)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestRenderInfoEmptyProjects(t *testing.T) {
	testlog.Start(t)

	res := &supervisor.Result{Success: true, Payload: map[string]any{}}
	if out := RenderInfo(res); !strings.Contains(out, "(none found)") {
		t.Fatalf("expected empty-project marker, got %q", out)
	}
}

func TestRenderVariable(t *testing.T) {
	testlog.Start(t)

	res := &supervisor.Result{
		Success: true,
		Payload: map[string]any{"path": "MAIN.counter", "value": "42", "type": "INT"},
	}
	if out := RenderVariable(res); out != "✅ MAIN.counter = 42 (INT)" {
		t.Fatalf("unexpected render: %q", out)
	}
}

func TestRenderTimeoutIncludesProgressTail(t *testing.T) {
	testlog.Start(t)

	res := &supervisor.Result{
		Kind:    supervisor.KindTimeout,
		Elapsed: 120 * time.Second,
		Progress: []supervisor.ProgressLine{
			{Text: "Compiling PLC project", Narrated: true},
			{Text: "Linking", Narrated: true},
		},
		Message: "killed after exceeding the 2m0s deadline",
	}

	out := RenderBuild(res)
	for _, want := range []string{"timed out after 2m0s", "Compiling PLC project", "Linking", "Retry"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestRenderUnparsableOutputSurfacesRawText(t *testing.T) {
	testlog.Start(t)

	res := &supervisor.Result{
		Kind:    supervisor.KindUnparsableOutput,
		RawText: "Unhandled exception: System.NullReferenceException",
	}
	out := RenderAck("Restart runtime")(res)
	if !strings.Contains(out, "Unhandled exception") {
		t.Fatalf("raw text must surface: %q", out)
	}
}

func TestRenderExecutableNotFoundHasNoRetryAdvice(t *testing.T) {
	testlog.Start(t)

	res := &supervisor.Result{
		Kind:    supervisor.KindExecutableNotFound,
		Message: "tcauto: TcAutomation.exe not found; searched paths:\n  - C:\\x",
	}
	out := RenderBuild(res)
	if !strings.Contains(out, "TcAutomation.exe not found") {
		t.Fatalf("missing dependency report: %q", out)
	}
	if strings.Contains(out, "Retry") {
		t.Fatalf("not-found failure must not advise retrying: %q", out)
	}
}
