package tcauto

import (
	"errors"
	"reflect"
	"testing"

	"github.com/plcops/twincat-mcp/internal/testutil/testlog"
)

func TestArgBuilders(t *testing.T) {
	tests := []struct {
		name    string
		builder ArgBuilder
		args    map[string]any
		want    []string
	}{
		{
			name:    "build defaults to clean",
			builder: BuildArgs,
			args:    map[string]any{"solutionPath": `C:\plc\Machine.sln`},
			want:    []string{"build", "--solution", `C:\plc\Machine.sln`, "--clean"},
		},
		{
			name:    "build without clean, pinned version",
			builder: BuildArgs,
			args:    map[string]any{"solutionPath": `C:\plc\Machine.sln`, "clean": false, "tcVersion": "3.1.4026.17"},
			want:    []string{"build", "--solution", `C:\plc\Machine.sln`, "--tcversion", "3.1.4026.17"},
		},
		{
			name:    "info",
			builder: InfoArgs,
			args:    map[string]any{"solutionPath": `C:\plc\Machine.sln`},
			want:    []string{"info", "--solution", `C:\plc\Machine.sln`},
		},
		{
			name:    "read variable with json-decoded port",
			builder: ReadVariableArgs,
			args:    map[string]any{"variablePath": "MAIN.counter", "amsPort": float64(851)},
			want:    []string{"readvar", "--path", "MAIN.counter", "--port", "851"},
		},
		{
			name:    "write variable with type",
			builder: WriteVariableArgs,
			args:    map[string]any{"variablePath": "MAIN.setpoint", "value": "42.5", "valueType": "LREAL"},
			want:    []string{"writevar", "--path", "MAIN.setpoint", "--value", "42.5", "--type", "LREAL"},
		},
		{
			name:    "set runtime mode",
			builder: SetRuntimeModeArgs,
			args:    map[string]any{"mode": "config"},
			want:    []string{"setmode", "--mode", "config"},
		},
		{
			name:    "restart without port",
			builder: RestartRuntimeArgs,
			args:    map[string]any{},
			want:    []string{"restart"},
		},
		{
			name:    "activate config",
			builder: ActivateConfigArgs,
			args:    map[string]any{"solutionPath": `C:\plc\Machine.sln`},
			want:    []string{"activate", "--solution", `C:\plc\Machine.sln`},
		},
		{
			name:    "deploy with target",
			builder: DeployArgs,
			args:    map[string]any{"solutionPath": `C:\plc\Machine.sln`, "targetNetId": "192.168.1.20.1.1"},
			want:    []string{"deploy", "--solution", `C:\plc\Machine.sln`, "--target", "192.168.1.20.1.1", "--clean"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			testlog.Start(t)
			got, err := tc.builder(tc.args)
			if err != nil {
				t.Fatalf("builder: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("argv mismatch:\n got %v\nwant %v", got, tc.want)
			}
		})
	}
}

func TestArgBuildersRejectMissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		builder ArgBuilder
		args    map[string]any
	}{
		{name: "build missing solution", builder: BuildArgs, args: map[string]any{}},
		{name: "info missing solution", builder: InfoArgs, args: map[string]any{"solutionPath": ""}},
		{name: "read missing path", builder: ReadVariableArgs, args: map[string]any{}},
		{name: "write missing value", builder: WriteVariableArgs, args: map[string]any{"variablePath": "MAIN.x"}},
		{name: "setmode missing mode", builder: SetRuntimeModeArgs, args: map[string]any{}},
		{name: "deploy missing solution", builder: DeployArgs, args: map[string]any{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			testlog.Start(t)
			if _, err := tc.builder(tc.args); !errors.Is(err, ErrMissingArgument) {
				t.Fatalf("expected ErrMissingArgument, got %v", err)
			}
		})
	}
}

func TestSetRuntimeModeRejectsUnknownMode(t *testing.T) {
	testlog.Start(t)

	if _, err := SetRuntimeModeArgs(map[string]any{"mode": "turbo"}); err == nil {
		t.Fatalf("expected rejection of unknown mode")
	}
}
