package gate

import (
	"strings"
	"testing"

	"github.com/plcops/twincat-mcp/internal/testutil/testlog"
)

func TestConfirmerCheck(t *testing.T) {
	required := map[string]bool{
		"twincat_deploy":          true,
		"twincat_activate_config": true,
	}
	c := NewConfirmer("CONFIRM", required)

	tests := []struct {
		name    string
		tool    string
		token   string
		allowed bool
	}{
		{name: "exact phrase accepted", tool: "twincat_deploy", token: "CONFIRM", allowed: true},
		{name: "exact phrase accepted for activate", tool: "twincat_activate_config", token: "CONFIRM", allowed: true},
		{name: "lowercase rejected", tool: "twincat_deploy", token: "confirm", allowed: false},
		{name: "empty rejected", tool: "twincat_deploy", token: "", allowed: false},
		{name: "padded rejected", tool: "twincat_deploy", token: " CONFIRM", allowed: false},
		{name: "unlisted tool always allowed", tool: "twincat_build", token: "", allowed: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			testlog.Start(t)
			allowed, msg := c.Check(tc.tool, tc.token)
			if allowed != tc.allowed {
				t.Fatalf("expected allowed=%v, got %v (msg=%q)", tc.allowed, allowed, msg)
			}
			if !allowed && !strings.Contains(msg, `confirm="CONFIRM"`) {
				t.Fatalf("denial message must name the exact phrase, got %q", msg)
			}
		})
	}
}

func TestConfirmerRequires(t *testing.T) {
	testlog.Start(t)

	c := NewConfirmer("CONFIRM", map[string]bool{"twincat_deploy": true})
	if !c.Requires("twincat_deploy") {
		t.Fatalf("expected deploy to require confirmation")
	}
	if c.Requires("twincat_build") {
		t.Fatalf("build must not require confirmation")
	}
}
