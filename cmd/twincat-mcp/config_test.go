package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/plcops/twincat-mcp/internal/config"
	"github.com/plcops/twincat-mcp/internal/testutil/testlog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "twincat-mcp.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigOverlaysDefinedKeysOnly(t *testing.T) {
	testlog.Start(t)

	path := writeConfig(t, `
arm_ttl = "2m"
ops_addr = "127.0.0.1:9464"
exe_paths = ["C:\\TcAutomation\\TcAutomation.exe", "  "]

[timeouts]
twincat_build = "15m"
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ArmTTL != 2*time.Minute {
		t.Fatalf("arm_ttl not applied: %s", cfg.ArmTTL)
	}
	if cfg.OpsAddr != "127.0.0.1:9464" {
		t.Fatalf("ops_addr not applied: %q", cfg.OpsAddr)
	}
	if want := []string{`C:\TcAutomation\TcAutomation.exe`}; !reflect.DeepEqual(cfg.ExePaths, want) {
		t.Fatalf("exe_paths not normalized: %v", cfg.ExePaths)
	}
	if cfg.Timeouts["twincat_build"] != 15*time.Minute {
		t.Fatalf("timeout override not applied: %v", cfg.Timeouts)
	}

	// Undefined keys keep their defaults.
	def := config.Default()
	if cfg.ConfirmPhrase != def.ConfirmPhrase {
		t.Fatalf("confirm phrase changed unexpectedly: %q", cfg.ConfirmPhrase)
	}
	if !reflect.DeepEqual(cfg.Dangerous, def.Dangerous) {
		t.Fatalf("dangerous set changed unexpectedly: %v", cfg.Dangerous)
	}
}

func TestLoadConfigRejectsBadDurations(t *testing.T) {
	testlog.Start(t)

	for _, body := range []string{
		`arm_ttl = "five minutes"`,
		"[timeouts]\ntwincat_build = \"soon\"\n",
	} {
		if _, err := loadConfig(writeConfig(t, body)); err == nil {
			t.Fatalf("expected parse error for %q", body)
		}
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	testlog.Start(t)

	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadedConfigValidates(t *testing.T) {
	testlog.Start(t)

	path := writeConfig(t, `
dangerous = ["twincat_deploy"]
confirm_required = ["twincat_deploy"]
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
