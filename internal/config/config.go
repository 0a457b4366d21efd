package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Config is the startup configuration for the gateway. Loaded once,
// never mutated afterwards.
type Config struct {
	// ArmTTL is the authorization window for dangerous tools.
	ArmTTL time.Duration
	// ConfirmPhrase is the exact literal required by confirmation-gated
	// tools. Compared case-sensitive and untrimmed.
	ConfirmPhrase string
	// ExePaths are candidate locations for TcAutomation.exe, probed in
	// order. An empty list falls back to the built-in probe order.
	ExePaths []string
	// Dangerous lists tools that require the gate to be armed.
	Dangerous []string
	// ConfirmRequired lists tools that additionally require the
	// confirmation phrase. Must be a subset of Dangerous.
	ConfirmRequired []string
	// Timeouts overrides the per-tool execution deadline.
	Timeouts map[string]time.Duration
	// OpsAddr enables the ops HTTP listener when non-empty.
	OpsAddr string
	// CorsOrigins for the ops listener.
	CorsOrigins []string
}

const (
	DefaultArmTTL        = 5 * time.Minute
	DefaultConfirmPhrase = "CONFIRM"
)

func Default() Config {
	return Config{
		ArmTTL:        DefaultArmTTL,
		ConfirmPhrase: DefaultConfirmPhrase,
		Dangerous: []string{
			"twincat_write_variable",
			"twincat_set_runtime_mode",
			"twincat_restart_runtime",
			"twincat_activate_config",
			"twincat_deploy",
		},
		ConfirmRequired: []string{
			"twincat_activate_config",
			"twincat_deploy",
		},
	}
}

func (c Config) Validate() error {
	if c.ArmTTL <= 0 {
		return fmt.Errorf("config: arm ttl must be positive, got %s", c.ArmTTL)
	}
	if c.ConfirmPhrase == "" {
		return fmt.Errorf("config: confirm phrase must not be empty")
	}
	dangerous := make(map[string]bool, len(c.Dangerous))
	for _, tool := range c.Dangerous {
		if strings.TrimSpace(tool) == "" {
			return fmt.Errorf("config: dangerous list contains a blank tool name")
		}
		dangerous[tool] = true
	}
	for _, tool := range c.ConfirmRequired {
		if !dangerous[tool] {
			return fmt.Errorf("config: confirmation-required tool %q is not in the dangerous set", tool)
		}
	}
	for tool, d := range c.Timeouts {
		if d <= 0 {
			return fmt.Errorf("config: timeout for %q must be positive, got %s", tool, d)
		}
	}
	return nil
}

// DangerousSet returns the dangerous tools as a lookup map.
func (c Config) DangerousSet() map[string]bool {
	out := make(map[string]bool, len(c.Dangerous))
	for _, tool := range c.Dangerous {
		out[tool] = true
	}
	return out
}

// ConfirmRequiredSet returns the confirmation-required tools as a lookup map.
func (c Config) ConfirmRequiredSet() map[string]bool {
	out := make(map[string]bool, len(c.ConfirmRequired))
	for _, tool := range c.ConfirmRequired {
		out[tool] = true
	}
	return out
}

// SortedDangerous returns the dangerous tool names in stable order,
// for logging and status output.
func (c Config) SortedDangerous() []string {
	out := append([]string(nil), c.Dangerous...)
	sort.Strings(out)
	return out
}
