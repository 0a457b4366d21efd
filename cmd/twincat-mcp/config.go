package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/plcops/twincat-mcp/internal/config"
)

type fileConfig struct {
	ArmTTL          string            `toml:"arm_ttl"`
	ConfirmPhrase   string            `toml:"confirm_phrase"`
	ExePaths        []string          `toml:"exe_paths"`
	Dangerous       []string          `toml:"dangerous"`
	ConfirmRequired []string          `toml:"confirm_required"`
	OpsAddr         string            `toml:"ops_addr"`
	CorsOrigins     []string          `toml:"cors_origins"`
	Timeouts        map[string]string `toml:"timeouts"`
}

// loadConfig overlays the TOML file onto the defaults. Only keys the
// file defines are applied.
func loadConfig(path string) (config.Config, error) {
	cfg := config.Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("arm_ttl") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ArmTTL))
		if err != nil {
			return config.Config{}, fmt.Errorf("parse arm_ttl: %w", err)
		}
		cfg.ArmTTL = d
	}

	if meta.IsDefined("confirm_phrase") {
		cfg.ConfirmPhrase = raw.ConfirmPhrase
	}

	if meta.IsDefined("exe_paths") {
		cfg.ExePaths = normalizeList(raw.ExePaths)
	}

	if meta.IsDefined("dangerous") {
		cfg.Dangerous = normalizeList(raw.Dangerous)
	}

	if meta.IsDefined("confirm_required") {
		cfg.ConfirmRequired = normalizeList(raw.ConfirmRequired)
	}

	if meta.IsDefined("ops_addr") {
		cfg.OpsAddr = strings.TrimSpace(raw.OpsAddr)
	}

	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = normalizeList(raw.CorsOrigins)
	}

	if meta.IsDefined("timeouts") {
		cfg.Timeouts = make(map[string]time.Duration, len(raw.Timeouts))
		for tool, rawDur := range raw.Timeouts {
			d, err := time.ParseDuration(strings.TrimSpace(rawDur))
			if err != nil {
				return config.Config{}, fmt.Errorf("parse timeouts.%s: %w", tool, err)
			}
			cfg.Timeouts[tool] = d
		}
	}

	return cfg, nil
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
