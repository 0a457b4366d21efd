package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/plcops/twincat-mcp/internal/config"
	"github.com/plcops/twincat-mcp/internal/gate"
	"github.com/plcops/twincat-mcp/internal/logging"
	"github.com/plcops/twincat-mcp/internal/mcpserver"
	"github.com/plcops/twincat-mcp/internal/opsserver"
	"github.com/plcops/twincat-mcp/internal/router"
	"github.com/plcops/twincat-mcp/internal/supervisor"
	"github.com/plcops/twincat-mcp/internal/tcauto"
	"github.com/plcops/twincat-mcp/internal/toolset"
)

const version = "0.2.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "twincat-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to TOML configuration file")
	opsAddr := flag.String("ops-addr", "", "override the ops HTTP listener address")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return nil
	}

	logging.ConfigureRuntime()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *opsAddr != "" {
		cfg.OpsAddr = *opsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	tools, err := toolset.New(cfg)
	if err != nil {
		return err
	}

	g := gate.New(cfg.ArmTTL, nil)
	confirmer := gate.NewConfirmer(cfg.ConfirmPhrase, cfg.ConfirmRequiredSet())
	locator := tcauto.NewLocator(cfg.ExePaths)
	disp := router.New(tools, g, confirmer, locator, supervisor.New())

	log.Info().
		Str("version", version).
		Dur("arm_ttl", cfg.ArmTTL).
		Strs("dangerous", cfg.SortedDangerous()).
		Strs("exe_candidates", locator.Candidates()).
		Msg("gateway starting")

	if cfg.OpsAddr != "" {
		ops := opsserver.New(cfg.OpsAddr, cfg.CorsOrigins, g, version)
		ops.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = ops.Shutdown(ctx)
		}()
	}

	return mcpserver.New(disp, tools, version).ServeStdio()
}
