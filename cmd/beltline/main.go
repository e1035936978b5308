package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sugarsyndicate/beltline/internal/audio"
	"github.com/sugarsyndicate/beltline/internal/build"
	"github.com/sugarsyndicate/beltline/internal/config"
	"github.com/sugarsyndicate/beltline/internal/core/event"
	coresys "github.com/sugarsyndicate/beltline/internal/core/system"
	"github.com/sugarsyndicate/beltline/internal/data"
	"github.com/sugarsyndicate/beltline/internal/grid"
	"github.com/sugarsyndicate/beltline/internal/metrics"
	"github.com/sugarsyndicate/beltline/internal/scripting"
	"github.com/sugarsyndicate/beltline/internal/system"
	"github.com/sugarsyndicate/beltline/internal/term"
)

const maxInputPerTick = 64

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(backend string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             beltline  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        conveyor drag-build sandbox        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1meconomy:\033[0m %s\n\n", backend)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

// ── Main logic ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/beltline.toml"
	if p := os.Getenv("BELTLINE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Economy.Backend)

	// 3. Wallet
	printSection("economy")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	eco, err := openEconomy(ctx, cfg, log.Named("economy"))
	if err != nil {
		return fmt.Errorf("economy: %w", err)
	}
	defer eco.Close()
	printOK(fmt.Sprintf("%s wallet %q ready", cfg.Economy.Backend, cfg.Economy.Wallet))
	printStat("balance", int(eco.wallet.Balance()))
	fmt.Println()

	// 4. Catalog and pricing rules
	printSection("data")
	catalog, err := data.LoadCatalog(cfg.Data.Catalog)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	printStat("buildables", catalog.Count())

	var engine *scripting.Engine
	if cfg.Data.Scripts != "" {
		engine, err = scripting.NewEngine(cfg.Data.Scripts, log.Named("lua"))
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
		printOK(fmt.Sprintf("pricing rules from %s", filepath.Clean(cfg.Data.Scripts)))
	}
	pricing := scripting.NewPricing(catalog, engine, log.Named("pricing"))
	fmt.Println()

	// 5. Grid, bus and systems
	bus := event.NewBus()
	g := grid.NewMap(cfg.GridConfig())
	sim := system.NewSimulationSystem(g, cfg.Game.SuppressTicks, 10, log.Named("sim"))
	jobs := system.NewConstructionSystem(g, eco.wallet, sim, sim, bus, log.Named("jobs"))
	buildLog := log.Named("build")
	arbiter := build.NewArbiter(buildLog)
	deps := build.Deps{
		Grid:    g,
		Economy: eco.wallet,
		Sim:     sim,
		Graph:   sim,
		Jobs:    jobs,
		Pricing: pricing,
		Arbiter: arbiter,
		Hooks:   system.EventHooks(bus, eco.wallet),
	}
	placer := build.NewPlacer(deps, build.Options{
		Blueprints:      cfg.Build.Blueprints,
		RefundOnDelete:  cfg.Build.RefundOnDelete,
		DefaultRotation: cfg.Build.DefaultRotation,
		MaxCatchUp:      cfg.Build.MaxCatchUp,
	}, buildLog)
	junction := build.NewStampTool(grid.UnitJunction, deps, cfg.Build.Blueprints, buildLog)
	machine := build.NewStampTool(grid.UnitMachine, deps, cfg.Build.Blueprints, buildLog)
	arbiter.Register(placer)
	arbiter.Register(junction)
	arbiter.Register(machine)

	// 6. Observers
	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	if cfg.Metrics.Enabled {
		m := metrics.New()
		m.SetBalance(eco.wallet.Balance())
		m.Subscribe(bus)
		go func() {
			if err := m.Serve(runCtx, cfg.Metrics.BindAddress, log.Named("metrics")); err != nil {
				log.Error("metrics server", zap.Error(err))
			}
		}()
		printOK(fmt.Sprintf("metrics on http://%s/metrics", cfg.Metrics.BindAddress))
	}
	if cfg.Audio.Enabled {
		sp := audio.NewSpeaker()
		if err := sp.Init(); err != nil {
			log.Warn("audio disabled", zap.Error(err))
		} else {
			defer sp.Close()
			audio.NewCues(cfg.Audio, sp, log.Named("audio")).Subscribe(bus)
		}
	}

	// 7. Terminal
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	tui := term.New(screen, cfg.GridConfig(), log.Named("term"))
	defer tui.Close()

	inputCh := make(chan system.InputEvent, 256)
	go tui.Pump(inputCh)

	quitCh := make(chan struct{})
	quit := func() {
		select {
		case <-quitCh:
		default:
			close(quitCh)
		}
	}
	input := system.NewInputSystem(inputCh, placer, map[system.Action]*build.StampTool{
		system.ActionJunction: junction,
		system.ActionMachine:  machine,
	}, maxInputPerTick, quit, log.Named("input"))

	// 8. Register systems with runner
	runner := coresys.NewRunner()
	runner.Register(input)
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(jobs)
	runner.Register(sim)
	runner.Register(system.NewRenderSystem(g, placer, jobs, sim, input, eco.wallet, tui))
	if eco.persistence != nil {
		runner.Register(eco.persistence)
	}
	runner.Register(system.NewCleanupSystem(g))

	// 9. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Game.TickRate)
	defer ticker.Stop()

	log.Info("game loop started", zap.Duration("tick", cfg.Game.TickRate))
	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Game.TickRate)
		case <-quitCh:
			log.Info("quit requested")
			return shutdown(placer, eco, log)
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			return shutdown(placer, eco, log)
		}
	}
}

// shutdown tears down any open drag so its reservations go back to the
// wallet, then writes what the ledger has not seen yet.
func shutdown(placer *build.Placer, eco *economyBackend, log *zap.Logger) error {
	placer.Stop()
	if eco.persistence != nil {
		n := eco.persistence.Flush()
		log.Info("ledger flushed", zap.Int("entries", n))
	}
	log.Info("stopped", zap.Int64("balance", eco.wallet.Balance()))
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	}

	return zapCfg.Build()
}
