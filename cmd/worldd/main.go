package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/grokyworld/server/internal/config"
	"github.com/grokyworld/server/internal/data"
	"github.com/grokyworld/server/internal/game"
	gonet "github.com/grokyworld/server/internal/net"
	"github.com/grokyworld/server/internal/persist"
	"github.com/grokyworld/server/internal/scripting"
	"github.com/grokyworld/server/internal/system"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              worldd  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        tile world simulation server       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mWorld:\033[0m %s\n\n", serverName)
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

func printWarn(msg string) {
	fmt.Printf("  \033[33m!\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("WORLDD_CONFIG"); p != "" {
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

	printBanner(cfg.Server.Name)

	// 3. Static tables
	printSection("Data")
	cat, err := loadCatalog(cfg.Data)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	printStat("Hostile types", cat.Hostiles.Count())
	printStat("Weapons", cat.Weapons.Count())
	printStat("NPC dialogues", cat.Npcs.Count())
	printStat("Shops", cat.Shops.Count())
	printStat("Quests", cat.Quests.Count())
	printStat("Levels in index", cat.Levels.Count())
	fmt.Println()

	// 4. Optional PostgreSQL
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		db       *persist.DB
		sources  []data.LevelSource
		journal  *persist.Journal
		sessions gonet.SessionStore
	)
	if cfg.Database.Enabled {
		printSection("Database")
		db, err = persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		if v, err := persist.SchemaVersion(ctx, db.Pool); err == nil {
			printOK(fmt.Sprintf("Migrations applied (schema v%d)", v))
		}
		sources = append(sources, persist.NewLevelRepo(db, cat))
		journal = persist.NewJournal(persist.NewJournalRepo(db), 256, time.Second, log)
		sessions = persist.NewSessionRepo(db)
		fmt.Println()
	}
	sources = append(sources, data.DirSource{Dir: cfg.Data.MapsDir, Catalog: cat})

	// 5. Levels
	printSection("World")
	seeds, report := data.ResolveLevels(ctx, cat, sources...)
	for _, e := range report.Errors {
		log.Warn("level source failed", zap.Error(e))
	}
	printOK(fmt.Sprintf("Levels loaded from %s", report.Source))
	printStat("Levels", len(seeds))
	if len(report.Fallback) > 0 {
		printWarn(fmt.Sprintf("Generated flat levels for ids %v", report.Fallback))
	}

	// 6. Scripting
	lua, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer lua.Close()
	printOK("Lua formulas loaded")

	// 7. Game
	opts := game.Options{
		Config:    cfg,
		Catalog:   cat,
		Seeds:     seeds,
		Log:       log,
		Scripting: lua,
	}
	if journal != nil {
		opts.Journal = journal
	}
	g, err := game.New(opts)
	if err != nil {
		return fmt.Errorf("game: %w", err)
	}
	defer g.Close()
	printStat("Live hostiles", g.World.Registry().Len())
	fmt.Println()

	journalCtx, stopJournal := context.WithCancel(context.Background())
	if journal != nil {
		go journal.Run(journalCtx)
	}

	// 8. Gateway
	var gw *gonet.Gateway
	if cfg.Gateway.Enabled {
		gw = gonet.NewGateway(cfg.Gateway, g, sessions, log)
		g.Output.AddPublisher(gw)
		go func() {
			if err := gw.ListenAndServe(); err != nil {
				log.Error("gateway stopped", zap.Error(err))
			}
		}()
	}

	// 9. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	loopCtx, stopLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		g.Run(loopCtx)
	}()

	printSection("Ready")
	if gw != nil {
		printReady(fmt.Sprintf("Gateway on ws://%s%s", cfg.Gateway.BindAddress, cfg.Gateway.Path))
	}
	printReady(fmt.Sprintf("Game loop running (tick: %s)", cfg.Simulation.TickRate))
	fmt.Println()

	sig := <-shutdownCh
	log.Info("shutdown signal received", zap.String("signal", sig.String()))

	if gw != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		if err := gw.Shutdown(shutdownCtx); err != nil {
			log.Warn("gateway shutdown", zap.Error(err))
		}
		cancelShutdown()
	}
	stopLoop()
	<-loopDone
	stopJournal()
	if journal != nil {
		journal.Wait()
	}
	log.Info("server stopped")
	return nil
}

func loadCatalog(cfg config.DataConfig) (*data.Catalog, error) {
	if cfg.CatalogPath == "" {
		return data.DefaultCatalog()
	}
	return data.LoadCatalogDir(cfg.CatalogPath)
}

// compile-time check that the gateway can observe the loop
var _ system.Publisher = (*gonet.Gateway)(nil)

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
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
