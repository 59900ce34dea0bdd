package game

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/grokyworld/server/internal/config"
	"github.com/grokyworld/server/internal/core/event"
	"github.com/grokyworld/server/internal/core/sched"
	coresys "github.com/grokyworld/server/internal/core/system"
	"github.com/grokyworld/server/internal/data"
	"github.com/grokyworld/server/internal/handler"
	"github.com/grokyworld/server/internal/scripting"
	"github.com/grokyworld/server/internal/system"
	"github.com/grokyworld/server/internal/world"
	"go.uber.org/zap"
)

// Options configures a Game.
type Options struct {
	Config    *config.Config
	Catalog   *data.Catalog
	Seeds     []data.LevelSeed
	Log       *zap.Logger
	Scripting *scripting.Engine  // nil: built from Config.Data.ScriptsDir
	Journal   system.JournalSink // nil: journal entries are only logged
	Start     time.Time          // simulated start time; zero means time.Now()
}

// Game is one running world: state, systems and the intent queue feeding
// them. Everything but Submit and Snapshot belongs to the loop goroutine.
type Game struct {
	cfg *config.Config
	log *zap.Logger

	World        *world.State
	Catalog      *data.Catalog
	Clock        *sched.Clock
	Queue        *sched.Queue
	Bus          *event.Bus
	Deps         *handler.Deps
	Runner       *coresys.Runner
	Registry     *handler.Registry
	Respawn      *system.RespawnScheduler
	Waves        *system.WaveController
	Reaper       *system.Reaper
	Interactions *system.InteractionSystem
	AI           *system.NpcAISystem
	Sweeper      *system.SweepSystem
	Output       *system.OutputSystem

	intents chan handler.Intent
	ownsLua bool
	scripts *scripting.Engine
}

// New builds the world from seeds, spawns initial hostiles and first waves,
// and places the player at the start point.
func New(opts Options) (*Game, error) {
	cfg, cat, log := opts.Config, opts.Catalog, opts.Log
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cat == nil {
		return nil, fmt.Errorf("game: catalog is required")
	}
	start := opts.Start
	if start.IsZero() {
		start = time.Now()
	}

	g := &Game{
		cfg:     cfg,
		log:     log,
		Catalog: cat,
		Clock:   sched.NewClock(start),
		Bus:     event.NewBus(),
		intents: make(chan handler.Intent, cfg.Gateway.InQueueSize),
	}
	g.Queue = sched.NewQueue(g.Clock)

	g.scripts = opts.Scripting
	if g.scripts == nil {
		eng, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
		if err != nil {
			return nil, fmt.Errorf("scripting: %w", err)
		}
		g.scripts, g.ownsLua = eng, true
	}

	pdef := cat.Tiles.Player()
	g.World = world.NewState(world.Options{
		RestrictedTerrain: cat.Tiles.RestrictedTerrain(),
		PlayerMarker:      pdef.Marker,
		MaxHealth:         pdef.MaxHealth,
	})

	g.Deps = &handler.Deps{
		Config:    cfg,
		Log:       log,
		World:     g.World,
		Catalog:   cat,
		Queue:     g.Queue,
		Bus:       g.Bus,
		Scripting: g.scripts,
	}
	g.Respawn = system.NewRespawnScheduler(g.Deps)
	g.Waves = system.NewWaveController(g.Deps, g.Respawn)
	g.Reaper = system.NewReaper(g.Deps, g.Respawn, g.Waves)
	g.Interactions = system.NewInteractionSystem(g.Deps, g.Respawn)
	g.Deps.Interactions = g.Interactions

	g.Registry = handler.NewRegistry(log)
	handler.RegisterAll(g.Registry, g.Deps)

	notices := system.NewNoticeBoard(g.Bus, g.Clock, cfg.Simulation.NoticeTTL)
	g.AI = system.NewNpcAISystem(g.Deps)
	g.Sweeper = system.NewSweepSystem(g.World, cfg.Simulation.SweepInterval, log)
	g.Output = system.NewOutputSystem(g.Deps, g.Interactions, notices)

	g.Runner = coresys.NewRunner()
	g.Runner.BeforeTick(g.Clock.Advance)
	g.Runner.Register(system.NewInputSystem(g.intents, g.Registry, g.World, cfg.Simulation.MaxIntentsPerTick, log))
	g.Runner.Register(system.NewEventDispatchSystem(g.Bus))
	g.Runner.Register(system.NewTimerSystem(g.Queue, log))
	g.Runner.Register(g.AI)
	g.Runner.Register(system.NewCombatSystem(g.Deps, g.Reaper))
	g.Runner.Register(system.NewRegenSystem(g.Deps))
	g.Runner.Register(g.Sweeper)
	g.Runner.Register(g.Output)
	g.Runner.Register(system.NewPersistenceSystem(g.Deps, opts.Journal))

	cat.Prepare(opts.Seeds)
	for _, seed := range opts.Seeds {
		if err := g.addLevel(seed); err != nil {
			g.Close()
			return nil, err
		}
	}
	for _, id := range g.World.LevelIDs() {
		g.Waves.Start(id)
	}

	startPos := world.FromPoint(pdef.StartPos)
	if !handler.ChangeLevel(g.Deps, pdef.StartLevel, startPos) {
		g.Close()
		return nil, fmt.Errorf("game: cannot place player on level %d at %s", pdef.StartLevel, startPos)
	}
	g.Queue.RunDue()
	return g, nil
}

// addLevel creates a level from a seed. Hostile types become live
// entities; every other object is a decoration.
func (g *Game) addLevel(seed data.LevelSeed) error {
	init := world.LevelInit{
		ID:             seed.ID,
		Name:           seed.Name,
		Grid:           seed.Grid,
		Decor:          make(map[world.Pos]string),
		OriginalSpawns: make(map[world.Pos]string, len(seed.Objects)),
	}
	var hostiles []world.Pos
	for pt, typ := range seed.Objects {
		p := world.FromPoint(pt)
		init.OriginalSpawns[p] = typ
		if g.Catalog.Hostiles.Get(typ) != nil {
			hostiles = append(hostiles, p)
			continue
		}
		init.Decor[p] = typ
	}
	if len(seed.Waves) > 0 {
		init.Waves = make(map[int]map[world.Pos]string, len(seed.Waves))
		for idx, spawns := range seed.Waves {
			m := make(map[world.Pos]string, len(spawns))
			for pt, typ := range spawns {
				m[world.FromPoint(pt)] = typ
			}
			init.Waves[idx] = m
		}
	}
	if _, err := g.World.AddLevel(init); err != nil {
		return fmt.Errorf("add level %d: %w", seed.ID, err)
	}

	sort.Slice(hostiles, func(i, j int) bool {
		if hostiles[i].Y == hostiles[j].Y {
			return hostiles[i].X < hostiles[j].X
		}
		return hostiles[i].Y < hostiles[j].Y
	})
	for _, p := range hostiles {
		typ := init.OriginalSpawns[p]
		def := g.Catalog.Hostiles.Get(typ)
		if _, err := g.World.SpawnEntity(seed.ID, p, world.EntityInfo{Type: typ, Origin: p}, def.Health); err != nil {
			g.log.Warn("initial spawn failed", zap.Int("level", seed.ID), zap.String("type", typ), zap.Error(err))
		}
	}
	g.log.Debug("level loaded",
		zap.Int("level", seed.ID),
		zap.String("name", seed.Name),
		zap.Int("objects", len(seed.Objects)),
		zap.Int("hostiles", len(hostiles)),
		zap.Int("waves", len(seed.Waves)),
	)
	return nil
}

// Tick advances the world by one tick of simulated time.
func (g *Game) Tick() {
	g.Runner.Tick(g.cfg.Simulation.TickRate)
}

// Advance runs as many ticks as fit in d.
func (g *Game) Advance(d time.Duration) {
	for n := d / g.cfg.Simulation.TickRate; n > 0; n-- {
		g.Tick()
	}
}

// Submit queues an intent for the next ticks. It never blocks; false means
// the queue is full. Safe from any goroutine.
func (g *Game) Submit(in handler.Intent) bool {
	select {
	case g.intents <- in:
		return true
	default:
		return false
	}
}

// Snapshot returns the latest published snapshot, or nil before the first
// tick. Safe from any goroutine.
func (g *Game) Snapshot() *world.Snapshot { return g.Output.Latest() }

// Run ticks on a wall-clock ticker until ctx is done.
func (g *Game) Run(ctx context.Context) {
	ticker := time.NewTicker(g.cfg.Simulation.TickRate)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			g.Tick()
		case <-ctx.Done():
			return
		}
	}
}

// Close releases the Lua VM if the game created it.
func (g *Game) Close() {
	if g.ownsLua && g.scripts != nil {
		g.scripts.Close()
		g.scripts = nil
	}
}
