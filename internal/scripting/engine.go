package scripting

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

//go:embed scripts/*.lua
var builtin embed.FS

// Engine wraps a single gopher-lua VM holding the game's formulas.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine loads the built-in scripts, then every .lua file in
// overrideDir (if set). Later definitions replace earlier globals.
func NewEngine(overrideDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadBuiltin(); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load builtin scripts: %w", err)
	}
	if overrideDir != "" {
		if err := e.loadDir(overrideDir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts from %s: %w", overrideDir, err)
		}
	}
	return e, nil
}

func (e *Engine) Close() { e.vm.Close() }

func (e *Engine) loadBuiltin() error {
	names, err := fs.Glob(builtin, "scripts/*.lua")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		src, err := builtin.ReadFile(name)
		if err != nil {
			return err
		}
		if err := e.vm.DoString(string(src)); err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", name))
	}
	return nil
}

// loadDir loads all .lua files in a directory, in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// PlayerAttackContext is the input to calc_player_damage.
type PlayerAttackContext struct {
	Weapon        string // "" = unarmed
	WeaponDamage  int
	UnarmedDamage int
	TargetType    string
}

// CalcPlayerDamage returns the damage one player swing deals to one target.
// Falls back to the weapon (or unarmed) damage if the script fails.
func (e *Engine) CalcPlayerDamage(ctx PlayerAttackContext) int {
	fallback := ctx.UnarmedDamage
	if ctx.Weapon != "" && ctx.WeaponDamage > 0 {
		fallback = ctx.WeaponDamage
	}
	t := e.vm.NewTable()
	t.RawSetString("weapon", lua.LString(ctx.Weapon))
	t.RawSetString("weapon_damage", lua.LNumber(ctx.WeaponDamage))
	t.RawSetString("unarmed_damage", lua.LNumber(ctx.UnarmedDamage))
	t.RawSetString("target_type", lua.LString(ctx.TargetType))
	return e.callIntFunc("calc_player_damage", t, fallback)
}

// HostileAttackContext is the input to calc_hostile_damage.
type HostileAttackContext struct {
	AttackerType string
	BaseDamage   int
	PlayerHealth int
}

// CalcHostileDamage returns the damage one hostile hit deals to the player.
func (e *Engine) CalcHostileDamage(ctx HostileAttackContext) int {
	t := e.vm.NewTable()
	t.RawSetString("attacker_type", lua.LString(ctx.AttackerType))
	t.RawSetString("base_damage", lua.LNumber(ctx.BaseDamage))
	t.RawSetString("player_health", lua.LNumber(ctx.PlayerHealth))
	return e.callIntFunc("calc_hostile_damage", t, ctx.BaseDamage)
}

// RegenContext is the input to calc_regen_amount.
type RegenContext struct {
	Health    int
	MaxHealth int
}

// CalcRegenAmount returns how much health one regen pulse restores.
func (e *Engine) CalcRegenAmount(ctx RegenContext) int {
	t := e.vm.NewTable()
	t.RawSetString("health", lua.LNumber(ctx.Health))
	t.RawSetString("max_health", lua.LNumber(ctx.MaxHealth))
	return e.callIntFunc("calc_regen_amount", t, 1)
}

// callIntFunc calls a global Lua function with one table argument and
// expects one number back. Any failure logs and returns fallback.
func (e *Engine) callIntFunc(name string, arg *lua.LTable, fallback int) int {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("func", name))
		return fallback
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		e.log.Error("lua call failed", zap.String("func", name), zap.Error(err))
		return fallback
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := ret.(lua.LNumber)
	if !ok {
		e.log.Error("lua function returned a non-number", zap.String("func", name), zap.String("type", ret.Type().String()))
		return fallback
	}
	if n < 0 {
		return 0
	}
	return int(n)
}
