package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding the pricing rules.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	// Helpers first, then rules that may use them
	for _, sub := range []string{"core", "rules"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
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

// CostContext is what calc_build_cost sees.
type CostContext struct {
	Kind         string
	Base         int // catalog cost
	Cells        int // footprint size
	BuildSeconds float64
}

// RefundContext is what calc_refund sees.
type RefundContext struct {
	Kind       string
	Paid       int
	Refundable bool
}

// CalcBuildCost calls the Lua calc_build_cost function. Without one, or on
// any script failure, the catalog cost stands.
func (e *Engine) CalcBuildCost(ctx CostContext) int {
	t := e.vm.NewTable()
	t.RawSetString("kind", lua.LString(ctx.Kind))
	t.RawSetString("base", lua.LNumber(ctx.Base))
	t.RawSetString("cells", lua.LNumber(ctx.Cells))
	t.RawSetString("build_seconds", lua.LNumber(ctx.BuildSeconds))

	return e.callInt("calc_build_cost", t, ctx.Base)
}

// CalcRefund calls the Lua calc_refund function. The fallback refunds what
// was paid for refundable kinds and nothing otherwise.
func (e *Engine) CalcRefund(ctx RefundContext) int {
	fallback := 0
	if ctx.Refundable {
		fallback = ctx.Paid
	}

	t := e.vm.NewTable()
	t.RawSetString("kind", lua.LString(ctx.Kind))
	t.RawSetString("paid", lua.LNumber(ctx.Paid))
	t.RawSetString("refundable", lua.LBool(ctx.Refundable))

	return e.callInt("calc_refund", t, fallback)
}

// Has reports whether the scripts define a global function name.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

func (e *Engine) callInt(name string, arg *lua.LTable, fallback int) int {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return fallback
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		e.log.Error("lua "+name+" error", zap.Error(err))
		return fallback
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua "+name+" returned non-number", zap.String("type", result.Type().String()))
		return fallback
	}
	if n < 0 {
		return 0
	}
	return int(n)
}

func (e *Engine) Close() {
	e.vm.Close()
}
