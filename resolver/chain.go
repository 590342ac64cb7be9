package resolver

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/vibe-audio/vibe/constant"
	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/internal/script"
	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/util"
	lua "github.com/yuin/gopher-lua"
)

// ScriptTimeout bounds a single call into a user script.
var ScriptTimeout = 3 * time.Second

// Script is a loaded user resolver.
type Script struct {
	Name string

	mu    sync.Mutex
	state *lua.LState
}

// LoadScript runs the file at path and checks it defines the resolve function.
func LoadScript(path string) (*Script, error) {
	L := script.NewState()
	if err := script.Load(L, path); err != nil {
		L.Close()
		return nil, err
	}

	name := util.FileStem(path)
	if L.GetGlobal(constant.ResolveFn).Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("function %s is required but not defined in %s", constant.ResolveFn, name)
	}

	return &Script{Name: name, state: L}, nil
}

// Call invokes the script. ok is false when the script errors, times out or
// returns anything but a non-empty string.
func (s *Script) Call(raw string) (result string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), ScriptTimeout)
	defer cancel()
	s.state.SetContext(ctx)
	defer s.state.RemoveContext()

	err := s.state.CallByParam(lua.P{
		Fn:      s.state.GetGlobal(constant.ResolveFn),
		NRet:    1,
		Protect: true,
	}, lua.LString(raw))
	if err != nil {
		log.Warnf("resolver %s failed on %s: %s", s.Name, raw, err)
		return "", false
	}

	ret := s.state.Get(-1)
	s.state.Pop(1)

	str, isString := ret.(lua.LString)
	if !isString || str == "" {
		return "", false
	}
	return string(str), true
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Close()
}

// Chain consults user scripts in name order before the builtin rules.
type Chain struct {
	Scripts []*Script
}

// LoadDir loads every *.lua file in dir. Scripts that fail to load are logged and skipped.
func LoadDir(dir string) (*Chain, error) {
	entries, err := filesystem.API().ReadDir(dir)
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	chain := &Chain{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}

		s, err := LoadScript(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Warnf("skipping resolver %s: %s", entry.Name(), err)
			continue
		}
		chain.Scripts = append(chain.Scripts, s)
	}

	return chain, nil
}

// Resolve returns the first script result passed through the builtin rules,
// or the builtin resolution of raw when no script claims it.
func (c *Chain) Resolve(raw string) string {
	if c != nil {
		for _, s := range c.Scripts {
			if out, ok := s.Call(raw); ok {
				log.Debugf("resolver %s rewrote %s", s.Name, raw)
				return Resolve(out)
			}
		}
	}

	return Resolve(raw)
}

// Close releases every script.
func (c *Chain) Close() {
	if c == nil {
		return
	}
	for _, s := range c.Scripts {
		s.Close()
	}
}
