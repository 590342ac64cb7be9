// Package script loads and runs user Lua scripts.
package script

import (
	"bytes"
	"sync"

	"github.com/vibe-audio/vibe/filesystem"
	libs "github.com/metafates/mangal-lua-libs"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

var bytecodeCache sync.Map

// NewState returns a Lua state with the standard library and the mangal
// modules (http, json, strings, regexp and friends) preloaded.
func NewState() *lua.LState {
	L := lua.NewState()
	libs.Preload(L)
	return L
}

// Load executes the script at path in L. Compiled prototypes are cached by path.
func Load(L *lua.LState, path string) error {
	if cached, ok := bytecodeCache.Load(path); ok {
		L.Push(L.NewFunctionFromProto(cached.(*lua.FunctionProto)))
		return L.PCall(0, lua.MultRet, nil)
	}

	proto, err := compile(path)
	if err != nil {
		return err
	}
	bytecodeCache.Store(path, proto)

	L.Push(L.NewFunctionFromProto(proto))
	return L.PCall(0, lua.MultRet, nil)
}

// Forget drops the cached prototype of path, e.g. after the file was replaced.
func Forget(path string) {
	bytecodeCache.Delete(path)
}

func compile(path string) (*lua.FunctionProto, error) {
	content, err := filesystem.API().ReadFile(path)
	if err != nil {
		return nil, err
	}

	chunk, err := parse.Parse(bytes.NewReader(content), path)
	if err != nil {
		return nil, err
	}

	return lua.Compile(chunk, path)
}
