package lua

import lua "github.com/yuin/gopher-lua"

// openSafeLibraries opens only side-effect free standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// unsafeGlobals can load or execute code from outside the script.
var unsafeGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"module",
}

// installSandbox removes the globals a grammar script must not reach.
func installSandbox(L *lua.LState) {
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	// Output from grammar scripts has nowhere useful to go.
	L.SetGlobal("print", L.NewFunction(func(*lua.LState) int { return 0 }))
}
