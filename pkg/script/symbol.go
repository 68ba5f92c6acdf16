package script

import (
	"fmt"

	"go.starlark.net/starlark"
)

// Symbol is an interned mapping key, the Starlark analogue of the symbolic
// keys custom fact code may use in place of plain strings. The hierarchical
// resolver falls back to symbolic keys when a plain key is absent.
type Symbol string

var _ starlark.Value = Symbol("")

func (s Symbol) String() string        { return ":" + string(s) }
func (s Symbol) Type() string          { return "symbol" }
func (s Symbol) Freeze()               {}
func (s Symbol) Truth() starlark.Bool  { return starlark.Bool(len(s) > 0) }
func (s Symbol) Hash() (uint32, error) { return starlark.String(s).Hash() }

// builtinSym implements the sym() predeclared function.
func builtinSym(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("sym: name must be non-empty")
	}
	return Symbol(name), nil
}
