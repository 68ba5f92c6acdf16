package script

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/openfacts/openfacts/pkg/facts"
)

// customFact is one registered resolution for a fact name. A name may carry
// several resolutions; the highest-weight one whose confines match wins.
type customFact struct {
	name    string
	value   starlark.Value
	fn      starlark.Callable
	weight  int
	confine map[string]string
	order   int
}

// module binds the predeclared custom-fact API to a collection for one
// load/resolve cycle.
type module struct {
	rt         *Runtime
	collection *facts.Collection

	registered   map[string][]*customFact
	externalDirs []string
	order        int
	ctx          context.Context

	predeclared starlark.StringDict
}

func newModule(r *Runtime, c *facts.Collection) *module {
	m := &module{
		rt:           r,
		collection:   c,
		registered:   make(map[string][]*customFact),
		externalDirs: append([]string(nil), r.externalDirs...),
		ctx:          context.Background(),
	}
	m.predeclared = starlark.StringDict{
		"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
		"sym":    starlark.NewBuiltin("sym", builtinSym),
		"facts": &starlarkstruct.Module{
			Name: "facts",
			Members: starlark.StringDict{
				"add":             starlark.NewBuiltin("facts.add", m.builtinAdd),
				"value":           starlark.NewBuiltin("facts.value", m.builtinValue),
				"reset":           starlark.NewBuiltin("facts.reset", m.builtinReset),
				"search_external": starlark.NewBuiltin("facts.search_external", m.builtinSearchExternal),
			},
		},
	}
	r.predeclared = m.predeclared
	return m
}

// builtinAdd implements facts.add(name, value=..., fn=..., weight=0,
// confine={}). Either a static value or a resolution callable must be given.
func (m *module) builtinAdd(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var value starlark.Value = starlark.None
	var fn starlark.Callable
	var weight int
	var confine *starlark.Dict
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"name", &name, "value?", &value, "fn?", &fn, "weight?", &weight, "confine?", &confine); err != nil {
		return nil, err
	}

	fact := &customFact{
		name:   name,
		value:  value,
		fn:     fn,
		weight: weight,
		order:  m.order,
	}
	m.order++

	if confine != nil {
		fact.confine = make(map[string]string, confine.Len())
		for _, item := range confine.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				continue
			}
			fact.confine[string(key)] = confineText(item[1])
		}
	}

	m.registered[name] = append(m.registered[name], fact)
	return starlark.None, nil
}

// builtinValue implements facts.value(name): it resolves a fact from the
// shared collection and hands it to the script.
func (m *module) builtinValue(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	v := m.collection.Resolve(m.ctx, name)
	if v == nil {
		return starlark.None, nil
	}
	return toStarlark(v.Data())
}

// builtinReset implements facts.reset, discarding registrations made so
// far. The framework bootstrap uses it to start from a clean slate.
func (m *module) builtinReset(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs("facts.reset", args, kwargs); err != nil {
		return nil, err
	}
	m.registered = make(map[string][]*customFact)
	// Reset returns external discovery to the host-configured scope.
	m.externalDirs = append([]string(nil), m.rt.externalDirs...)
	return starlark.None, nil
}

// builtinSearchExternal implements facts.search_external(dirs), rescoping
// external fact discovery to the given directories.
func (m *module) builtinSearchExternal(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var dirs *starlark.List
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "dirs", &dirs); err != nil {
		return nil, err
	}
	for i := 0; i < dirs.Len(); i++ {
		if dir, ok := dirs.Index(i).(starlark.String); ok && dir != "" {
			m.externalDirs = append(m.externalDirs, string(dir))
		}
	}
	return starlark.None, nil
}

// search loads every *.star fact definition found in the given directories,
// in order. Missing directories and broken files degrade to log entries.
func (m *module) search(dirs []string) {
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Debug().Str("dir", dir).Err(err).Msg("Skipping custom fact directory")
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".star") {
				continue
			}
			m.loadFile(filepath.Join(dir, entry.Name()))
		}
	}
}

func (m *module) loadFile(path string) {
	log.Debug().Str("path", path).Msg("Loading custom fact file")
	thread := m.rt.newThread(path)
	if _, err := starlark.ExecFile(thread, path, nil, m.predeclared); err != nil {
		m.rt.logScriptError(err, "Failed to load custom fact file")
	}
}

// resolveFacts resolves every registered custom fact into the collection.
// Candidates for a name are tried by descending weight (registration order
// breaks ties); the first whose confines match and that yields a value
// wins. A name with no viable candidate simply stays unresolved.
func (m *module) resolveFacts(ctx context.Context) {
	m.ctx = ctx

	names := make([]string, 0, len(m.registered))
	for name := range m.registered {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		candidates := append([]*customFact(nil), m.registered[name]...)
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].weight != candidates[j].weight {
				return candidates[i].weight > candidates[j].weight
			}
			return candidates[i].order < candidates[j].order
		})

		for _, candidate := range candidates {
			if !m.confinesMatch(ctx, candidate) {
				continue
			}
			data, ok := m.evaluate(candidate)
			if !ok || data == nil {
				continue
			}
			m.collection.Add(name, data)
			break
		}
	}
}

// confinesMatch checks a candidate's confine entries against the resolved
// fact set. Comparison is case-insensitive text, matching how confinement
// behaves in custom fact code.
func (m *module) confinesMatch(ctx context.Context, fact *customFact) bool {
	for factName, want := range fact.confine {
		v := m.collection.Resolve(ctx, factName)
		if v == nil {
			return false
		}
		got, isScalar := v.Data().(string)
		if !isScalar {
			got = factText(v.Data())
		}
		if !strings.EqualFold(got, want) {
			return false
		}
	}
	return true
}

// confineText renders a confine comparison value as text.
func confineText(v starlark.Value) string {
	switch val := v.(type) {
	case starlark.String:
		return string(val)
	case Symbol:
		return string(val)
	default:
		return val.String()
	}
}

// factText renders scalar fact data as comparison text; structured data
// never matches a confine.
func factText(data any) string {
	switch data.(type) {
	case *facts.Mapping, []any, nil:
		return ""
	default:
		return fmt.Sprint(data)
	}
}

// evaluate produces the candidate's value, invoking its resolution callable
// when one was registered. Script failures are logged and non-fatal.
func (m *module) evaluate(fact *customFact) (any, bool) {
	result := fact.value
	if fact.fn != nil {
		thread := m.rt.newThread("fact:" + fact.name)
		res, err := starlark.Call(thread, fact.fn, nil, nil)
		if err != nil {
			m.rt.logScriptError(err, "Custom fact resolution failed")
			return nil, false
		}
		result = res
	}
	if result == nil || result == starlark.None {
		return nil, false
	}
	data, err := toFactData(result)
	if err != nil {
		log.Warn().Err(err).Str("fact", fact.name).Msg("Custom fact produced an unsupported value")
		return nil, false
	}
	return data, true
}
