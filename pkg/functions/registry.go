// Package functions is the function registry of the formula compiler and
// the runtime library its plans call into.
//
// A Definition couples an argument contract (what the compiler validates and
// binds against) with an implementation (what an executing plan invokes by
// uppercase name through a Context).
//
// # Example
//
//	reg := functions.NewRegistry()
//	err := reg.Add(functions.Definition{
//	    Name: "DOUBLE",
//	    Args: functions.Args("value (number)"),
//	    Compute: func(ctx *functions.Context, args ...any) (any, error) {
//	        n, err := functions.ToNumber(args[0])
//	        return 2 * n, err
//	    },
//	})
package functions

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Impl is the implementation of a function. args holds one entry per
// compiled argument: a scalar, a types.Range, a types.Lazy or, for meta
// parameters, whatever the caller's dereference callback returned.
type Impl func(ctx *Context, args ...any) (any, error)

// Definition describes a callable function.
type Definition struct {
	Name        string
	Description string
	Args        []ArgDefinition
	Compute     Impl

	// Derived from Args by Registry.Add.
	MinArgRequired  int
	MaxArgPossible  int
	NbrArgRepeating int

	argToFocus func(int) int
}

// GetArgToFocus maps a 1-based argument position to the 1-based index of the
// declared parameter it binds to. Arguments past the declared list cycle
// through the trailing repeating group.
func (d *Definition) GetArgToFocus(position int) int {
	if d.argToFocus == nil {
		return position
	}
	return d.argToFocus(position)
}

func (d *Definition) addMetaInfo() {
	count, minArg, repeating := 0, 0, 0
	for _, arg := range d.Args {
		count++
		if !arg.Optional && !arg.Repeating && !arg.Default {
			minArg++
		}
		if arg.Repeating {
			repeating++
		}
	}
	d.MinArgRequired = minArg
	d.MaxArgPossible = count
	if repeating > 0 {
		d.MaxArgPossible = math.MaxInt
	}
	d.NbrArgRepeating = repeating
	d.argToFocus = argTargeting(count, repeating)
}

func argTargeting(count, repeating int) func(int) int {
	switch {
	case repeating == 0:
		return func(position int) int { return position }
	case repeating == 1:
		return func(position int) int { return min(position, count) }
	}
	beforeRepeat := count - repeating
	return func(position int) int {
		if position <= beforeRepeat {
			return position
		}
		inGroup := (position - beforeRepeat) % repeating
		if inGroup == 0 {
			inGroup = repeating
		}
		return beforeRepeat + inGroup
	}
}

// Registry maps uppercase function names to definitions.
// Safe for concurrent use by multiple goroutines.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]*Definition
	scope string
}

var scopeSeq atomic.Uint64

func nextScope() string {
	return strconv.FormatUint(scopeSeq.Add(1), 10)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition), scope: nextScope()}
}

// Scope identifies the registry and its current set of definitions. It
// differs between registries and changes on every Add, so plans compiled
// against one state are never served to another. The unmodified default
// registry has the empty scope.
func (r *Registry) Scope() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scope
}

// Add registers def under its uppercased name, replacing any previous
// definition with that name.
func (r *Registry) Add(def Definition) error {
	name := strings.ToUpper(def.Name)
	if name == "" {
		return fmt.Errorf("function name is empty")
	}
	if def.Compute == nil {
		return fmt.Errorf("function %s has no implementation", name)
	}
	seenRepeating := false
	for _, arg := range def.Args {
		if seenRepeating && !arg.Repeating {
			return fmt.Errorf("function %s: repeating arguments must come last", name)
		}
		seenRepeating = seenRepeating || arg.Repeating
	}
	def.Name = name
	def.addMetaInfo()
	r.mu.Lock()
	r.defs[name] = &def
	r.scope = nextScope()
	r.mu.Unlock()
	return nil
}

// Get returns the definition registered under name, case-insensitively.
func (r *Registry) Get(name string) (*Definition, bool) {
	r.mu.RLock()
	def, ok := r.defs[strings.ToUpper(name)]
	r.mu.RUnlock()
	return def, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Clone returns a registry holding the same definitions, so callers can
// extend the builtins without touching the shared default.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := &Registry{defs: make(map[string]*Definition, len(r.defs)), scope: nextScope()}
	for name, def := range r.defs {
		c.defs[name] = def
	}
	return c
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry of builtin functions.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		reg := NewRegistry()
		for _, def := range builtins() {
			if err := reg.Add(def); err != nil {
				panic(err)
			}
		}
		reg.scope = ""
		defaultRegistry = reg
	})
	return defaultRegistry
}
