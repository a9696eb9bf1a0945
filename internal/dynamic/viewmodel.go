package dynamic

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dejo1307/sjui/internal/layout"
	"github.com/dejo1307/sjui/internal/mapping"
)

// ViewModel holds the mutable state of a rendered layout: control state
// (toggles, sliders, segments, radios, text) keyed by component id, and data
// values used to resolve "@{...}" bindings. Safe for concurrent use.
type ViewModel struct {
	mu    sync.RWMutex
	state map[string]any
	data  map[string]any
}

// NewViewModel creates an empty view model.
func NewViewModel() *ViewModel {
	return &ViewModel{state: make(map[string]any), data: make(map[string]any)}
}

// SetData sets a data value.
func (vm *ViewModel) SetData(name string, v any) {
	vm.mu.Lock()
	vm.data[name] = v
	vm.mu.Unlock()
}

// Data returns a data value.
func (vm *ViewModel) Data(name string) (any, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	v, ok := vm.data[name]
	return v, ok
}

// ApplyDefaults seeds declared data fields that have no value yet.
func (vm *ViewModel) ApplyDefaults(fields []layout.DataField) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for _, f := range fields {
		if _, ok := vm.data[f.Name]; ok {
			continue
		}
		if f.HasDefault {
			vm.data[f.Name] = defaultValue(f)
			continue
		}
		vm.data[f.Name] = nil
	}
}

func defaultValue(f layout.DataField) any {
	switch f.Class {
	case "String":
		if s, ok := f.DefaultValue.(string); ok {
			s = strings.TrimSpace(s)
			if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
			return s
		}
	case "Bool":
		if b, ok := mapping.Bool(f.DefaultValue); ok {
			return b
		}
	}
	return f.DefaultValue
}

// Resolve evaluates an attribute value. "@{name}" and "@{!name}" read data
// values; any other expression resolves to nil. Plain values pass through.
func (vm *ViewModel) Resolve(v any) any {
	expr, ok := layout.BindingExpr(v)
	if !ok {
		return v
	}
	negate := false
	if strings.HasPrefix(expr, "!") {
		negate = true
		expr = strings.TrimSpace(expr[1:])
	}
	if !isIdent(expr) {
		return nil
	}
	val, _ := vm.Data(expr)
	if negate {
		b, _ := mapping.Bool(val)
		return !b
	}
	return val
}

func isIdent(s string) bool {
	idents := layout.ExprIdents(s)
	return len(idents) == 1 && idents[0] == s
}

const anonPrefix = "anon-"

// StateKey returns the key control state is stored under: the component id,
// or a fresh random key when it has none. State under a random key does not
// survive re-rendering.
func (vm *ViewModel) StateKey(c *Component) string {
	if c.ID != "" {
		return c.ID
	}
	return anonPrefix + uuid.New().String()
}

// State returns the state stored under key, seeding it with initial.
// Anonymous keys are not seeded; they only hold state set explicitly.
func (vm *ViewModel) State(key string, initial any) any {
	if strings.HasPrefix(key, anonPrefix) {
		vm.mu.RLock()
		defer vm.mu.RUnlock()
		if v, ok := vm.state[key]; ok {
			return v
		}
		return initial
	}
	vm.mu.RLock()
	v, ok := vm.state[key]
	vm.mu.RUnlock()
	if ok {
		return v
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if v, ok := vm.state[key]; ok {
		return v
	}
	vm.state[key] = initial
	return initial
}

// SetState replaces the state under key.
func (vm *ViewModel) SetState(key string, v any) {
	vm.mu.Lock()
	vm.state[key] = v
	vm.mu.Unlock()
}

// DropAnonymous forgets the state of components without an id.
func (vm *ViewModel) DropAnonymous() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for k := range vm.state {
		if strings.HasPrefix(k, anonPrefix) {
			delete(vm.state, k)
		}
	}
}

// Snapshot returns copies of the state and data maps.
func (vm *ViewModel) Snapshot() (state, data map[string]any) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	state = make(map[string]any, len(vm.state))
	for k, v := range vm.state {
		state[k] = v
	}
	data = make(map[string]any, len(vm.data))
	for k, v := range vm.data {
		data[k] = v
	}
	return state, data
}
