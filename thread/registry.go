package thread

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ErrUnknownThread is returned by New for a name that is not registered.
var ErrUnknownThread = errors.New("thread: unknown thread type")

// Factory returns a new Variant with default parameters.
type Factory func() Variant

var registry = struct {
	sync.RWMutex
	m map[string]Factory
}{m: make(map[string]Factory)}

func init() {
	Register("triangular", func() Variant { return NewTriangular() })
	Register("iso262", func() Variant { return NewISO262() })
	Register("ball_screw", func() Variant { return NewBallScrew() })
}

// Register makes a thread type available by name. It panics if name is
// empty, already registered or f is nil.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		panic("thread: Register with empty name or nil factory")
	}
	registry.Lock()
	defer registry.Unlock()
	if _, dup := registry.m[name]; dup {
		panic("thread: Register called twice for " + name)
	}
	registry.m[name] = f
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, bool) {
	registry.RLock()
	defer registry.RUnlock()
	f, ok := registry.m[name]
	return f, ok
}

// Names returns the registered thread type names in lexical order.
func Names() []string {
	registry.RLock()
	defer registry.RUnlock()
	return slices.Sorted(maps.Keys(registry.m))
}

// New returns a Thread of the type registered under name with the
// given parameters applied, see ParseConfig.
func New(name string, params map[string]string) (*Thread, error) {
	f, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownThread, name)
	}
	v := f()
	if err := ParseConfig(v, params); err != nil {
		return nil, err
	}
	tracer().Debugf("thread: new %s %+v", name, v.Base().Parameters())
	return &Thread{Provider: v}, nil
}
