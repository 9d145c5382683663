package transform

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the immutable mapping from transform name to Transform. It is
// fully built before New returns and is safe for concurrent use afterwards.
type Registry struct {
	byName map[string]Transform
	order  []string
	sorted []string
}

// Option configures registry construction.
type Option func(*options) error

type options struct {
	random     RandomSource
	chainLimit int
	chainWidth int
}

func defaultOptions() *options {
	return &options{
		chainLimit: DefaultChainLimit,
		chainWidth: DefaultChainWidth,
	}
}

// WithRandom injects the randomness used by shuffle_string.
func WithRandom(src RandomSource) Option {
	return func(o *options) error {
		if src == nil {
			return fmt.Errorf("random source cannot be nil")
		}
		o.random = src
		return nil
	}
}

// WithSeed is shorthand for WithRandom(NewSeededSource(seed)).
func WithSeed(seed int64) Option {
	return WithRandom(NewSeededSource(seed))
}

// WithChainWindow sets how many leading names seed chains (limit) and how many
// following names each seed is paired with (width). A zero limit or width
// disables chain generation.
func WithChainWindow(limit, width int) Option {
	return func(o *options) error {
		if limit < 0 || width < 0 {
			return fmt.Errorf("chain window must be non-negative, got limit=%d width=%d", limit, width)
		}
		o.chainLimit = limit
		o.chainWidth = width
		return nil
	}
}

// builder accumulates transforms in registration order and rejects duplicates.
type builder struct {
	entries []Transform
	index   map[string]struct{}
}

func (b *builder) add(transforms ...Transform) error {
	for _, t := range transforms {
		if t.Name() == "" {
			return fmt.Errorf("transform name cannot be empty")
		}
		if t.step == nil {
			return fmt.Errorf("transform %s has no step", t.Name())
		}
		if _, exists := b.index[t.Name()]; exists {
			return fmt.Errorf("transform %s is already registered", t.Name())
		}
		b.index[t.Name()] = struct{}{}
		b.entries = append(b.entries, t)
	}
	return nil
}

// New builds a registry: the base set, then the generated families, then
// chains over a snapshot of everything registered so far.
func New(opts ...Option) (*Registry, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.random == nil {
		o.random = NewSeededSource(0)
	}

	b := &builder{index: make(map[string]struct{})}
	if err := b.add(baseTransforms(o.random)...); err != nil {
		return nil, err
	}
	if err := b.add(familyTransforms()...); err != nil {
		return nil, err
	}

	snapshot := make([]Transform, len(b.entries))
	copy(snapshot, b.entries)
	if err := b.add(chainTransforms(snapshot, o.chainLimit, o.chainWidth)...); err != nil {
		return nil, err
	}

	return freeze(b.entries), nil
}

// NewFrom builds a registry from an explicit list, preserving its order. It is
// intended for collaborators and tests that need a small custom vocabulary.
func NewFrom(transforms ...Transform) (*Registry, error) {
	b := &builder{index: make(map[string]struct{})}
	if err := b.add(transforms...); err != nil {
		return nil, err
	}
	return freeze(b.entries), nil
}

func freeze(entries []Transform) *Registry {
	r := &Registry{
		byName: make(map[string]Transform, len(entries)),
		order:  make([]string, 0, len(entries)),
	}
	for _, t := range entries {
		r.byName[t.Name()] = t
		r.order = append(r.order, t.Name())
	}
	r.sorted = make([]string, len(r.order))
	copy(r.sorted, r.order)
	sort.Strings(r.sorted)
	return r
}

// List returns every registered name, sorted.
func (r *Registry) List() []string {
	out := make([]string, len(r.sorted))
	copy(out, r.sorted)
	return out
}

// Order returns every registered name in registration order.
func (r *Registry) Order() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ListByCategory returns the sorted names of one category.
func (r *Registry) ListByCategory(c Category) []string {
	out := make([]string, 0)
	for _, name := range r.sorted {
		if r.byName[name].Category() == c {
			out = append(out, name)
		}
	}
	return out
}

// Lookup retrieves a transform by name.
func (r *Registry) Lookup(name string) (Transform, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Len reports the number of registered transforms.
func (r *Registry) Len() int {
	return len(r.order)
}

// Apply runs the named transform. The only error is an *UnknownTransformError.
func (r *Registry) Apply(name, input string) (string, error) {
	t, ok := r.byName[name]
	if !ok {
		return "", &UnknownTransformError{Name: name}
	}
	return t.Apply(input), nil
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := New()
	if err != nil {
		panic(fmt.Sprintf("transform: building default registry: %v", err))
	}
	return r
})

// Default returns the process-wide registry, built on first use.
func Default() *Registry {
	return defaultRegistry()
}

// List returns the sorted names of the default registry.
func List() []string {
	return Default().List()
}

// Apply runs a transform from the default registry.
func Apply(name, input string) (string, error) {
	return Default().Apply(name, input)
}

// Lookup retrieves a transform from the default registry.
func Lookup(name string) (Transform, bool) {
	return Default().Lookup(name)
}
