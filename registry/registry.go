package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Metadata is arbitrary key-value data attached to an entry at registration
// time. When the registry is created with WithBindMetadata, metadata keys are
// also bound as keyword arguments on Get.
type Metadata map[string]any

// clone returns a shallow copy; a nil receiver yields an empty (non-nil) map.
func (m Metadata) clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Entry is the stored unit: a callable, the canonical name it is stored under,
// and its metadata. Entries handed out by Lookup hold a metadata copy, so
// callers may mutate it freely.
type Entry struct {
	Fn       any
	Name     string
	Metadata Metadata
}

// Registry maps string names to callables plus metadata. Safe for concurrent use.
type Registry struct {
	name         string
	bindMetadata bool
	log          zerolog.Logger

	mu      sync.RWMutex
	entries map[string]Entry
}

// Option configures a Registry at construction.
type Option func(*Registry)

// WithBindMetadata makes Get merge an entry's metadata into the keyword
// arguments bound to the returned callable (caller overrides win).
func WithBindMetadata() Option {
	return func(r *Registry) { r.bindMetadata = true }
}

// WithLogger sets a logger for registration events. Logging is disabled by default.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// New returns an empty registry. The name is used in diagnostics and error messages.
func New(name string, opts ...Option) *Registry {
	r := &Registry{
		name:    name,
		log:     zerolog.Nop(),
		entries: make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the registry's diagnostic name.
func (r *Registry) Name() string { return r.name }

// RegisterOption configures a single registration.
type RegisterOption func(*registerOpts)

type registerOpts struct {
	name     string
	override bool
	metadata Metadata
}

// WithName registers under an explicit name instead of the callable's declared name.
func WithName(name string) RegisterOption {
	return func(o *registerOpts) { o.name = name }
}

// WithOverride allows the registration to replace an existing entry of the same
// name. Without it, registering a taken name fails.
func WithOverride() RegisterOption {
	return func(o *registerOpts) { o.override = true }
}

// WithMetadata attaches metadata to the entry. The map is copied on store.
func WithMetadata(md Metadata) RegisterOption {
	return func(o *registerOpts) { o.metadata = md }
}

// Register stores fn under a name and returns fn unchanged, so a call site can
// register a callable and keep using the same value. If no WithName option is
// given the name is derived from the callable's declared name (for a *Bound,
// from the wrapped callable's name). Registering a non-callable fails with
// ErrNotCallable; registering a taken name without WithOverride fails with a
// *DuplicateError and leaves the registry unmodified.
func (r *Registry) Register(fn any, opts ...RegisterOption) (any, error) {
	var o registerOpts
	for _, opt := range opts {
		opt(&o)
	}

	if !isCallable(fn) {
		return nil, fmt.Errorf("%w: %T", ErrNotCallable, fn)
	}

	name := o.name
	if name == "" {
		name = callableName(fn)
		if name == "" {
			return nil, fmt.Errorf("%w: cannot derive a name for %T, use WithName", ErrNotCallable, fn)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entries[name]; ok && !o.override {
		return nil, &DuplicateError{Registry: r.name, Name: name, Metadata: existing.Metadata.clone()}
	}
	r.entries[name] = Entry{Fn: fn, Name: name, Metadata: o.metadata.clone()}
	r.log.Debug().Str("registry", r.name).Str("name", name).Msg("registered callable")
	return fn, nil
}

// MustRegister is Register for init-time wiring: it panics on error and returns
// the callable unchanged.
func (r *Registry) MustRegister(fn any, opts ...RegisterOption) any {
	out, err := r.Register(fn, opts...)
	if err != nil {
		panic(err)
	}
	return out
}

// Registrar returns a function that registers its argument with the captured
// options and hands the callable back. It is the two-phase registration form:
// build the registrar where the options are known, apply it at the definition
// site. Validation and storage are identical to Register.
func (r *Registry) Registrar(opts ...RegisterOption) func(fn any) (any, error) {
	return func(fn any) (any, error) {
		return r.Register(fn, opts...)
	}
}

// Lookup returns the entry for key, or a *UnknownKeyError carrying the key and
// the sorted list of registered names. The returned entry's metadata is a copy.
func (r *Registry) Lookup(key string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	if !ok {
		return Entry{}, &UnknownKeyError{Registry: r.name, Key: key, Available: r.keysLocked()}
	}
	e.Metadata = e.Metadata.clone()
	return e, nil
}

// Get returns the callable for key with keyword arguments pre-applied but not
// invoked. The candidate keyword set is overrides merged on top of the entry's
// metadata when the registry was built with WithBindMetadata, otherwise just
// overrides (which may be nil). Unless the callable accepts arbitrary keywords
// through a trailing map[string]any, candidates that match none of its declared
// keyword parameters are dropped silently. An empty final set returns the
// registered callable itself; otherwise Get returns a *Bound.
func (r *Registry) Get(key string, overrides Metadata) (any, error) {
	entry, err := r.Lookup(key)
	if err != nil {
		return nil, err
	}

	kwargs := make(Metadata)
	if r.bindMetadata {
		for k, v := range entry.Metadata {
			kwargs[k] = v
		}
	}
	for k, v := range overrides {
		kwargs[k] = v
	}
	if len(kwargs) == 0 {
		return entry.Fn, nil
	}

	if !hasKeywordCatchAll(entry.Fn) {
		declared := make(map[string]bool)
		for _, n := range keywordNames(entry.Fn) {
			declared[n] = true
		}
		for k := range kwargs {
			if !declared[k] {
				delete(kwargs, k)
			}
		}
	}
	if len(kwargs) == 0 {
		return entry.Fn, nil
	}
	return &Bound{fn: entry.Fn, kwargs: kwargs}, nil
}

// Remove deletes the entry for key. Removing an unregistered key fails with the
// same *UnknownKeyError as Lookup.
func (r *Registry) Remove(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[key]; !ok {
		return &UnknownKeyError{Registry: r.name, Key: key, Available: r.keysLocked()}
	}
	delete(r.entries, key)
	r.log.Debug().Str("registry", r.name).Str("name", key).Msg("removed callable")
	return nil
}

// Contains reports whether key is registered.
func (r *Registry) Contains(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[key]
	return ok
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Keys returns all registered names in lexicographic order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.keysLocked()
}

func (r *Registry) keysLocked() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String implements fmt.Stringer for diagnostics.
func (r *Registry) String() string {
	return fmt.Sprintf("Registry(name=%s, bind_metadata=%t, keys=%v)", r.name, r.bindMetadata, r.Keys())
}
