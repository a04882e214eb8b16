package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrNotCallable indicates an attempt to register a value that is not callable.
	ErrNotCallable = errors.New("registry: not a callable")
	// ErrDuplicate indicates registering a name that already exists without override.
	ErrDuplicate = errors.New("registry: duplicate registration")
	// ErrUnknown indicates a lookup or removal of a key that is not registered.
	ErrUnknown = errors.New("registry: unknown key")
)

// DuplicateError reports a registration conflict. It carries the name and the
// metadata of the entry already stored. Matches ErrDuplicate via errors.Is.
type DuplicateError struct {
	Registry string
	Name     string
	Metadata Metadata
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("registry %q: callable %q with metadata %v is already registered (use WithOverride to replace it)",
		e.Registry, e.Name, e.Metadata)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

// UnknownKeyError reports a miss along with the keys that would have matched,
// in lexicographic order. Matches ErrUnknown via errors.Is.
type UnknownKeyError struct {
	Registry  string
	Key       string
	Available []string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("registry %q: key %q is not registered; available keys: %v",
		e.Registry, e.Key, e.Available)
}

func (e *UnknownKeyError) Unwrap() error { return ErrUnknown }
