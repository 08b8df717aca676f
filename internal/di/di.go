// Package di provides a minimal string-keyed service registry used to
// wire bounded-context modules together without import cycles.
package di

import "fmt"

// ServiceRegistry is the read side of the container: modules look up
// already-registered dependencies by token while registering their
// own services.
type ServiceRegistry interface {
	Get(token string) any
}

// Container is the full registry: readable via ServiceRegistry and
// writable via Register. Modules register in dependency order; a
// factory may call Get for tokens registered by earlier modules.
type Container interface {
	ServiceRegistry
	Register(token string, value any)
}

// registry is the default in-memory Container.
type registry struct {
	values map[string]any
}

// NewContainer returns an empty Container.
func NewContainer() Container {
	return &registry{values: make(map[string]any)}
}

func (r *registry) Register(token string, value any) {
	r.values[token] = value
}

func (r *registry) Get(token string) any {
	v, ok := r.values[token]
	if !ok {
		panic(fmt.Sprintf("di: no service registered for token %q", token))
	}
	return v
}

// RegisterToken evaluates factory against the registry's current
// state and registers the result under token. Evaluation is eager:
// by the time RegisterToken returns, the service is constructed and
// available to later RegisterToken calls via sr.Get.
func RegisterToken[T any](c Container, token string, factory func(sr ServiceRegistry) T) {
	c.Register(token, factory(c))
}

// MustGet looks up token and asserts it to T, panicking if the token
// is missing or holds a different type. Used by per-context typed
// getter wrappers (e.g. marketdataDI.GetService).
func MustGet[T any](sr ServiceRegistry, token string) T {
	return sr.Get(token).(T)
}
