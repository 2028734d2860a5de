package storage

import (
	"fmt"
)

// Adapter wraps a raw database handle and reports its dialect.
type Adapter interface {
	Dialect() string
}

// Driver owns schema management for one dialect. Concrete drivers also
// implement Repos.
type Driver interface {
	Dialect() string
	Migrate() error
}

type adapterEntry struct {
	match   func(conn any) bool
	factory func(conn any) (Adapter, error)
}

var (
	adapterRegistry []adapterEntry
	driverRegistry  = make(map[string]func(Adapter) (Driver, error))
)

func RegisterAdapter(match func(conn any) bool, factory func(conn any) (Adapter, error)) {
	adapterRegistry = append(adapterRegistry, adapterEntry{match: match, factory: factory})
}

func RegisterDriver(dialect string, factory func(Adapter) (Driver, error)) {
	driverRegistry[dialect] = factory
}

func lookupAdapter(conn any) (Adapter, error) {
	for _, e := range adapterRegistry {
		if e.match(conn) {
			return e.factory(conn)
		}
	}
	return nil, fmt.Errorf("%w: %T", ErrNoAdapter, conn)
}

func lookupDriver(a Adapter) (Driver, error) {
	factory, ok := driverRegistry[a.Dialect()]
	if !ok {
		return nil, fmt.Errorf("no driver registered for dialect %q", a.Dialect())
	}
	return factory(a)
}
