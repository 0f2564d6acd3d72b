package storage

import (
	"fmt"

	"github.com/ekoscanner/ekoscanner/internal/domain"
)

// Open returns the storage backend named by backend ("memory", "file" or
// "sqlite") and a function that releases it.
func Open(backend, path string) (domain.KeyValueStorage, func() error, error) {
	noop := func() error { return nil }

	switch backend {
	case "memory":
		return NewMemoryStorage(), noop, nil
	case "file":
		return NewFileStorage(path), noop, nil
	case "sqlite":
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}
