// Package disk persists small textual entities, such as the node record,
// across restarts.
package disk

import (
	"github.com/pkg/errors"

	"github.com/herdius/herdius-enr/p2p/log"
)

// ErrNotFound is returned by Store.Load when nothing is stored under a path.
var ErrNotFound = errors.New("entity not found")

// Entity is something that can be written to a Store.
type Entity interface {
	// Path is the fixed name the entity is stored under.
	Path() string
	// Desc is a human readable description for log messages.
	Desc() string
	// Repr is the textual form written to storage.
	Repr() string
}

// Store reads and writes textual representations by path.
type Store interface {
	Save(path, repr string) error
	Load(path string) (string, error)
}

// Save writes entity to store.
func Save(store Store, entity Entity) error {
	if err := store.Save(entity.Path(), entity.Repr()); err != nil {
		log.Warn().Err(err).Msgf("Error writing %s", entity.Desc())
		return errors.Wrapf(err, "could not save %s", entity.Desc())
	}
	log.Debug().Str("path", entity.Path()).Msgf("Saved %s", entity.Desc())
	return nil
}

// Load reads the representation stored under path. A missing entity is
// not worth a warning: it is the normal first run.
func Load(store Store, path, desc string) (string, error) {
	repr, err := store.Load(path)
	switch {
	case errors.Cause(err) == ErrNotFound:
		log.Debug().Str("path", path).Msgf("No %s stored", desc)
		return "", ErrNotFound
	case err != nil:
		log.Warn().Err(err).Msgf("Error reading %s", desc)
		return "", errors.Wrapf(err, "could not load %s", desc)
	}
	return repr, nil
}
