// Package identity keeps the node record of a running node: it restores it
// from storage on start, applies endpoint changes and writes every new
// version back.
package identity

import (
	"sync"

	"github.com/ethereum/go-ethereum/p2p/enode"
	"github.com/ethereum/go-ethereum/p2p/enr"
	"github.com/pkg/errors"

	cmn "github.com/herdius/herdius-enr/libs/common"
	"github.com/herdius/herdius-enr/p2p/endpoint"
	"github.com/herdius/herdius-enr/p2p/log"
	"github.com/herdius/herdius-enr/p2p/noderecord"
	"github.com/herdius/herdius-enr/storage/disk"
)

// Identity guards a noderecord.Manager. Readers never observe a record in
// the middle of an update.
type Identity struct {
	mu      sync.RWMutex
	manager *noderecord.Manager
	store   disk.Store
}

// Open restores the record kept in store, or starts a new one at sequence
// number zero if none is stored or the stored one does not belong to
// secret. The endpoint ep is then advertised and the result persisted.
func Open(secret noderecord.Secret, store disk.Store, ep *endpoint.NodeEndpoint) (*Identity, error) {
	if ep != nil {
		if err := ep.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid node endpoint")
		}
	}
	m, err := restore(secret, store)
	if err != nil {
		return nil, err
	}

	id := &Identity{manager: m, store: store}
	if ep != nil && !ep.Equal(m.Endpoint()) {
		if err := id.setEndpoint(ep); err != nil {
			return nil, err
		}
	}
	if err := id.persist(); err != nil {
		return nil, err
	}
	log.Info().
		Str("id", m.ID().String()).
		Uint64("seq", m.Seq()).
		Msg("Node record ready")
	return id, nil
}

func restore(secret noderecord.Secret, store disk.Store) (*noderecord.Manager, error) {
	var stored noderecord.DiskRecord
	text, err := disk.Load(store, stored.Path(), stored.Desc())
	if err == nil {
		r, perr := noderecord.ParseText(text)
		if perr != nil {
			log.Warn().Err(perr).Msgf("Error parsing %s", stored.Desc())
		} else {
			m, lerr := noderecord.Load(secret, r)
			switch {
			case lerr == nil:
				return m, nil
			case lerr == noderecord.ErrKeyConversion:
				return nil, lerr
			}
			log.Warn().Err(lerr).Msg("Discarding stored node record")
		}
	} else if err != disk.ErrNotFound {
		return nil, err
	}

	return noderecord.New(secret, 0)
}

// UpdateEndpoint advertises ep. Nothing changes, and no sequence number is
// spent, if ep is already the advertised endpoint or is not advertisable.
func (id *Identity) UpdateEndpoint(ep *endpoint.NodeEndpoint) error {
	if err := ep.Validate(); err != nil {
		return errors.Wrap(err, "invalid node endpoint")
	}

	id.mu.Lock()
	defer id.mu.Unlock()

	if ep.Equal(id.manager.Endpoint()) {
		return nil
	}
	if err := id.setEndpoint(ep); err != nil {
		return err
	}
	return id.persist()
}

func (id *Identity) setEndpoint(ep *endpoint.NodeEndpoint) error {
	err := id.manager.SetNodeEndpoint(ep)
	switch errors.Cause(err) {
	case nil:
		log.Info().Str("endpoint", ep.String()).Uint64("seq", id.manager.Seq()).Msg("Node endpoint updated")
		return nil
	case noderecord.ErrRecordTooBig:
		// an endpoint always fits; the record is corrupt
		cmn.PanicCrisis(err)
	}
	return err
}

func (id *Identity) persist() error {
	return disk.Save(id.store, noderecord.DiskRecord{Record: id.manager.Record()})
}

// Record returns a copy of the current record.
func (id *Identity) Record() *enr.Record {
	id.mu.RLock()
	defer id.mu.RUnlock()
	return id.manager.Record()
}

// Node returns the current record as an enode.Node.
func (id *Identity) Node() (*enode.Node, error) {
	id.mu.RLock()
	defer id.mu.RUnlock()
	return id.manager.Node()
}

// Seq returns the current sequence number.
func (id *Identity) Seq() uint64 {
	id.mu.RLock()
	defer id.mu.RUnlock()
	return id.manager.Seq()
}

// Close writes the record a last time and returns it. The Identity cannot
// be used afterwards.
func (id *Identity) Close() (*enr.Record, error) {
	id.mu.Lock()
	defer id.mu.Unlock()

	r := id.manager.IntoRecord()
	return r, disk.Save(id.store, noderecord.DiskRecord{Record: r})
}
