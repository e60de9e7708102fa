// Package noderecord owns the node's signed identity record (EIP-778).
//
// A Manager keeps the private key and the current record together. Every
// mutation bumps the sequence number exactly once and re-signs before it
// becomes visible, so the record handed out is always validly signed by
// the key it advertises.
package noderecord

import (
	"bytes"
	"crypto/ecdsa"
	"math"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/p2p/enode"
	"github.com/ethereum/go-ethereum/p2p/enr"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	cmn "github.com/herdius/herdius-enr/libs/common"
	"github.com/herdius/herdius-enr/p2p/endpoint"
	"github.com/herdius/herdius-enr/p2p/log"
)

// Version is the identity scheme every record is signed with.
const Version = "v4"

// Secret is private key material that can be converted into the signing key.
type Secret interface {
	ToECDSA() (*ecdsa.PrivateKey, error)
}

// Manager holds a node key and the record signed with it.
//
// A Manager is not safe for concurrent use; callers sharing one must
// serialise access (see p2p/identity).
type Manager struct {
	key    *ecdsa.PrivateKey
	record *enr.Record
}

// New creates a fresh record with sequence number seq, signed by secret.
func New(secret Secret, seq uint64) (*Manager, error) {
	key, err := toECDSA(secret)
	if err != nil {
		return nil, err
	}

	var r enr.Record
	r.Set(enr.ID(Version))
	r.SetSeq(seq)
	if err := enode.SignV4(&r, key); err != nil {
		return nil, errors.Wrap(err, "could not sign node record")
	}
	return &Manager{key: key, record: &r}, nil
}

// Load wraps a previously persisted record. It fails if the public key in
// the record is not the one derived from secret, or if the record is not
// validly signed. The record is not modified; the manager keeps its own copy.
func Load(secret Secret, r *enr.Record) (*Manager, error) {
	key, err := toECDSA(secret)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrIdentityMismatch
	}

	var pub enode.Secp256k1
	if err := r.Load(&pub); err != nil {
		log.Warn().Err(err).Msg("ENR does not carry a public key")
		return nil, ErrIdentityMismatch
	}
	want := crypto.CompressPubkey(&key.PublicKey)
	have := crypto.CompressPubkey((*ecdsa.PublicKey)(&pub))
	if !bytes.Equal(want, have) {
		log.Warn().
			Hex("record_pubkey", have).
			Hex("node_pubkey", want).
			Msg("ENR does not match the provided key")
		return nil, ErrIdentityMismatch
	}

	if err := r.VerifySignature(enode.ValidSchemes); err != nil {
		log.Warn().Err(err).Uint64("seq", r.Seq()).Msg("ENR signature does not verify")
		return nil, ErrInvalidSignature
	}
	own, err := copyRecord(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not copy node record")
	}
	return &Manager{key: key, record: own}, nil
}

func toECDSA(secret Secret) (*ecdsa.PrivateKey, error) {
	if secret == nil {
		return nil, ErrKeyConversion
	}
	key, err := secret.ToECDSA()
	if err != nil || key == nil {
		return nil, ErrKeyConversion
	}
	return key, nil
}

// WithNodeEndpoint is SetNodeEndpoint for chained construction.
func (m *Manager) WithNodeEndpoint(ep *endpoint.NodeEndpoint) (*Manager, error) {
	if err := m.SetNodeEndpoint(ep); err != nil {
		return nil, err
	}
	return m, nil
}

// SetNodeEndpoint advertises ep: the TCP socket address and the UDP
// discovery port. The sequence number grows by exactly one.
//
// Reachability is not checked; callers validate ep first. Only a nil
// endpoint or a TCP port outside 0-65535, which would be altered on
// encoding, is refused with ErrInvalidEndpoint.
func (m *Manager) SetNodeEndpoint(ep *endpoint.NodeEndpoint) error {
	if ep == nil {
		return ErrInvalidEndpoint
	}
	if ep.Address.Port < 0 || ep.Address.Port > math.MaxUint16 {
		return errors.Wrapf(ErrInvalidEndpoint, "tcp port %d out of range", ep.Address.Port)
	}
	return m.Set(
		enr.IP(ep.Address.IP),
		enr.TCP(uint16(ep.Address.Port)),
		enr.UDP(ep.UDPPort),
	)
}

// Set stores arbitrary entries in the record. Like SetNodeEndpoint it bumps
// the sequence number once and re-signs. On error nothing changes.
func (m *Manager) Set(entries ...enr.Entry) error {
	r := m.mustRecord()
	seq := r.Seq()
	if seq == math.MaxUint64 {
		return ErrSeqExhausted
	}

	next, err := copyRecord(r)
	if err != nil {
		cmn.PanicCrisis(err)
	}
	for _, e := range entries {
		next.Set(e)
	}
	next.SetSeq(seq + 1)

	// the key was validated on construction, so the only way signing can
	// fail is the encoded record outgrowing enr.SizeLimit
	if err := enode.SignV4(next, m.key); err != nil {
		return errors.Wrapf(ErrRecordTooBig, "%v", err)
	}
	m.record = next
	return nil
}

// Record returns a copy of the current record, safe to hand out.
func (m *Manager) Record() *enr.Record {
	r, err := copyRecord(m.mustRecord())
	if err != nil {
		cmn.PanicCrisis(err)
	}
	return r
}

// IntoRecord gives up ownership of the record. The manager cannot be used
// afterwards.
func (m *Manager) IntoRecord() *enr.Record {
	r := m.mustRecord()
	m.record = nil
	m.key = nil
	return r
}

// Seq returns the current sequence number.
func (m *Manager) Seq() uint64 {
	return m.mustRecord().Seq()
}

// ID returns the node identity derived from the signing key.
func (m *Manager) ID() enode.ID {
	m.mustRecord()
	return enode.PubkeyToIDV4(&m.key.PublicKey)
}

// Node returns the record as a verified enode.Node.
func (m *Manager) Node() (*enode.Node, error) {
	return enode.New(enode.ValidSchemes, m.Record())
}

// Endpoint returns the advertised endpoint, or nil if none was set yet.
func (m *Manager) Endpoint() *endpoint.NodeEndpoint {
	ep, err := endpoint.FromRecord(m.mustRecord())
	if err != nil {
		return nil
	}
	return ep
}

func (m *Manager) mustRecord() *enr.Record {
	if m.record == nil {
		cmn.PanicCrisis("node record manager used after IntoRecord")
	}
	return m.record
}

// copyRecord deep copies a signed record through its RLP encoding; a plain
// struct copy would share the entry slice.
func copyRecord(r *enr.Record) (*enr.Record, error) {
	blob, err := rlp.EncodeToBytes(r)
	if err != nil {
		return nil, err
	}
	var cpy enr.Record
	if err := rlp.DecodeBytes(blob, &cpy); err != nil {
		return nil, err
	}
	return &cpy, nil
}
