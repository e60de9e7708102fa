package noderecord

import "github.com/pkg/errors"

var (
	// ErrKeyConversion is returned when the private key cannot be turned into
	// a secp256k1 signing key. The identity is unusable.
	ErrKeyConversion = errors.New("node key is not a valid secp256k1 secret")

	// ErrIdentityMismatch is returned by Load when the record was not made
	// for the given key. The stored record should be discarded.
	ErrIdentityMismatch = errors.New("node record does not match the node key")

	// ErrInvalidSignature is returned by Load for a record whose signature
	// does not cover its contents.
	ErrInvalidSignature = errors.New("node record signature is invalid")

	// ErrRecordTooBig is returned when a mutation would push the signed
	// record past enr.SizeLimit. The record is left unchanged.
	ErrRecordTooBig = errors.New("node record capacity exceeded")

	// ErrInvalidEndpoint is returned when an endpoint cannot be encoded
	// into the record as given. The record is left unchanged.
	ErrInvalidEndpoint = errors.New("node endpoint cannot be encoded")

	// ErrSeqExhausted is returned when the sequence number cannot be
	// increased any further. The record is left unchanged.
	ErrSeqExhausted = errors.New("node record sequence number exhausted")
)
