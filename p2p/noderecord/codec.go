package noderecord

import (
	"encoding/base64"
	"strings"

	"github.com/ethereum/go-ethereum/p2p/enode"
	"github.com/ethereum/go-ethereum/p2p/enr"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

const textPrefix = "enr:"

// DiskRecord is a node record as stored by storage/disk.
type DiskRecord struct {
	Record *enr.Record
}

// Path is the name the record is stored under.
func (DiskRecord) Path() string { return "enr" }

// Desc is used in log messages.
func (DiskRecord) Desc() string { return "Ethereum Node Record" }

// Repr returns the textual form of the record.
func (d DiskRecord) Repr() string {
	text, err := EncodeText(d.Record)
	if err != nil {
		// only unsigned records fail to encode, and a Manager never hands
		// one out
		panic(err)
	}
	return text
}

// EncodeText returns the "enr:" form of a signed record: the RLP encoding
// in unpadded URL-safe base64.
func EncodeText(r *enr.Record) (string, error) {
	blob, err := rlp.EncodeToBytes(r)
	if err != nil {
		return "", errors.Wrap(err, "could not encode node record")
	}
	return textPrefix + base64.RawURLEncoding.EncodeToString(blob), nil
}

// ParseText decodes the "enr:" form and checks the record's signature.
func ParseText(text string) (*enr.Record, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, textPrefix) {
		return nil, errors.Errorf("node record text must start with %q", textPrefix)
	}
	blob, err := base64.RawURLEncoding.DecodeString(text[len(textPrefix):])
	if err != nil {
		return nil, errors.Wrap(err, "node record is not valid base64")
	}
	if len(blob) > enr.SizeLimit {
		return nil, errors.Errorf("node record is %d bytes, limit is %d", len(blob), enr.SizeLimit)
	}

	var r enr.Record
	if err := rlp.DecodeBytes(blob, &r); err != nil {
		return nil, errors.Wrap(err, "could not decode node record")
	}
	if _, err := enode.New(enode.ValidSchemes, &r); err != nil {
		return nil, errors.Wrap(err, "invalid node record")
	}
	return &r, nil
}
