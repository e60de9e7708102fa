package key

import (
	"crypto/ecdsa"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/p2p/enode"
	"github.com/pkg/errors"

	cmn "github.com/herdius/herdius-enr/libs/common"
)

// SecretLength is the length of a raw secp256k1 private key.
const SecretLength = 32

// NodeKey is the persistent peer key.
// It contains the node's raw secp256k1 private key, which signs the node record.
type NodeKey struct {
	PrivKey []byte `json:"priv_key"` // our priv key
}

// ToECDSA converts the raw key into a secp256k1 signing key. It fails for
// keys of the wrong length, zero, or not below the curve order.
func (nodeKey *NodeKey) ToECDSA() (*ecdsa.PrivateKey, error) {
	if nodeKey == nil || len(nodeKey.PrivKey) != SecretLength {
		return nil, errors.Errorf("node key must be %d bytes", SecretLength)
	}
	return crypto.ToECDSA(nodeKey.PrivKey)
}

// PubKey returns the compressed public key of the node.
func (nodeKey *NodeKey) PubKey() ([]byte, error) {
	priv, err := nodeKey.ToECDSA()
	if err != nil {
		return nil, err
	}
	return crypto.CompressPubkey(&priv.PublicKey), nil
}

// ID returns the node's v4 identity: the keccak256 hash of its public key.
func (nodeKey *NodeKey) ID() (enode.ID, error) {
	priv, err := nodeKey.ToECDSA()
	if err != nil {
		return enode.ID{}, err
	}
	return enode.PubkeyToIDV4(&priv.PublicKey), nil
}

// NodeKeyFromHex reads a hex encoded raw private key, with or without 0x prefix.
func NodeKeyFromHex(s string) (*NodeKey, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	raw, err := hexutil.Decode(s)
	if err != nil {
		return nil, errors.Wrap(err, "node key is not hex encoded")
	}
	nodeKey := &NodeKey{PrivKey: raw}
	if _, err := nodeKey.ToECDSA(); err != nil {
		return nil, errors.Wrap(err, "invalid node key")
	}
	return nodeKey, nil
}

// NodeKeyFromECDSA wraps an already derived private key.
func NodeKeyFromECDSA(priv *ecdsa.PrivateKey) *NodeKey {
	return &NodeKey{PrivKey: crypto.FromECDSA(priv)}
}

// LoadNodeKey reads the NodeKey stored at filePath.
func LoadNodeKey(filePath string) (*NodeKey, error) {
	if !cmn.FileExists(filePath) {
		return nil, errors.Errorf("node key %v does not exist", filePath)
	}
	jsonBytes, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	nodeKey := new(NodeKey)
	err = cdc.UnmarshalJSON(jsonBytes, nodeKey)
	if err != nil {
		return nil, fmt.Errorf("Error reading NodeKey from %v: %v", filePath, err)
	}
	return nodeKey, nil
}

// SaveNodeKey writes nodeKey to filePath, readable by the owner only.
func SaveNodeKey(filePath string, nodeKey *NodeKey) error {
	jsonBytes, err := cdc.MarshalJSON(nodeKey)
	if err != nil {
		return err
	}
	return cmn.WriteFileAtomic(filePath, jsonBytes, 0600)
}
