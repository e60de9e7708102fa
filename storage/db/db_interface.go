package db

// DB ...
// A nil key is interpreted as an empty byteslice.
type DB interface {

	// Get returns nil if key doesn't exist.
	// CONTRACT: key, value readonly []byte
	Get([]byte) ([]byte, error)

	// Has checks if a key exists.
	// CONTRACT: key, value readonly []byte
	Has(key []byte) (bool, error)

	// Set sets the key.
	// CONTRACT: key, value readonly []byte
	Set([]byte, []byte) error
	SetSync([]byte, []byte) error

	// Delete deletes the key.
	// CONTRACT: key readonly []byte
	Delete([]byte) error

	// Closes the connection.
	Close() error
}

// Turn nil keys or values into []byte{}
func nonNilBytes(bz []byte) []byte {
	if bz == nil {
		return []byte{}
	}
	return bz
}
