package disk

import (
	"github.com/herdius/herdius-enr/storage/db"
)

// DBStore keeps entities in a key/value database, keyed by path.
type DBStore struct {
	db db.DB
}

var _ Store = (*DBStore)(nil)

// NewDBStore wraps an open database. Closing it stays with the caller.
func NewDBStore(database db.DB) *DBStore {
	return &DBStore{db: database}
}

func (s *DBStore) Save(path, repr string) error {
	return s.db.SetSync([]byte(path), []byte(repr))
}

func (s *DBStore) Load(path string) (string, error) {
	v, err := s.db.Get([]byte(path))
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", ErrNotFound
	}
	return string(v), nil
}
