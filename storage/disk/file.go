package disk

import (
	"io/ioutil"
	"os"
	"path/filepath"

	cmn "github.com/herdius/herdius-enr/libs/common"
)

// FileStore keeps one file per path inside a directory.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store rooted at dir. The directory is created on
// the first Save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Save atomically replaces the file for path. The file is readable by the
// owner only.
func (s *FileStore) Save(path, repr string) error {
	if err := cmn.EnsureDir(s.dir, 0700); err != nil {
		return err
	}
	return cmn.WriteFileAtomic(filepath.Join(s.dir, path), []byte(repr), 0600)
}

func (s *FileStore) Load(path string) (string, error) {
	data, err := ioutil.ReadFile(filepath.Join(s.dir, path))
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
