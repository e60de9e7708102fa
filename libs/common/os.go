package common

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileExists reports whether filePath exists.
func FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

// EnsureDir creates dir with the given mode if it does not exist yet.
func EnsureDir(dir string, mode os.FileMode) error {
	if err := os.MkdirAll(dir, mode); err != nil {
		return errors.Wrapf(err, "could not create directory %v", dir)
	}
	return nil
}

// WriteFileAtomic writes data to filePath through a temporary file in the
// same directory followed by a rename, so readers never see a partial file.
func WriteFileAtomic(filePath string, data []byte, perm os.FileMode) (err error) {
	dir, name := filepath.Split(filePath)
	if dir == "" {
		dir = "."
	}
	f, err := ioutil.TempFile(dir, "."+name+".tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(f.Name())
		}
	}()

	if _, err = f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(f.Name(), perm); err != nil {
		return err
	}
	return os.Rename(f.Name(), filePath)
}
