package db

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBadgerDB(t *testing.T) (*BadgerDB, func()) {
	dirname, err := ioutil.TempDir(os.TempDir(), "badgerdb_test_")
	require.NoError(t, err)
	db, err := NewBadgerDB(dirname, dirname)
	require.NoError(t, err)
	return db, func() {
		db.Close() // Close the db to release the lock
		os.RemoveAll(dirname)
	}
}

func TestNewBadgerDB(t *testing.T) {
	_, remove := newTestBadgerDB(t)
	remove()
}

func TestBadgerDBSetGetDelete(t *testing.T) {
	db, remove := newTestBadgerDB(t)
	defer remove()

	v, err := db.Get([]byte("enr"))
	assert.NoError(t, err)
	assert.Nil(t, v)
	has, err := db.Has([]byte("enr"))
	assert.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, db.Set([]byte("enr"), []byte("enr:first")))
	require.NoError(t, db.SetSync([]byte("enr"), []byte("enr:second")))

	v, err = db.Get([]byte("enr"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("enr:second"), v)
	has, err = db.Has([]byte("enr"))
	assert.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, db.Delete([]byte("enr")))
	v, err = db.Get([]byte("enr"))
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestBadgerDBReopen(t *testing.T) {
	dirname, err := ioutil.TempDir(os.TempDir(), "badgerdb_test_")
	require.NoError(t, err)
	defer os.RemoveAll(dirname)

	db, err := NewBadgerDB(dirname, dirname)
	require.NoError(t, err)
	require.NoError(t, db.SetSync([]byte("k"), []byte("v")))
	require.NoError(t, db.Close())

	db, err = NewBadgerDB(dirname, dirname)
	require.NoError(t, err)
	defer db.Close()
	v, err := db.Get([]byte("k"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}
