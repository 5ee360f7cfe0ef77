package sqldb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)

	_, err = db.Exec(`CREATE TABLE t (v INTEGER)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO t (v) VALUES (?)`, 7)
	require.NoError(t, err)

	var v int
	require.NoError(t, db.Get(&v, `SELECT v FROM t`))
	assert.Equal(t, 7, v)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported")
}

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: DriverPostgres})
	assert.Error(t, err)
}

func TestIsMemoryDSN(t *testing.T) {
	assert.True(t, IsMemoryDSN(":memory:"))
	assert.True(t, IsMemoryDSN("file:test?mode=memory&cache=shared"))
	assert.False(t, IsMemoryDSN("file:ara.db"))
}
