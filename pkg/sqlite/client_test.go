package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientCreatesDirectoryAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "test.db")
	db, err := NewClient(Config{Path: path, Schema: `CREATE TABLE IF NOT EXISTS t (k TEXT PRIMARY KEY)`})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO t (k) VALUES (?)`, "x")
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n))
	assert.Equal(t, 1, n)
	assert.FileExists(t, path)
}

func TestNewClientInMemory(t *testing.T) {
	db, err := NewClient(Config{Path: ":memory:"})
	require.NoError(t, err)
	assert.NoError(t, db.Ping())
	assert.NoError(t, db.Close())
}

func TestNewClientBadSchema(t *testing.T) {
	_, err := NewClient(Config{Path: filepath.Join(t.TempDir(), "x.db"), Schema: `CREATE NONSENSE`})
	assert.Error(t, err)
}
