package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "reference.db"))
	require.NoError(t, err)
	defer db.Close()

	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestOpenPostgresUnreachable(t *testing.T) {
	_, err := Open("postgres://nobody@127.0.0.1:1/none?connect_timeout=1")
	assert.Error(t, err)
}
