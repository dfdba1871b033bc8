package db_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dueline/internal/db"
)

func TestMemoryStoresArePrivate(t *testing.T) {
	ctx := context.Background()
	a, err := db.Open(db.Config{})
	require.NoError(t, err)
	defer a.Close()
	b, err := db.Open(db.Config{})
	require.NoError(t, err)
	defer b.Close()

	_, err = a.ExecContext(ctx, `CREATE TABLE probe(x INTEGER)`)
	require.NoError(t, err)
	_, err = b.ExecContext(ctx, `SELECT x FROM probe`)
	assert.Error(t, err)
}

func TestFileStoreLivesInWorkspace(t *testing.T) {
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir, File: true})
	require.NoError(t, err)
	_, err = conn.Exec(`CREATE TABLE probe(x INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	_, err = os.Stat(db.Path(dir))
	assert.NoError(t, err)
}
