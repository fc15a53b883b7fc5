package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLite(t *testing.T) {
	t.Parallel()

	gdb, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)

	var one int
	require.NoError(t, gdb.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "sqlite", "")
	assert.ErrorContains(t, err, "DATABASE_URL is empty")

	_, err = Open(context.Background(), "mysql", "root@/web")
	assert.ErrorContains(t, err, "unsupported driver")
}
