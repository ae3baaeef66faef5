package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingSortsSQLFiles(t *testing.T) {
	src := fstest.MapFS{
		"002_more.sql": {Data: []byte("SELECT 2")},
		"001_init.sql": {Data: []byte("SELECT 1")},
		"README.md":    {Data: []byte("docs")},
	}

	files, err := pending(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_more.sql"}, files)
}

func TestMigrationSourceFallsBackToEmbedded(t *testing.T) {
	src := MigrationSource("/does/not/exist")

	files, err := pending(src)
	require.NoError(t, err)
	assert.Contains(t, files, "001_init.sql")
}
