package model

import (
	"blog/internal/config"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRepositoryRequiresType(t *testing.T) {
	_, err := InitRepository(&config.Config{})
	assert.Error(t, err)

	_, err = NewRepositoryFactory().CreateRepository(&config.Config{DBType: "oracle"})
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestCreateSQLiteRepositoryCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "blog.db")

	repo, err := InitRepository(&config.Config{DBType: DBTypeSQLite, DBPath: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	_, err = os.Stat(filepath.Dir(path))
	require.NoError(t, err)

	require.NoError(t, SeedDefaultRoles(context.Background(), repo))
	count, err := repo.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}
