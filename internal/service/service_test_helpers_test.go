package service

import (
	"blog/internal/auth"
	"blog/internal/config"
	"blog/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	repo  model.Repository
	auth  *AuthService
	users *UserService
	codec *auth.Manager
}

func newTestRepo(t *testing.T) model.Repository {
	t.Helper()
	repo, err := model.NewRepositoryFactory().CreateRepository(&config.Config{
		DBType: model.DBTypeSQLite,
		DBPath: model.SQLiteInMemory,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	require.NoError(t, model.SeedDefaultRoles(context.Background(), repo))
	return repo
}

func newTestEnvWithRepo(t *testing.T, repo model.Repository) *testEnv {
	t.Helper()
	codec, err := auth.NewManager("test-secret", "blog-test", 30*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return &testEnv{
		repo:  repo,
		auth:  NewAuthService(repo, auth.NewHasher(bcrypt.MinCost), codec),
		users: NewUserService(repo),
		codec: codec,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithRepo(t, newTestRepo(t))
}

func (e *testEnv) register(t *testing.T, email, password string) uint {
	t.Helper()
	id, err := e.auth.Register(context.Background(), RegisterInput{Email: email, Password: password})
	require.NoError(t, err)
	return id
}
