package service

import (
	"blog/internal/auth"
	"blog/internal/entity"
	"blog/internal/model"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// missingRoleRepo pretends the role table is empty.
type missingRoleRepo struct {
	model.Repository
}

func (r missingRoleRepo) GetRoleByName(ctx context.Context, name string) (*entity.DbRole, error) {
	return nil, model.ErrNotFound
}

// failingTokenRepo refuses to persist refresh tokens.
type failingTokenRepo struct {
	model.Repository
}

func (r failingTokenRepo) CreateRefreshToken(ctx context.Context, token *entity.DbRefreshToken) error {
	return errors.New("disk full")
}

// flakyAdminRoleRepo fails the first admin role lookup.
type flakyAdminRoleRepo struct {
	model.Repository
	failures int
}

func (r *flakyAdminRoleRepo) GetRoleByName(ctx context.Context, name string) (*entity.DbRole, error) {
	if name == entity.RoleAdmin && r.failures > 0 {
		r.failures--
		return nil, errors.New("connection reset")
	}
	return r.Repository.GetRoleByName(ctx, name)
}

func TestRegisterLoginRefreshScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.register(t, "alice@example.com", "Passw0rd!")

	first, err := env.auth.Login(ctx, "alice@example.com", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, TokenTypeBearer, first.TokenType)
	assert.NotEmpty(t, first.AccessToken)
	assert.NotEmpty(t, first.RefreshToken)

	second, err := env.auth.RefreshTokenPair(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = env.auth.RefreshTokenPair(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	_, err = env.auth.RefreshTokenPair(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestRegisterAssignsExactlyUserRole(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "roles@example.com", "Passw0rd!")

	roles, err := env.users.GetUserRoles(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, roles)

	user, err := env.repo.GetUserByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsVerified)
	assert.NotEqual(t, "Passw0rd!", user.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "dup@example.com", "Passw0rd!")

	_, err := env.auth.Register(ctx, RegisterInput{Email: "dup@example.com", Password: "Another1!"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	count, err := env.repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name  string
		input RegisterInput
	}{
		{name: "empty email", input: RegisterInput{Email: "", Password: "Passw0rd!"}},
		{name: "malformed email", input: RegisterInput{Email: "not-an-email", Password: "Passw0rd!"}},
		{name: "display name form", input: RegisterInput{Email: "Bob <bob@example.com>", Password: "Passw0rd!"}},
		{name: "short password", input: RegisterInput{Email: "short@example.com", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(context.Background(), tt.input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRegisterSucceedsWhenDefaultRoleMissing(t *testing.T) {
	repo := newTestRepo(t)
	env := newTestEnvWithRepo(t, missingRoleRepo{Repository: repo})

	id, err := env.auth.Register(context.Background(), RegisterInput{Email: "norole@example.com", Password: "Passw0rd!"})
	require.NoError(t, err)

	user, err := repo.GetUserWithRoles(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, user.Roles)
}

func TestAuthenticateDoesNotRevealWhichPartFailed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "bob@example.com", "Passw0rd!")

	_, wrongPassword := env.auth.Authenticate(ctx, "bob@example.com", "wrong-password")
	_, unknownUser := env.auth.Authenticate(ctx, "nobody@example.com", "Passw0rd!")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestAuthenticateReturnsIdentityWithRoles(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "carol@example.com", "Passw0rd!")

	identity, err := env.auth.Authenticate(context.Background(), "carol@example.com", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, id, identity.UserID)
	assert.Equal(t, "carol@example.com", identity.Email)
	assert.Equal(t, []string{"user"}, identity.Roles)
}

func TestDeactivatedUserCannotAuthenticateOrUseToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "dave@example.com", "Passw0rd!")

	pair, err := env.auth.Login(ctx, "dave@example.com", "Passw0rd!")
	require.NoError(t, err)

	user, err := env.auth.ResolveAccessToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)

	require.NoError(t, env.users.DeactivateUser(ctx, 0, id))

	_, err = env.auth.Authenticate(ctx, "dave@example.com", "Passw0rd!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.ResolveAccessToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.auth.RefreshTokenPair(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestResolveAccessTokenRejectsRefreshAndGarbage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "erin@example.com", "Passw0rd!")
	pair, err := env.auth.Login(ctx, "erin@example.com", "Passw0rd!")
	require.NoError(t, err)

	_, err = env.auth.ResolveAccessToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = env.auth.ResolveAccessToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	ghost, _, err := env.codec.CreateAccessToken(auth.Identity{UserID: 9999, Email: "ghost@example.com"}, 0)
	require.NoError(t, err)
	_, err = env.auth.ResolveAccessToken(ctx, ghost)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRefreshRejectsExpiredStoredRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "frank@example.com", "Passw0rd!")
	pair, err := env.auth.Login(ctx, "frank@example.com", "Passw0rd!")
	require.NoError(t, err)

	// 签名仍然有效，但存储的过期时间已过
	env.auth.now = func() time.Time { return time.Now().UTC().Add(8 * 24 * time.Hour) }
	_, err = env.auth.RefreshTokenPair(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestRefreshAcceptsExpiryEqualToNow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "gina@example.com", "Passw0rd!")
	pair, err := env.auth.Login(ctx, "gina@example.com", "Passw0rd!")
	require.NoError(t, err)

	record, err := env.repo.GetRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	expiry := record.ExpiresAt
	env.auth.now = func() time.Time { return expiry }

	_, err = env.auth.RefreshTokenPair(ctx, pair.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRejectsAccessTokenType(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "hank@example.com", "Passw0rd!")

	access, _, err := env.codec.CreateAccessToken(auth.Identity{UserID: id, Email: "hank@example.com"}, 0)
	require.NoError(t, err)
	require.NoError(t, env.repo.CreateRefreshToken(ctx, &entity.DbRefreshToken{
		Token:     access,
		UserID:    id,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}))

	_, err = env.auth.RefreshTokenPair(ctx, access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = env.auth.RefreshTokenPair(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestRefreshUsesFreshRoles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "ivy@example.com", "Passw0rd!")
	pair, err := env.auth.Login(ctx, "ivy@example.com", "Passw0rd!")
	require.NoError(t, err)

	_, err = env.users.UpdateUserRoles(ctx, id, []string{"admin", "user"})
	require.NoError(t, err)

	next, err := env.auth.RefreshTokenPair(ctx, pair.RefreshToken)
	require.NoError(t, err)
	claims, err := env.codec.VerifyToken(next.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "user"}, claims.Roles)
}

func TestRefreshKeepsOldTokenWhenPersistenceFails(t *testing.T) {
	repo := newTestRepo(t)
	healthy := newTestEnvWithRepo(t, repo)
	ctx := context.Background()
	healthy.register(t, "jack@example.com", "Passw0rd!")
	pair, err := healthy.auth.Login(ctx, "jack@example.com", "Passw0rd!")
	require.NoError(t, err)

	broken := newTestEnvWithRepo(t, failingTokenRepo{Repository: repo})
	next, err := broken.auth.RefreshTokenPair(ctx, pair.RefreshToken)
	assert.Nil(t, next)
	assert.ErrorIs(t, err, ErrStorage)

	_, err = repo.GetRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err, "old refresh token must survive a failed rotation")

	_, err = healthy.auth.RefreshTokenPair(ctx, pair.RefreshToken)
	assert.NoError(t, err)
}

func TestIssueTokenPairReturnsNothingWithoutRecord(t *testing.T) {
	repo := newTestRepo(t)
	healthy := newTestEnvWithRepo(t, repo)
	healthy.register(t, "kate@example.com", "Passw0rd!")

	broken := newTestEnvWithRepo(t, failingTokenRepo{Repository: repo})
	pair, err := broken.auth.Login(context.Background(), "kate@example.com", "Passw0rd!")
	assert.Nil(t, pair)
	assert.ErrorIs(t, err, ErrStorage)
	assert.NotContains(t, err.Error(), "disk full")
}

func TestConcurrentRefreshHasSingleWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "leo@example.com", "Passw0rd!")
	pair, err := env.auth.Login(ctx, "leo@example.com", "Passw0rd!")
	require.NoError(t, err)

	const attempts = 4
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.auth.RefreshTokenPair(ctx, pair.RefreshToken)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	}
	assert.Equal(t, 1, successes)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "mia@example.com", "Passw0rd!")
	first, err := env.auth.Login(ctx, "mia@example.com", "Passw0rd!")
	require.NoError(t, err)
	second, err := env.auth.Login(ctx, "mia@example.com", "Passw0rd!")
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, first.RefreshToken))
	require.NoError(t, env.auth.Logout(ctx, first.RefreshToken))
	_, err = env.auth.RefreshTokenPair(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	removed, err := env.auth.LogoutAll(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
	_, err = env.auth.RefreshTokenPair(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestSweepExpiredTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "ned@example.com", "Passw0rd!")
	_, err := env.auth.Login(ctx, "ned@example.com", "Passw0rd!")
	require.NoError(t, err)

	removed, err := env.auth.SweepExpiredTokens(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 0, removed)

	removed, err = env.auth.SweepExpiredTokens(ctx, time.Now().Add(8*24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
}

func TestEnsureAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.auth.EnsureAdmin(ctx, "admin@example.com", "AdminPass1!"))
	require.NoError(t, env.auth.EnsureAdmin(ctx, "admin@example.com", "AdminPass1!"))
	require.NoError(t, env.auth.EnsureAdmin(ctx, "", ""))

	identity, err := env.auth.Authenticate(ctx, "admin@example.com", "AdminPass1!")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "user"}, identity.Roles)
}

func TestEnsureAdminRollsBackWhenGrantFails(t *testing.T) {
	repo := newTestRepo(t)
	env := newTestEnvWithRepo(t, &flakyAdminRoleRepo{Repository: repo, failures: 1})
	ctx := context.Background()

	err := env.auth.EnsureAdmin(ctx, "admin@example.com", "AdminPass1!")
	require.ErrorIs(t, err, ErrStorage)

	exists, err := repo.EmailExists(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.False(t, exists, "user creation must be rolled back with the failed grant")

	// 下次启动重试成功
	require.NoError(t, env.auth.EnsureAdmin(ctx, "admin@example.com", "AdminPass1!"))
	identity, err := env.auth.Authenticate(ctx, "admin@example.com", "AdminPass1!")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "user"}, identity.Roles)
}

func TestEnsureAdminPromotesExistingAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "admin@example.com", "Passw0rd!")

	require.NoError(t, env.auth.EnsureAdmin(ctx, "admin@example.com", "other-password"))

	roles, err := env.users.GetUserRoles(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "user"}, roles)

	// 已有账号的密码不被覆盖
	_, err = env.auth.Authenticate(ctx, "admin@example.com", "Passw0rd!")
	assert.NoError(t, err)

	count, err := env.repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestStoredRefreshExpiryMatchesClaims(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "olga@example.com", "Passw0rd!")

	pair, err := env.auth.Login(ctx, "olga@example.com", "Passw0rd!")
	require.NoError(t, err)
	assert.EqualValues(t, (30 * time.Minute).Seconds(), pair.ExpiresIn)

	claims, err := env.codec.VerifyToken(pair.RefreshToken)
	require.NoError(t, err)
	record, err := env.repo.GetRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, record.ExpiresAt.Equal(claims.ExpiresAt.Time),
		"stored %s, claims %s", record.ExpiresAt, claims.ExpiresAt.Time)
}
