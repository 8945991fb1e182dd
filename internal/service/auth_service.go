package service

import (
	"blog/internal/auth"
	"blog/internal/entity"
	"blog/internal/metrics"
	"blog/internal/model"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	TokenTypeBearer   = "bearer"
	minPasswordLength = 8
)

// RegisterInput 注册参数
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthService 认证核心：注册、登录、令牌签发与轮换
type AuthService struct {
	repo    model.Repository
	hasher  *auth.Hasher
	tokens  *auth.Manager
	metrics *metrics.Metrics
	now     func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService 创建认证服务实例
func NewAuthService(repo model.Repository, hasher *auth.Hasher, tokens *auth.Manager) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetMetrics 设置指标收集器
func (s *AuthService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Register creates an active, unverified account with the default user role.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (userID uint, err error) {
	defer func() { s.metrics.AuthEvent("register", err) }()

	email := strings.TrimSpace(input.Email)
	if addr, parseErr := mail.ParseAddress(email); parseErr != nil || addr.Address != email {
		return 0, validationError("invalid email address")
	}
	if len(input.Password) < minPasswordLength {
		return 0, validationError("password must be at least %d characters", minPasswordLength)
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return 0, storageFailure("email_exists", err)
	}
	if exists {
		return 0, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return 0, validationError("password cannot be hashed: %v", err)
	}

	user := &entity.DbUser{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		IsActive:     true,
		IsVerified:   false,
	}

	err = s.repo.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateUser(ctx, user); err != nil {
			if errors.Is(err, model.ErrDuplicate) {
				// 并发注册由唯一索引兜底
				return ErrDuplicateEmail
			}
			return err
		}

		role, err := s.repo.GetRoleByName(ctx, entity.RoleUser)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				logrus.WithField("user_id", user.ID).Warn("default role missing, user registered without roles")
				return nil
			}
			return err
		}
		return s.repo.AddUserRoles(ctx, user.ID, []uint{role.ID})
	})
	if err != nil {
		return 0, txFailure("register", err)
	}

	logrus.WithField("user_id", user.ID).Info("user registered")
	return user.ID, nil
}

// Authenticate checks credentials. Unknown email, inactive account and wrong
// password all yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (identity *auth.Identity, err error) {
	defer func() { s.metrics.AuthEvent("login", err) }()

	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// 保持耗时一致，避免通过响应时间枚举用户
			s.hasher.Verify(password, s.placeholderHash())
			return nil, ErrInvalidCredentials
		}
		return nil, storageFailure("get_user_by_email", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	withRoles, err := s.repo.GetUserWithRoles(ctx, user.ID)
	if err != nil {
		return nil, storageFailure("get_user_with_roles", err)
	}
	return identityFromUser(withRoles), nil
}

// IssueTokenPair mints an access and a refresh token and persists the refresh
// record. No tokens are returned unless the record is stored.
func (s *AuthService) IssueTokenPair(ctx context.Context, identity *auth.Identity) (*entity.TokenPairResponse, error) {
	if identity == nil || identity.UserID == 0 {
		return nil, validationError("identity is required")
	}

	accessToken, _, err := s.tokens.CreateAccessToken(*identity, 0)
	if err != nil {
		logrus.WithError(err).WithField("user_id", identity.UserID).Error("sign access token failed")
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, refreshExpiry, err := s.tokens.CreateRefreshToken(*identity)
	if err != nil {
		logrus.WithError(err).WithField("user_id", identity.UserID).Error("sign refresh token failed")
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	record := &entity.DbRefreshToken{
		Token:     refreshToken,
		UserID:    identity.UserID,
		// JWT 的 exp 只精确到秒，存储值与之保持一致
		ExpiresAt: refreshExpiry.Truncate(time.Second).UTC(),
	}
	if err := s.repo.CreateRefreshToken(ctx, record); err != nil {
		return nil, storageFailure("create_refresh_token", err)
	}

	return &entity.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int64(s.tokens.AccessTTL() / time.Second),
	}, nil
}

// Login authenticates and issues a new token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.TokenPairResponse, error) {
	identity, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.IssueTokenPair(ctx, identity)
}

// RefreshTokenPair rotates a refresh token. Lookup, deletion of the presented
// record and persistence of the new one share a transaction; the delete is
// conditional so concurrent callers with the same token get exactly one winner.
func (s *AuthService) RefreshTokenPair(ctx context.Context, presented string) (pair *entity.TokenPairResponse, err error) {
	defer func() { s.metrics.AuthEvent("refresh", err) }()

	presented = strings.TrimSpace(presented)
	if presented == "" {
		return nil, ErrInvalidOrExpiredToken
	}

	err = s.repo.RunInTx(ctx, func(ctx context.Context) error {
		record, err := s.repo.GetRefreshToken(ctx, presented)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return ErrInvalidOrExpiredToken
			}
			return err
		}
		if record.Expired(s.now()) {
			return ErrInvalidOrExpiredToken
		}

		claims, err := s.tokens.VerifyToken(presented)
		if err != nil {
			return ErrInvalidToken
		}
		if !claims.IsRefresh() {
			return fmt.Errorf("%w: wrong token type", ErrInvalidToken)
		}
		userID, err := claims.UserID()
		if err != nil || userID != record.UserID {
			return ErrInvalidToken
		}

		user, err := s.repo.GetUserWithRoles(ctx, userID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if !user.IsActive {
			return ErrUserNotFound
		}

		if err := s.repo.DeleteRefreshToken(ctx, record.ID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return ErrInvalidOrExpiredToken
			}
			return err
		}

		pair, err = s.IssueTokenPair(ctx, identityFromUser(user))
		return err
	})
	if err != nil {
		return nil, txFailure("refresh_token_pair", err)
	}
	return pair, nil
}

// Logout revokes one refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if _, err := s.repo.DeleteRefreshTokenByValue(ctx, strings.TrimSpace(refreshToken)); err != nil {
		return storageFailure("delete_refresh_token", err)
	}
	return nil
}

// LogoutAll revokes every refresh token of a user.
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) (int64, error) {
	removed, err := s.repo.DeleteUserRefreshTokens(ctx, userID)
	if err != nil {
		return 0, storageFailure("delete_user_refresh_tokens", err)
	}
	return removed, nil
}

// SweepExpiredTokens deletes refresh tokens that expired before now.
func (s *AuthService) SweepExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	removed, err := s.repo.DeleteExpiredRefreshTokens(ctx, now.UTC())
	if err != nil {
		return 0, storageFailure("delete_expired_refresh_tokens", err)
	}
	s.metrics.TokensSwept(removed)
	if removed > 0 {
		logrus.WithField("removed", removed).Info("expired refresh tokens swept")
	}
	return removed, nil
}

// ResolveAccessToken verifies a bearer token and loads the active user with
// fresh roles. Refresh tokens are not accepted as bearer credentials.
func (s *AuthService) ResolveAccessToken(ctx context.Context, token string) (*entity.DbUser, error) {
	claims, err := s.tokens.VerifyToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.IsRefresh() {
		return nil, fmt.Errorf("%w: refresh token used as bearer", ErrInvalidToken)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.GetUserWithRoles(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageFailure("get_user_with_roles", err)
	}
	if !user.IsActive {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// EnsureAdmin makes sure the bootstrap account exists and holds the admin role.
// An existing account keeps its password and only gains the missing role.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil
	}

	created := false
	var userID uint
	err := s.repo.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			userID = existing.ID
		case errors.Is(err, model.ErrNotFound):
			// 用户创建与授权同一事务，授权失败时整体回滚
			if userID, err = s.Register(ctx, RegisterInput{Email: email, Password: password}); err != nil {
				return err
			}
			created = true
		default:
			return err
		}

		user, err := s.repo.GetUserWithRoles(ctx, userID)
		if err != nil {
			return err
		}
		if user.HasRole(entity.RoleAdmin) {
			return nil
		}
		admin, err := s.repo.GetRoleByName(ctx, entity.RoleAdmin)
		if err != nil {
			return err
		}
		return s.repo.AddUserRoles(ctx, userID, []uint{admin.ID})
	})
	if err != nil {
		return txFailure("ensure_admin", err)
	}

	if created {
		logrus.WithField("user_id", userID).Info("bootstrap admin created")
	}
	return nil
}

func (s *AuthService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("placeholder-password")
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

func identityFromUser(user *entity.DbUser) *auth.Identity {
	return &auth.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  user.RoleNames(),
	}
}
