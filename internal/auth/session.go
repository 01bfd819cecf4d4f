// Package auth 持有客户端会话：bearer token 对与已登录用户的缓存资料。
package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"aiInterview/internal/client"
)

// API 是会话 store 需要的后端客户端子集。
type API interface {
	Login(ctx context.Context, data client.LoginData) (client.TokenPair, error)
	Register(ctx context.Context, data client.RegisterData) (client.TokenPair, error)
	Profile(ctx context.Context) (client.UserProfile, error)
	UpdateProfile(ctx context.Context, fields map[string]any) (client.UserProfile, error)
	ChangePassword(ctx context.Context, data client.ChangePasswordData) error
}

// Session 持有 token 对与缓存的用户资料。并发安全。
type Session struct {
	api    API
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	tokens  client.TokenPair
	profile *client.UserProfile
}

// NewSession 构建未登录的空会话。
func NewSession(api API, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{api: api, logger: logger, now: time.Now}
}

// AccessToken 返回当前 access token，未登录时为空。
// 满足 client.TokenSource。
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.Access
}

// Authenticated 报告会话是否持有未过期的 access token。
// 解析时不校验签名；权威在后端，这里只用于本地导航判断。
func (s *Session) Authenticated() bool {
	token := s.AccessToken()
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		s.logger.Warn("access token unparsable", slog.Any("error", err))
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		// 不带 exp 的 token 也接受；过期由服务端强制。
		return true
	}
	return s.now().Before(exp.Time)
}

// Login 用凭证换取 token 对并缓存用户资料。
func (s *Session) Login(ctx context.Context, data client.LoginData) error {
	pair, err := s.api.Login(ctx, data)
	if err != nil {
		return err
	}
	s.setTokens(pair)
	if err := s.refreshProfile(ctx); err != nil {
		s.logger.Warn("profile fetch after login failed", slog.Any("error", err))
	}
	return nil
}

// Register 创建账号并让新用户直接登录。
func (s *Session) Register(ctx context.Context, data client.RegisterData) error {
	pair, err := s.api.Register(ctx, data)
	if err != nil {
		return err
	}
	s.setTokens(pair)
	if err := s.refreshProfile(ctx); err != nil {
		s.logger.Warn("profile fetch after register failed", slog.Any("error", err))
	}
	return nil
}

// Adopt 安装外部获得的 token 对，例如来自 GitHub OAuth 回调。
func (s *Session) Adopt(ctx context.Context, pair client.TokenPair) {
	s.setTokens(pair)
	if err := s.refreshProfile(ctx); err != nil {
		s.logger.Warn("profile fetch after token adoption failed", slog.Any("error", err))
	}
}

// Profile 返回缓存的用户资料，缓存为空时拉取一次。
func (s *Session) Profile(ctx context.Context) (client.UserProfile, error) {
	s.mu.RLock()
	cached := s.profile
	s.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}
	if err := s.refreshProfile(ctx); err != nil {
		return client.UserProfile{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.profile, nil
}

// UpdateProfile 以 PATCH 更新指定字段并刷新缓存。
func (s *Session) UpdateProfile(ctx context.Context, fields map[string]any) (client.UserProfile, error) {
	profile, err := s.api.UpdateProfile(ctx, fields)
	if err != nil {
		return client.UserProfile{}, err
	}
	s.mu.Lock()
	s.profile = &profile
	s.mu.Unlock()
	return profile, nil
}

// ChangePassword 直接转发到后端，不改动本地状态。
func (s *Session) ChangePassword(ctx context.Context, data client.ChangePasswordData) error {
	return s.api.ChangePassword(ctx, data)
}

// Logout 丢弃 token 对与缓存的用户资料。
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = client.TokenPair{}
	s.profile = nil
}

func (s *Session) setTokens(pair client.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = pair
	s.profile = nil
}

func (s *Session) refreshProfile(ctx context.Context) error {
	profile, err := s.api.Profile(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.profile = &profile
	s.mu.Unlock()
	return nil
}
