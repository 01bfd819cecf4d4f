package client

import (
	"context"
	"io"
)

// RegisterData 是注册请求载荷，Code 为邮箱验证码。
type RegisterData struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Code     string `json:"code,omitempty"`
}

// LoginData 是密码登录的凭证载荷。
type LoginData struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// TokenPair 是后端签发的 JWT 令牌对。
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// UserProfile 是后端返回的当前登录账号信息。
type UserProfile struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone"`
	Avatar      *string `json:"avatar"`
	Role        string  `json:"role"`
	DateJoined  string  `json:"date_joined"`
	HasPassword bool    `json:"has_password"`
}

// ChangePasswordData 设置或替换账号密码。
// OAuth 创建且从未设过密码的账号 OldPassword 留空。
type ChangePasswordData struct {
	OldPassword  string `json:"old_password,omitempty"`
	NewPassword1 string `json:"new_password1"`
	NewPassword2 string `json:"new_password2"`
}

// Register 创建账号并返回签发的令牌对。
func (c *Client) Register(ctx context.Context, data RegisterData) (TokenPair, error) {
	var pair TokenPair
	err := c.post(ctx, "/auth/register/", data, &pair)
	return pair, err
}

// Login 用凭证换取令牌对。
func (c *Client) Login(ctx context.Context, data LoginData) (TokenPair, error) {
	var pair TokenPair
	err := c.post(ctx, "/auth/login/", data, &pair)
	return pair, err
}

// SendCode 请求发送注册邮箱验证码。
func (c *Client) SendCode(ctx context.Context, email string) error {
	return c.post(ctx, "/auth/send-code/", map[string]string{"email": email}, nil)
}

// GitHubLogin 用 GitHub OAuth code 换取平台令牌对。
func (c *Client) GitHubLogin(ctx context.Context, code string) (TokenPair, error) {
	var pair TokenPair
	err := c.post(ctx, "/auth/github/", map[string]string{"code": code}, &pair)
	return pair, err
}

// Profile 获取当前用户的个人资料。
func (c *Client) Profile(ctx context.Context) (UserProfile, error) {
	var profile UserProfile
	err := c.get(ctx, "/auth/profile/", nil, &profile)
	return profile, err
}

// UpdateProfile 仅更新给定的资料字段。
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]any) (UserProfile, error) {
	var profile UserProfile
	err := c.patch(ctx, "/auth/profile/", fields, &profile)
	return profile, err
}

// ChangePassword 设置或替换账号密码。
func (c *Client) ChangePassword(ctx context.Context, data ChangePasswordData) error {
	return c.post(ctx, "/auth/password/change/", data, nil)
}

// UploadAvatar 上传新头像并返回其 URL。
func (c *Client) UploadAvatar(ctx context.Context, filename string, file io.Reader) (string, error) {
	var out struct {
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.postMultipart(ctx, "/auth/upload-avatar/", nil, "avatar", filename, file, &out); err != nil {
		return "", err
	}
	return out.AvatarURL, nil
}
