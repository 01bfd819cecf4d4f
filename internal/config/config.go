package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 聚合可由环境变量提供的客户端配置。
// API/WS base URL 指向面试平台后端。
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Preview PreviewConfig `mapstructure:"preview"`
	Draft   DraftConfig   `mapstructure:"draft"`
}

// APIConfig 包含 REST 端点配置。
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// TimeoutSeconds 刻意放宽：报告生成类请求会在模型产出期间保持连接。
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// ChatConfig 包含实时消息端点配置。
type ChatConfig struct {
	WSBaseURL string `mapstructure:"ws_base_url"`
}

// PreviewConfig 包含本地预览服务配置。
type PreviewConfig struct {
	Port int `mapstructure:"port"`
}

// DraftConfig 包含本地草稿快照库配置。
type DraftConfig struct {
	Path string `mapstructure:"path"`
}

// Timeout 以 Duration 形式返回 API 超时。
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// Load 仅从环境变量读取配置（带默认值）。
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad 包装 Load，失败时 panic。
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000/api/v1")
	v.SetDefault("api.timeout_seconds", 120)
	v.SetDefault("chat.ws_base_url", "ws://localhost:8000")
	v.SetDefault("preview.port", 7878)
	v.SetDefault("draft.path", "drafts.db")
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.base_url":        "API_BASE_URL",
		"api.timeout_seconds": "API_TIMEOUT_SECONDS",
		"chat.ws_base_url":    "WS_BASE_URL",
		"preview.port":        "PREVIEW_PORT",
		"draft.path":          "DRAFT_DB_PATH",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.BaseURL == "" {
		return errors.New("api base url is required")
	}
	if !strings.HasPrefix(cfg.API.BaseURL, "http://") && !strings.HasPrefix(cfg.API.BaseURL, "https://") {
		return errors.New("api base url must be http or https")
	}
	if cfg.API.TimeoutSeconds <= 0 {
		return errors.New("api timeout must be positive")
	}
	if cfg.Chat.WSBaseURL == "" {
		return errors.New("ws base url is required")
	}
	if !strings.HasPrefix(cfg.Chat.WSBaseURL, "ws://") && !strings.HasPrefix(cfg.Chat.WSBaseURL, "wss://") {
		return errors.New("ws base url must be ws or wss")
	}
	if cfg.Preview.Port <= 0 {
		return errors.New("preview port must be positive")
	}
	if cfg.Draft.Path == "" {
		return errors.New("draft db path is required")
	}
	return nil
}
