// Package system 缓存用户的 AI 模型设置与面试职位选择器使用的
// 行业/职位目录。
package system

import (
	"context"
	"log/slog"
	"sync"

	"aiInterview/internal/client"
)

type api interface {
	GetAISettings(ctx context.Context) (client.AISettings, error)
	UpdateAISettings(ctx context.Context, settings client.AISettings) (client.AISettings, error)
	JobsByIndustry(ctx context.Context) ([]client.Industry, error)
}

// Store 是设置与职位目录端点上的薄缓存，只拉取一次。
type Store struct {
	api    api
	logger *slog.Logger

	mu               sync.Mutex
	settings         *client.AISettings
	industries       []client.Industry
	industriesLoaded bool
	selectedIndustry int64
}

// NewStore 构建空的系统 store。
func NewStore(a api, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{api: a, logger: logger}
}

// AISettings 返回缓存的设置，首次使用时拉取。
func (s *Store) AISettings(ctx context.Context) (client.AISettings, error) {
	s.mu.Lock()
	cached := s.settings
	s.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}

	settings, err := s.api.GetAISettings(ctx)
	if err != nil {
		s.logger.Warn("ai settings fetch failed", slog.Any("error", err))
		return client.AISettings{}, err
	}
	s.mu.Lock()
	s.settings = &settings
	s.mu.Unlock()
	return settings, nil
}

// UpdateAISettings 更新设置并刷新缓存。
func (s *Store) UpdateAISettings(ctx context.Context, settings client.AISettings) error {
	updated, err := s.api.UpdateAISettings(ctx, settings)
	if err != nil {
		s.logger.Warn("ai settings update failed", slog.Any("error", err))
		return err
	}
	s.mu.Lock()
	s.settings = &updated
	s.mu.Unlock()
	return nil
}

// Industries 返回缓存的目录，首次使用时拉取。
func (s *Store) Industries(ctx context.Context) ([]client.Industry, error) {
	s.mu.Lock()
	if s.industriesLoaded {
		out := append([]client.Industry(nil), s.industries...)
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	industries, err := s.api.JobsByIndustry(ctx)
	if err != nil {
		s.logger.Warn("job catalogue fetch failed", slog.Any("error", err))
		return nil, err
	}
	s.mu.Lock()
	s.industries = industries
	s.industriesLoaded = true
	out := append([]client.Industry(nil), s.industries...)
	s.mu.Unlock()
	return out, nil
}

// SelectIndustry 设置行业筛选；零值表示清除。
func (s *Store) SelectIndustry(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedIndustry = id
}

// Jobs 返回所选行业下的职位；未选行业时返回全部。
// 调用前目录必须已拉取。
func (s *Store) Jobs() []client.JobPosition {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []client.JobPosition
	for _, ind := range s.industries {
		if s.selectedIndustry != 0 && ind.ID != s.selectedIndustry {
			continue
		}
		out = append(out, ind.Jobs...)
	}
	return out
}
