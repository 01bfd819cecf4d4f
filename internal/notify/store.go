// Package notify 缓存已登录用户的动态流。
package notify

import (
	"context"
	"log/slog"
	"sync"

	"aiInterview/internal/client"
)

type api interface {
	Notifications(ctx context.Context, pageSize int) (client.Page[client.Notification], error)
	MarkNotificationRead(ctx context.Context, id int64) error
	MarkAllNotificationsRead(ctx context.Context) error
}

// Store 持有最新一页通知与未读计数。
type Store struct {
	api      api
	logger   *slog.Logger
	pageSize int

	mu    sync.Mutex
	items []client.Notification
}

// NewStore 构建空的通知 store。pageSize <= 0 使用后端默认值。
func NewStore(a api, pageSize int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{api: a, logger: logger, pageSize: pageSize}
}

// Fetch 用最新通知替换缓存页。失败时保留旧状态并返回错误。
func (s *Store) Fetch(ctx context.Context) error {
	page, err := s.api.Notifications(ctx, s.pageSize)
	if err != nil {
		s.logger.Warn("notification fetch failed", slog.Any("error", err))
		return err
	}
	s.mu.Lock()
	s.items = page.Results
	s.mu.Unlock()
	return nil
}

// Notifications 返回缓存页，最新在前。
func (s *Store) Notifications() []client.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]client.Notification(nil), s.items...)
}

// UnreadCount 统计缓存页中的未读通知数。
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, item := range s.items {
		if !item.IsRead {
			n++
		}
	}
	return n
}

// MarkRead 将单条通知标记为已读，本地与后端同时生效。
// 已读通知直接跳过，不发后端请求。
func (s *Store) MarkRead(ctx context.Context, id int64) error {
	s.mu.Lock()
	idx := -1
	for i, item := range s.items {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx >= 0 && s.items[idx].IsRead {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.api.MarkNotificationRead(ctx, id); err != nil {
		s.logger.Warn("mark read failed", slog.Int64("notification_id", id), slog.Any("error", err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].IsRead = true
			break
		}
	}
	return nil
}

// MarkAllRead 将全部通知标记为已读，本地与后端同时生效。
func (s *Store) MarkAllRead(ctx context.Context) error {
	if err := s.api.MarkAllNotificationsRead(ctx); err != nil {
		s.logger.Warn("mark all read failed", slog.Any("error", err))
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].IsRead = true
	}
	return nil
}
