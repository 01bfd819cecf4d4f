package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// NotificationActor 是触发通知的用户。
type NotificationActor struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar"`
}

// Notification 是动态流中的一条记录。Target 与 ActionObject 在后端是
// 泛型外键，这里保持 raw。
type Notification struct {
	ID           int64             `json:"id"`
	Verb         string            `json:"verb"`
	IsRead       bool              `json:"is_read"`
	Timestamp    string            `json:"timestamp"`
	Actor        NotificationActor `json:"actor"`
	Target       json.RawMessage   `json:"target,omitempty"`
	ActionObject json.RawMessage   `json:"action_object,omitempty"`
}

// Notifications 获取动态流的一页。
func (c *Client) Notifications(ctx context.Context, pageSize int) (Page[Notification], error) {
	query := url.Values{}
	if pageSize > 0 {
		query.Set("page_size", strconv.Itoa(pageSize))
	}
	var out Page[Notification]
	err := c.get(ctx, "/notifications/", query, &out)
	return out, err
}

// MarkNotificationRead 将单条通知标记为已读。
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.post(ctx, fmt.Sprintf("/notifications/%d/mark-as-read/", id), nil, nil)
}

// MarkAllNotificationsRead 将全部通知标记为已读。
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.post(ctx, "/notifications/mark-all-as-read/", nil, nil)
}
