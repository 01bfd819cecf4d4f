package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Message 是一条聊天消息，REST 与实时连接投递的结构一致。
type Message struct {
	ID          int64       `json:"id"`
	Sender      UserProfile `json:"sender"`
	Content     string      `json:"content"`
	MessageType string      `json:"message_type"`
	FileURL     *string     `json:"file_url"`
	Timestamp   string      `json:"timestamp"`
	IsRead      bool        `json:"is_read"`
}

// Conversation 是一个双人会话及其预览元数据。
type Conversation struct {
	ID            int64         `json:"id"`
	Participants  []UserProfile `json:"participants"`
	UpdatedAt     string        `json:"updated_at"`
	LatestMessage *Message      `json:"latest_message"`
	UnreadCount   int           `json:"unread_count"`
}

// OtherParticipant 返回会话中非给定用户的另一方。
func (c Conversation) OtherParticipant(userID int64) (UserProfile, bool) {
	for _, p := range c.Participants {
		if p.ID != userID {
			return p, true
		}
	}
	return UserProfile{}, false
}

// Conversations 获取当前用户的会话列表。
func (c *Client) Conversations(ctx context.Context) ([]Conversation, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/conversations/", nil, &raw); err != nil {
		return nil, err
	}
	return listResults[Conversation](raw)
}

// Messages 获取会话历史的一页，最新在前。
func (c *Client) Messages(ctx context.Context, conversationID int64, page int) (Page[Message], error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	var out Page[Message]
	err := c.get(ctx, fmt.Sprintf("/conversations/%d/messages/", conversationID), query, &out)
	return out, err
}

// StartConversation 获取或创建与另一用户的会话。
func (c *Client) StartConversation(ctx context.Context, userID int64) (Conversation, error) {
	var conv Conversation
	err := c.post(ctx, fmt.Sprintf("/conversations/start_with/%d/", userID), nil, &conv)
	return conv, err
}
