package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"
)

// ConnState 是实时连接的生命周期状态。
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateError        ConnState = "error"
)

// envelope 是双向 JSON 帧的结构。Message 入站时携带完整消息对象，
// 出站时只是内容字符串。
type envelope struct {
	Type     string          `json:"type"`
	Message  json.RawMessage `json:"message,omitempty"`
	IsTyping *bool           `json:"is_typing,omitempty"`
}

const (
	frameChatMessage     = "chat_message"
	frameTypingIndicator = "typing_indicator"
)

// Socket 是单个实时连接的最小接口。
type Socket interface {
	ReadMessage() (int, []byte, error)
	WriteJSON(v any) error
	Close() error
}

// Dialer 负责向聊天端点建立实时连接。
type Dialer interface {
	Dial(ctx context.Context, urlStr string) (Socket, error)
}

type gorillaDialer struct{}

// NewDialer 返回生产环境使用的 gorilla/websocket 拨号器。
func NewDialer() Dialer { return gorillaDialer{} }

func (gorillaDialer) Dial(ctx context.Context, urlStr string) (Socket, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, urlStr, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// chatURL 构建按对端划分的端点，token 放在查询串里，
// 与后端 websocket 中间件期望的方式一致。
func chatURL(wsBase string, otherUserID int64, token string) string {
	u := fmt.Sprintf("%s/ws/chat/%d/", wsBase, otherUserID)
	if token != "" {
		u += "?token=" + url.QueryEscape(token)
	}
	return u
}
