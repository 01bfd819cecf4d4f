// Package chat 维护会话列表、按会话划分的消息缓存，
// 以及用于实时投递的唯一一条活动连接。
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"aiInterview/internal/client"
	"aiInterview/internal/errcode"
)

// api 是 store 需要的后端客户端子集。
type api interface {
	Conversations(ctx context.Context) ([]client.Conversation, error)
	Messages(ctx context.Context, conversationID int64, page int) (client.Page[client.Message], error)
	StartConversation(ctx context.Context, userID int64) (client.Conversation, error)
}

// Store 持有已登录用户的聊天状态。同一时刻至多一条活动连接；
// 入站帧由单个 goroutine 按到达顺序应用。
type Store struct {
	api    api
	dialer Dialer
	wsBase string
	token  client.TokenSource
	logger *slog.Logger

	mu            sync.Mutex
	currentUserID int64
	conversations []client.Conversation
	messages      map[int64][]client.Message // 最新在前
	fetched       map[int64]bool
	selectedID    int64
	typing        bool
	state         ConnState
	conn          Socket
	connGen       uint64
}

// NewStore 为指定用户构建处于断开状态的 store。
func NewStore(a api, dialer Dialer, wsBase string, token client.TokenSource, currentUserID int64, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		api:           a,
		dialer:        dialer,
		wsBase:        wsBase,
		token:         token,
		logger:        logger,
		currentUserID: currentUserID,
		messages:      map[int64][]client.Message{},
		fetched:       map[int64]bool{},
		state:         StateDisconnected,
	}
}

// FetchConversations 整体替换会话列表。失败时保留旧列表并返回错误。
func (s *Store) FetchConversations(ctx context.Context) error {
	convs, err := s.api.Conversations(ctx)
	if err != nil {
		s.logger.Warn("conversation fetch failed", slog.Any("error", err))
		return err
	}
	s.mu.Lock()
	s.conversations = convs
	s.mu.Unlock()
	return nil
}

// Conversations 返回缓存的会话列表，最近活跃在前。
func (s *Store) Conversations() []client.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]client.Conversation(nil), s.conversations...)
}

// Messages 返回某会话的缓存消息，最新在前。
func (s *Store) Messages(conversationID int64) []client.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]client.Message(nil), s.messages[conversationID]...)
}

// SelectedConversation 返回当前选中的会话 id，无选中时为零。
func (s *Store) SelectedConversation() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

// State 返回实时连接状态。
func (s *Store) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PeerTyping 报告对方是否正在输入。
func (s *Store) PeerTyping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

// SelectConversation 将会话设为当前会话。重复选中同一会话不做任何事。
// 其历史第一页只在首次选中时拉取，缓存从不淘汰。
// 活动连接总是重新建立，并定向到对端用户。
func (s *Store) SelectConversation(ctx context.Context, conversationID int64) error {
	s.mu.Lock()
	if s.selectedID == conversationID {
		s.mu.Unlock()
		return nil
	}
	conv, ok := s.conversationLocked(conversationID)
	if !ok {
		s.mu.Unlock()
		return errcode.New(errcode.KindLookup, "unknown conversation")
	}
	peer, ok := conv.OtherParticipant(s.currentUserID)
	if !ok {
		s.mu.Unlock()
		return errcode.New(errcode.KindLookup, "conversation has no other participant")
	}
	s.selectedID = conversationID
	s.typing = false
	needFetch := !s.fetched[conversationID]
	s.mu.Unlock()

	if needFetch {
		page, err := s.api.Messages(ctx, conversationID, 1)
		if err != nil {
			s.logger.Warn("message history fetch failed",
				slog.Int64("conversation_id", conversationID), slog.Any("error", err))
		} else {
			s.mu.Lock()
			s.messages[conversationID] = page.Results
			s.fetched[conversationID] = true
			s.mu.Unlock()
		}
	}

	return s.connect(ctx, peer.ID)
}

// StartAndSelectConversation 获取或创建与另一用户的会话，
// 置于列表最前并选中。
func (s *Store) StartAndSelectConversation(ctx context.Context, userID int64) (int64, error) {
	conv, err := s.api.StartConversation(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	if _, ok := s.conversationLocked(conv.ID); !ok {
		s.conversations = append([]client.Conversation{conv}, s.conversations...)
	}
	s.mu.Unlock()
	return conv.ID, s.SelectConversation(ctx, conv.ID)
}

// SendMessage 通过活动连接推送消息。连接未打开时直接报错，不排队。
func (s *Store) SendMessage(content string) error {
	conn, err := s.connectedSocket()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if err := conn.WriteJSON(envelope{Type: frameChatMessage, Message: raw}); err != nil {
		return errcode.Wrap(errcode.KindTransport, "message not sent", err)
	}
	return nil
}

// SendTypingIndicator 通过活动连接推送输入状态。
func (s *Store) SendTypingIndicator(isTyping bool) error {
	conn, err := s.connectedSocket()
	if err != nil {
		return err
	}
	if err := conn.WriteJSON(envelope{Type: frameTypingIndicator, IsTyping: &isTyping}); err != nil {
		return errcode.Wrap(errcode.KindTransport, "typing indicator not sent", err)
	}
	return nil
}

// Disconnect 关闭连接并清除选中与输入状态。
// 消息与会话缓存在会话期内保留。
func (s *Store) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeConnLocked()
	s.connGen++ // 使已关闭连接的读循环失效
	s.state = StateDisconnected
	s.selectedID = 0
	s.typing = false
}

func (s *Store) connectedSocket() (Socket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnected || s.conn == nil {
		return nil, errcode.New(errcode.KindTransport, "chat is not connected")
	}
	return s.conn, nil
}

// connect 用一条定向到对端用户的新连接替换现有连接。
func (s *Store) connect(ctx context.Context, otherUserID int64) error {
	s.mu.Lock()
	s.closeConnLocked()
	s.connGen++
	gen := s.connGen
	s.state = StateConnecting
	token := ""
	if s.token != nil {
		token = s.token()
	}
	s.mu.Unlock()

	conn, err := s.dialer.Dial(ctx, chatURL(s.wsBase, otherUserID, token))

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.connGen {
		// 本次拨号已被更新的选中取代。
		if conn != nil {
			_ = conn.Close()
		}
		return nil
	}
	if err != nil {
		s.state = StateError
		s.logger.Warn("chat dial failed", slog.Int64("peer_id", otherUserID), slog.Any("error", err))
		return errcode.Wrap(errcode.KindTransport, "chat connection failed", err)
	}
	s.conn = conn
	s.state = StateConnected
	go s.readLoop(conn, gen)
	return nil
}

// readLoop 是归约器：独占一条连接的入站侧，按到达顺序应用每一帧。
func (s *Store) readLoop(conn Socket, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			if gen == s.connGen {
				s.state = StateError
				s.conn = nil
				s.logger.Warn("chat connection lost", slog.Any("error", err))
			}
			s.mu.Unlock()
			return
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.logger.Warn("unreadable chat frame", slog.Any("error", err))
			continue
		}
		s.apply(gen, env)
	}
}

func (s *Store) apply(gen uint64, env envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.connGen {
		return
	}
	switch env.Type {
	case frameChatMessage:
		var msg client.Message
		if err := json.Unmarshal(env.Message, &msg); err != nil {
			s.logger.Warn("unreadable chat message", slog.Any("error", err))
			return
		}
		s.applyMessageLocked(msg)
	case frameTypingIndicator:
		if env.IsTyping != nil {
			s.typing = *env.IsTyping
		}
	default:
		s.logger.Debug("ignoring chat frame", slog.String("type", env.Type))
	}
}

// applyMessageLocked 把消息插入当前会话缓存的最前，
// 刷新该会话的预览并移到列表最前。
func (s *Store) applyMessageLocked(msg client.Message) {
	convID := s.selectedID
	if convID == 0 {
		return
	}
	s.messages[convID] = append([]client.Message{msg}, s.messages[convID]...)

	for i := range s.conversations {
		if s.conversations[i].ID != convID {
			continue
		}
		conv := s.conversations[i]
		m := msg
		conv.LatestMessage = &m
		conv.UpdatedAt = msg.Timestamp
		if msg.Sender.ID != s.currentUserID {
			conv.UnreadCount++
		}
		s.conversations = append(s.conversations[:i], s.conversations[i+1:]...)
		s.conversations = append([]client.Conversation{conv}, s.conversations...)
		return
	}
}

func (s *Store) conversationLocked(id int64) (client.Conversation, bool) {
	for _, c := range s.conversations {
		if c.ID == id {
			return c, true
		}
	}
	return client.Conversation{}, false
}

func (s *Store) closeConnLocked() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}
