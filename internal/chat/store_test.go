package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"aiInterview/internal/client"
	"aiInterview/internal/errcode"
)

type fakeSocket struct {
	mu      sync.Mutex
	inbound chan []byte
	written []envelope
	closed  bool
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{inbound: make(chan []byte, 8)}
}

func (f *fakeSocket) ReadMessage() (int, []byte, error) {
	data, ok := <-f.inbound
	if !ok {
		return 0, nil, errors.New("socket closed")
	}
	return 1, data, nil
}

func (f *fakeSocket) WriteJSON(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("write on closed socket")
	}
	f.written = append(f.written, env)
	return nil
}

func (f *fakeSocket) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.inbound)
	}
	return nil
}

func (f *fakeSocket) push(t *testing.T, env envelope) {
	t.Helper()
	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	f.inbound <- raw
}

type fakeDialer struct {
	mu      sync.Mutex
	urls    []string
	sockets []*fakeSocket
	err     error
}

func (f *fakeDialer) Dial(ctx context.Context, urlStr string) (Socket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, urlStr)
	if f.err != nil {
		return nil, f.err
	}
	sock := newFakeSocket()
	f.sockets = append(f.sockets, sock)
	return sock, nil
}

func (f *fakeDialer) dialCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.urls)
}

func (f *fakeDialer) lastSocket() *fakeSocket {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sockets) == 0 {
		return nil
	}
	return f.sockets[len(f.sockets)-1]
}

type fakeChatAPI struct {
	mu            sync.Mutex
	conversations []client.Conversation
	convErr       error
	messages      map[int64][]client.Message
	messageCalls  int
	started       client.Conversation
}

func (f *fakeChatAPI) Conversations(ctx context.Context) ([]client.Conversation, error) {
	if f.convErr != nil {
		return nil, f.convErr
	}
	return f.conversations, nil
}

func (f *fakeChatAPI) Messages(ctx context.Context, conversationID int64, page int) (client.Page[client.Message], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messageCalls++
	return client.Page[client.Message]{Results: f.messages[conversationID]}, nil
}

func (f *fakeChatAPI) StartConversation(ctx context.Context, userID int64) (client.Conversation, error) {
	return f.started, nil
}

func conversation(id int64, me, other int64) client.Conversation {
	return client.Conversation{
		ID: id,
		Participants: []client.UserProfile{
			{ID: me, Username: "me"},
			{ID: other, Username: "peer"},
		},
	}
}

func testStore(t *testing.T, api *fakeChatAPI, dialer *fakeDialer) *Store {
	t.Helper()
	s := NewStore(api, dialer, "ws://chat.test", func() string { return "tok" }, 1, nil)
	if err := s.FetchConversations(context.Background()); err != nil {
		t.Fatalf("fetch conversations: %v", err)
	}
	return s
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestSelectConversationFetchesOnceAndDials(t *testing.T) {
	api := &fakeChatAPI{
		conversations: []client.Conversation{conversation(7, 1, 2)},
		messages:      map[int64][]client.Message{7: {{ID: 1, Content: "hi"}}},
	}
	dialer := &fakeDialer{}
	s := testStore(t, api, dialer)

	if err := s.SelectConversation(context.Background(), 7); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got := s.Messages(7); len(got) != 1 || got[0].Content != "hi" {
		t.Fatalf("history not cached: %+v", got)
	}
	if dialer.dialCount() != 1 {
		t.Fatalf("expected one dial, got %d", dialer.dialCount())
	}
	if want := "ws://chat.test/ws/chat/2/?token=tok"; dialer.urls[0] != want {
		t.Fatalf("dialed %s, want %s", dialer.urls[0], want)
	}
	if s.State() != StateConnected {
		t.Fatalf("expected connected, got %s", s.State())
	}
}

func TestSelectConversationTwiceIsNoOp(t *testing.T) {
	api := &fakeChatAPI{
		conversations: []client.Conversation{conversation(7, 1, 2)},
		messages:      map[int64][]client.Message{},
	}
	dialer := &fakeDialer{}
	s := testStore(t, api, dialer)

	if err := s.SelectConversation(context.Background(), 7); err != nil {
		t.Fatalf("first select: %v", err)
	}
	if err := s.SelectConversation(context.Background(), 7); err != nil {
		t.Fatalf("second select: %v", err)
	}

	if api.messageCalls != 1 {
		t.Fatalf("second select must not refetch, got %d calls", api.messageCalls)
	}
	if dialer.dialCount() != 1 {
		t.Fatalf("second select must not redial, got %d dials", dialer.dialCount())
	}
}

func TestSwitchingConversationsReplacesConnection(t *testing.T) {
	api := &fakeChatAPI{
		conversations: []client.Conversation{conversation(7, 1, 2), conversation(8, 1, 3)},
		messages:      map[int64][]client.Message{},
	}
	dialer := &fakeDialer{}
	s := testStore(t, api, dialer)

	if err := s.SelectConversation(context.Background(), 7); err != nil {
		t.Fatalf("select 7: %v", err)
	}
	first := dialer.lastSocket()
	if err := s.SelectConversation(context.Background(), 8); err != nil {
		t.Fatalf("select 8: %v", err)
	}

	first.mu.Lock()
	closed := first.closed
	first.mu.Unlock()
	if !closed {
		t.Fatal("prior connection must be closed on conversation switch")
	}
	if dialer.dialCount() != 2 {
		t.Fatalf("expected two dials, got %d", dialer.dialCount())
	}
	if s.State() != StateConnected {
		t.Fatalf("expected connected after switch, got %s", s.State())
	}
}

func TestSendMessageWhenDisconnected(t *testing.T) {
	api := &fakeChatAPI{conversations: []client.Conversation{conversation(7, 1, 2)}}
	dialer := &fakeDialer{}
	s := testStore(t, api, dialer)

	err := s.SendMessage("hello")
	if !errcode.Is(err, errcode.KindTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if dialer.dialCount() != 0 {
		t.Fatal("sendMessage must not open a connection")
	}
}

func TestInboundMessageUpdatesCachesAndOrdering(t *testing.T) {
	api := &fakeChatAPI{
		conversations: []client.Conversation{conversation(5, 1, 9), conversation(7, 1, 2)},
		messages:      map[int64][]client.Message{7: {{ID: 1, Content: "old"}}},
	}
	dialer := &fakeDialer{}
	s := testStore(t, api, dialer)
	if err := s.SelectConversation(context.Background(), 7); err != nil {
		t.Fatalf("select: %v", err)
	}

	msg := client.Message{ID: 2, Content: "new", Timestamp: "2026-08-28T10:00:00Z", Sender: client.UserProfile{ID: 2}}
	raw, _ := json.Marshal(msg)
	dialer.lastSocket().push(t, envelope{Type: frameChatMessage, Message: raw})

	waitFor(t, func() bool { return len(s.Messages(7)) == 2 })

	got := s.Messages(7)
	if got[0].Content != "new" {
		t.Fatalf("inbound message must be prepended, got %+v", got)
	}
	convs := s.Conversations()
	if convs[0].ID != 7 {
		t.Fatalf("active conversation must move to the front, got %d", convs[0].ID)
	}
	if convs[0].UnreadCount != 1 {
		t.Fatalf("peer message must bump unread, got %d", convs[0].UnreadCount)
	}
	if convs[0].LatestMessage == nil || convs[0].LatestMessage.Content != "new" {
		t.Fatal("conversation preview not updated")
	}
}

func TestOwnMessageDoesNotBumpUnread(t *testing.T) {
	api := &fakeChatAPI{
		conversations: []client.Conversation{conversation(7, 1, 2)},
		messages:      map[int64][]client.Message{},
	}
	dialer := &fakeDialer{}
	s := testStore(t, api, dialer)
	if err := s.SelectConversation(context.Background(), 7); err != nil {
		t.Fatalf("select: %v", err)
	}

	msg := client.Message{ID: 3, Content: "mine", Sender: client.UserProfile{ID: 1}}
	raw, _ := json.Marshal(msg)
	dialer.lastSocket().push(t, envelope{Type: frameChatMessage, Message: raw})

	waitFor(t, func() bool { return len(s.Messages(7)) == 1 })
	if s.Conversations()[0].UnreadCount != 0 {
		t.Fatal("own message must not bump unread")
	}
}

func TestTypingIndicator(t *testing.T) {
	api := &fakeChatAPI{
		conversations: []client.Conversation{conversation(7, 1, 2)},
		messages:      map[int64][]client.Message{},
	}
	dialer := &fakeDialer{}
	s := testStore(t, api, dialer)
	if err := s.SelectConversation(context.Background(), 7); err != nil {
		t.Fatalf("select: %v", err)
	}

	typing := true
	dialer.lastSocket().push(t, envelope{Type: frameTypingIndicator, IsTyping: &typing})
	waitFor(t, s.PeerTyping)

	typing = false
	dialer.lastSocket().push(t, envelope{Type: frameTypingIndicator, IsTyping: &typing})
	waitFor(t, func() bool { return !s.PeerTyping() })
}

func TestFetchConversationsFailureKeepsList(t *testing.T) {
	api := &fakeChatAPI{conversations: []client.Conversation{conversation(7, 1, 2)}}
	dialer := &fakeDialer{}
	s := testStore(t, api, dialer)

	api.convErr = errors.New("backend down")
	if err := s.FetchConversations(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
	if len(s.Conversations()) != 1 {
		t.Fatal("failed fetch must keep the prior list")
	}
}

func TestDisconnectRetainsCaches(t *testing.T) {
	api := &fakeChatAPI{
		conversations: []client.Conversation{conversation(7, 1, 2)},
		messages:      map[int64][]client.Message{7: {{ID: 1, Content: "kept"}}},
	}
	dialer := &fakeDialer{}
	s := testStore(t, api, dialer)
	if err := s.SelectConversation(context.Background(), 7); err != nil {
		t.Fatalf("select: %v", err)
	}

	s.Disconnect()

	if s.State() != StateDisconnected {
		t.Fatalf("expected disconnected, got %s", s.State())
	}
	if s.SelectedConversation() != 0 {
		t.Fatal("disconnect must clear the selection")
	}
	if len(s.Messages(7)) != 1 {
		t.Fatal("disconnect must retain the message cache")
	}
	if len(s.Conversations()) != 1 {
		t.Fatal("disconnect must retain the conversation list")
	}
}

func TestStartAndSelectConversation(t *testing.T) {
	api := &fakeChatAPI{
		conversations: []client.Conversation{conversation(7, 1, 2)},
		messages:      map[int64][]client.Message{},
		started:       conversation(9, 1, 4),
	}
	dialer := &fakeDialer{}
	s := testStore(t, api, dialer)

	id, err := s.StartAndSelectConversation(context.Background(), 4)
	if err != nil {
		t.Fatalf("start and select: %v", err)
	}
	if id != 9 {
		t.Fatalf("unexpected conversation id %d", id)
	}
	if convs := s.Conversations(); convs[0].ID != 9 {
		t.Fatalf("new conversation must be at the front, got %d", convs[0].ID)
	}
	if s.SelectedConversation() != 9 {
		t.Fatal("new conversation must be selected")
	}
}

func TestDialFailureSetsErrorState(t *testing.T) {
	api := &fakeChatAPI{
		conversations: []client.Conversation{conversation(7, 1, 2)},
		messages:      map[int64][]client.Message{},
	}
	dialer := &fakeDialer{err: errors.New("refused")}
	s := testStore(t, api, dialer)

	err := s.SelectConversation(context.Background(), 7)
	if !errcode.Is(err, errcode.KindTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if s.State() != StateError {
		t.Fatalf("expected error state, got %s", s.State())
	}
}
