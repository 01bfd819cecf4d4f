package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aiInterview/internal/errcode"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c := New(server.URL, 5*time.Second, func() string { return "test-token" }, nil)
	return c, server
}

func TestLoginSendsCredentialsAndDecodesTokens(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login/" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body LoginData
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Email != "ada@example.com" {
			t.Fatalf("unexpected email %q", body.Email)
		}
		_ = json.NewEncoder(w).Encode(TokenPair{Access: "acc", Refresh: "ref"})
	}))

	pair, err := c.Login(context.Background(), LoginData{Email: "ada@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.Access != "acc" || pair.Refresh != "ref" {
		t.Fatalf("unexpected token pair %+v", pair)
	}
}

func TestBearerTokenInjected(t *testing.T) {
	var got string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(UserProfile{ID: 1})
	}))

	if _, err := c.Profile(context.Background()); err != nil {
		t.Fatalf("profile: %v", err)
	}
	if got != "Bearer test-token" {
		t.Fatalf("expected bearer header, got %q", got)
	}
}

func TestBackendErrorMessageExtracted(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"no such resume"}`))
	}))

	_, err := c.GetResume(context.Background(), 42)
	if !errcode.Is(err, errcode.KindNotFound) {
		t.Fatalf("expected not-found kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "no such resume") {
		t.Fatalf("expected backend detail in message, got %v", err)
	}
}

func TestTransportFailureMapsToTransportKind(t *testing.T) {
	c := New("http://127.0.0.1:1", 200*time.Millisecond, nil, nil)
	_, err := c.ListResumes(context.Background())
	if !errcode.Is(err, errcode.KindTransport) {
		t.Fatalf("expected transport kind, got %v", err)
	}
}

func TestListResumesToleratesBothShapes(t *testing.T) {
	flat := `[{"id":1,"title":"one"},{"id":2,"title":"two"}]`
	paged := `{"count":2,"next":null,"previous":null,"results":[{"id":1,"title":"one"},{"id":2,"title":"two"}]}`

	for _, payload := range []string{flat, paged} {
		body := payload
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		resumes, err := c.ListResumes(context.Background())
		if err != nil {
			t.Fatalf("list resumes: %v", err)
		}
		if len(resumes) != 2 || resumes[1].Title != "two" {
			t.Fatalf("unexpected resumes %+v", resumes)
		}
	}
}

func TestMessagesPagination(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/conversations/7/messages/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("page") != "1" {
			t.Fatalf("expected page=1, got %q", r.URL.Query().Get("page"))
		}
		_, _ = w.Write([]byte(`{"count":1,"results":[{"id":10,"content":"hello"}]}`))
	}))

	page, err := c.Messages(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if page.Count != 1 || page.Results[0].Content != "hello" {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestUpdateResumeSendsPatch(t *testing.T) {
	var method string
	var body map[string]json.RawMessage
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"id":5,"title":"kept"}`))
	}))

	name := "sidebar-darkblue"
	_, err := c.UpdateResume(context.Background(), 5, ResumePatch{
		TemplateName: &name,
		ContentJSON:  json.RawMessage(`{"sidebar":[],"main":[]}`),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if method != http.MethodPatch {
		t.Fatalf("expected PATCH, got %s", method)
	}
	if _, ok := body["title"]; ok {
		t.Fatal("nil title should be omitted from the patch")
	}
	if string(body["template_name"]) != `"sidebar-darkblue"` {
		t.Fatalf("template_name not sent: %s", body["template_name"])
	}
}

func TestUploadAvatarMultipart(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Fatalf("expected multipart request, got %s", r.Header.Get("Content-Type"))
		}
		file, header, err := r.FormFile("avatar")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "me.png" {
			t.Fatalf("unexpected filename %s", header.Filename)
		}
		_, _ = w.Write([]byte(`{"avatar_url":"https://cdn.example.com/me.png"}`))
	}))

	url, err := c.UploadAvatar(context.Background(), "me.png", strings.NewReader("fake-png"))
	if err != nil {
		t.Fatalf("upload avatar: %v", err)
	}
	if url != "https://cdn.example.com/me.png" {
		t.Fatalf("unexpected url %s", url)
	}
}
