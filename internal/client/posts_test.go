package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestListPostsSendsFilters(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posts/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("page") != "3" || q.Get("category") != "go" || q.Get("search") != "并发" {
			t.Fatalf("unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":1,"next":null,"previous":null,"results":[{"id":7,"title":"Goroutine 入门","author":{"id":1,"username":"ada"},"tags":[{"id":2,"name":"Go","slug":"go"}],"status":"published"}]}`))
	}))

	posts, err := c.ListPosts(context.Background(), PostQuery{Page: 3, Category: "go", Search: "并发"})
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "Goroutine 入门" || posts[0].Tags[0].Slug != "go" {
		t.Fatalf("unexpected posts %+v", posts)
	}
}

func TestListPostsToleratesBareArray(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"title":"a"},{"id":2,"title":"b"}]`))
	}))

	posts, err := c.ListPosts(context.Background(), PostQuery{})
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 2 || posts[1].ID != 2 {
		t.Fatalf("unexpected posts %+v", posts)
	}
}

func TestCreatePostWithoutCoverSendsJSON(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/posts/" {
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("expected json body, got %q", ct)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["title"] != "Hello" || body["status"] != "draft" {
			t.Fatalf("unexpected body %v", body)
		}
		if _, ok := body["content"]; ok {
			t.Fatal("nil fields must be omitted")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":9,"title":"Hello","status":"draft","content":"","word_count":0,"read_time":0}`))
	}))

	post, err := c.CreatePost(context.Background(), PostData{Title: strPtr("Hello"), Status: strPtr("draft")})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.ID != 9 || post.Title != "Hello" {
		t.Fatalf("unexpected post %+v", post)
	}
}

func TestUpdatePostWithCoverSendsMultipart(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/posts/9/" {
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if r.FormValue("title") != "Hello v2" {
			t.Fatalf("unexpected title %q", r.FormValue("title"))
		}
		if tags := r.MultipartForm.Value["tags"]; len(tags) != 2 || tags[0] != "1" || tags[1] != "4" {
			t.Fatalf("unexpected tags %v", tags)
		}
		file, header, err := r.FormFile("cover_image")
		if err != nil {
			t.Fatalf("cover image missing: %v", err)
		}
		defer file.Close()
		if header.Filename != "cover.png" {
			t.Fatalf("unexpected filename %q", header.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":9,"title":"Hello v2","cover_image":"/media/cover.png"}`))
	}))

	post, err := c.UpdatePost(context.Background(), 9, PostData{
		Title:          strPtr("Hello v2"),
		Tags:           []int64{1, 4},
		CoverImage:     strings.NewReader("png-bytes"),
		CoverImageName: "cover.png",
	})
	if err != nil {
		t.Fatalf("update post: %v", err)
	}
	if post.CoverImage == nil || *post.CoverImage != "/media/cover.png" {
		t.Fatalf("unexpected post %+v", post)
	}
}

func TestCommentsAndReply(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posts/7/comments/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`[{"id":1,"author":{"id":2,"username":"bob"},"content":"nice","parent":null,"replies":[{"id":2,"author":{"id":1,"username":"ada"},"content":"thanks","parent":1,"replies":[]}]}]`))
		case http.MethodPost:
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["content"] != "me too" || body["parent"] != float64(1) {
				t.Fatalf("unexpected body %v", body)
			}
			_, _ = w.Write([]byte(`{"id":3,"content":"me too","parent":1}`))
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	}))

	comments, err := c.Comments(context.Background(), 7)
	if err != nil {
		t.Fatalf("comments: %v", err)
	}
	if len(comments) != 1 || len(comments[0].Replies) != 1 || comments[0].Replies[0].Content != "thanks" {
		t.Fatalf("unexpected comments %+v", comments)
	}

	parent := int64(1)
	reply, err := c.CreateComment(context.Background(), 7, "me too", &parent)
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if reply.ID != 3 || reply.Parent == nil || *reply.Parent != 1 {
		t.Fatalf("unexpected reply %+v", reply)
	}
}
