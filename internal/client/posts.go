package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Author 是文章或评论的作者摘要。
type Author struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar"`
}

// Category 是文章分类。
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Tag 是文章标签。
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Post 是列表视图中的一篇文章。
type Post struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Author       Author    `json:"author"`
	CoverImage   *string   `json:"cover_image"`
	Excerpt      string    `json:"excerpt"`
	Category     *Category `json:"category"`
	Tags         []Tag     `json:"tags"`
	ViewCount    int       `json:"view_count"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	PublishedAt  string    `json:"published_at"`
	Status       string    `json:"status"`
}

// PostDetail 在列表字段之上附加正文与阅读统计。
type PostDetail struct {
	Post
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
	ReadTime  int    `json:"read_time"`
}

// Comment 是文章下的一条评论，Replies 为子回复。
type Comment struct {
	ID        int64     `json:"id"`
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt string    `json:"created_at"`
	Parent    *int64    `json:"parent"`
	Replies   []Comment `json:"replies"`
}

// PostData 是文章的创建/更新载荷；nil 字段后端保持不动。
// CoverImage 非 nil 时整个请求改走 multipart，封面文件随表单一并提交。
type PostData struct {
	Title    *string
	Content  *string
	Excerpt  *string
	Status   *string
	Category *int64
	Tags     []int64

	CoverImage     io.Reader
	CoverImageName string
}

func (d PostData) jsonBody() map[string]any {
	body := map[string]any{}
	if d.Title != nil {
		body["title"] = *d.Title
	}
	if d.Content != nil {
		body["content"] = *d.Content
	}
	if d.Excerpt != nil {
		body["excerpt"] = *d.Excerpt
	}
	if d.Status != nil {
		body["status"] = *d.Status
	}
	if d.Category != nil {
		body["category"] = *d.Category
	}
	if d.Tags != nil {
		body["tags"] = d.Tags
	}
	return body
}

func (d PostData) formFields() url.Values {
	form := url.Values{}
	if d.Title != nil {
		form.Set("title", *d.Title)
	}
	if d.Content != nil {
		form.Set("content", *d.Content)
	}
	if d.Excerpt != nil {
		form.Set("excerpt", *d.Excerpt)
	}
	if d.Status != nil {
		form.Set("status", *d.Status)
	}
	if d.Category != nil {
		form.Set("category", strconv.FormatInt(*d.Category, 10))
	}
	for _, tag := range d.Tags {
		form.Add("tags", strconv.FormatInt(tag, 10))
	}
	return form
}

// PostQuery 过滤文章列表；零值字段不参与过滤。
type PostQuery struct {
	Page     int
	Category string
	Tag      string
	Search   string
}

func (q PostQuery) values() url.Values {
	query := url.Values{}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Category != "" {
		query.Set("category", q.Category)
	}
	if q.Tag != "" {
		query.Set("tag", q.Tag)
	}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	return query
}

// ListPosts 获取文章列表。
func (c *Client) ListPosts(ctx context.Context, q PostQuery) ([]Post, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/posts/", q.values(), &raw); err != nil {
		return nil, err
	}
	return listResults[Post](raw)
}

// GetPost 获取一篇文章的完整内容。
func (c *Client) GetPost(ctx context.Context, id int64) (PostDetail, error) {
	var out PostDetail
	err := c.get(ctx, fmt.Sprintf("/posts/%d/", id), nil, &out)
	return out, err
}

// CreatePost 发布一篇文章，带封面文件时走 multipart。
func (c *Client) CreatePost(ctx context.Context, data PostData) (PostDetail, error) {
	return c.submitPost(ctx, http.MethodPost, "/posts/", data)
}

// UpdatePost 部分更新一篇文章，带封面文件时走 multipart。
func (c *Client) UpdatePost(ctx context.Context, id int64, data PostData) (PostDetail, error) {
	return c.submitPost(ctx, http.MethodPatch, fmt.Sprintf("/posts/%d/", id), data)
}

func (c *Client) submitPost(ctx context.Context, method, path string, data PostData) (PostDetail, error) {
	var out PostDetail
	if data.CoverImage != nil {
		err := c.doMultipart(ctx, method, path, data.formFields(), "cover_image", data.CoverImageName, data.CoverImage, &out)
		return out, err
	}
	err := c.do(ctx, method, path, nil, data.jsonBody(), &out)
	return out, err
}

// DeletePost 删除一篇文章。
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/posts/%d/", id))
}

// Comments 获取一篇文章的评论树。
func (c *Client) Comments(ctx context.Context, postID int64) ([]Comment, error) {
	var raw json.RawMessage
	if err := c.get(ctx, fmt.Sprintf("/posts/%d/comments/", postID), nil, &raw); err != nil {
		return nil, err
	}
	return listResults[Comment](raw)
}

// CreateComment 在文章下发表评论；parent 非 nil 时作为对该评论的回复。
func (c *Client) CreateComment(ctx context.Context, postID int64, content string, parent *int64) (Comment, error) {
	body := map[string]any{"content": content}
	if parent != nil {
		body["parent"] = *parent
	}
	var out Comment
	err := c.post(ctx, fmt.Sprintf("/posts/%d/comments/", postID), body, &out)
	return out, err
}

// Categories 获取全部文章分类。
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/categories/", nil, &raw); err != nil {
		return nil, err
	}
	return listResults[Category](raw)
}

// Tags 获取全部文章标签。
func (c *Client) Tags(ctx context.Context) ([]Tag, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/tags/", nil, &raw); err != nil {
		return nil, err
	}
	return listResults[Tag](raw)
}
