package client

import (
	"context"
	"encoding/json"
	"io"
)

// AISettings 是用户的模型配置。
type AISettings struct {
	AIModel string `json:"ai_model"`
	APIKey  string `json:"api_key,omitempty"`
}

// JobPosition 是某行业分组下的一个职位。
type JobPosition struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Industry 按行业分组职位目录，供面试职位选择器使用。
type Industry struct {
	ID   int64         `json:"id"`
	Name string        `json:"name"`
	Jobs []JobPosition `json:"jobs"`
}

// GetAISettings 获取用户的 AI 模型设置。
func (c *Client) GetAISettings(ctx context.Context) (AISettings, error) {
	var out AISettings
	err := c.get(ctx, "/settings/ai/", nil, &out)
	return out, err
}

// UpdateAISettings 更新用户的 AI 模型设置。
func (c *Client) UpdateAISettings(ctx context.Context, settings AISettings) (AISettings, error) {
	var out AISettings
	err := c.patch(ctx, "/settings/ai/", settings, &out)
	return out, err
}

// JobsByIndustry 获取行业/职位目录。
func (c *Client) JobsByIndustry(ctx context.Context) ([]Industry, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/jobs/by-industry/", nil, &raw); err != nil {
		return nil, err
	}
	return listResults[Industry](raw)
}

// UploadFile 将文件推到通用上传端点并返回公开 URL。
// dir 指定目标目录，默认 "uploads"。
func (c *Client) UploadFile(ctx context.Context, filename, dir string, file io.Reader) (string, error) {
	if dir == "" {
		dir = "uploads"
	}
	var out struct {
		FileURL string `json:"file_url"`
	}
	if err := c.postMultipart(ctx, "/upload/", map[string]string{"dir": dir}, "file", filename, file, &out); err != nil {
		return "", err
	}
	return out.FileURL, nil
}
