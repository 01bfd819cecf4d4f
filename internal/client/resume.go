package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
)

// Resume 是一条简历记录。ContentJSON 是不透明的编辑器文档，
// 由编辑器容错解码（历史平铺数组或分栏对象），因此这里保持 raw。
type Resume struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	IsDefault     bool            `json:"is_default"`
	Status        string          `json:"status"`
	TemplateName  string          `json:"template_name,omitempty"`
	ContentJSON   json.RawMessage `json:"content_json,omitempty"`
	FileURL       string          `json:"file_url,omitempty"`
	ParsedContent string          `json:"parsed_content,omitempty"`
	CreatedAt     string          `json:"created_at,omitempty"`
	UpdatedAt     string          `json:"updated_at,omitempty"`
}

// ResumePatch 是部分更新；nil 字段后端保持不动。
// 编辑器保存时发送 ContentJSON 与 TemplateName。
type ResumePatch struct {
	Title        *string         `json:"title,omitempty"`
	Status       *string         `json:"status,omitempty"`
	IsDefault    *bool           `json:"is_default,omitempty"`
	TemplateName *string         `json:"template_name,omitempty"`
	ContentJSON  json.RawMessage `json:"content_json,omitempty"`
}

// AnalysisReport 是简历与职位描述匹配的 AI 分析结果。
type AnalysisReport struct {
	OverallScore    int `json:"overall_score"`
	KeywordAnalysis struct {
		JDKeywords      []string `json:"jd_keywords"`
		MatchedKeywords []string `json:"matched_keywords"`
		MissingKeywords []string `json:"missing_keywords"`
	} `json:"keyword_analysis"`
	Strengths  []string `json:"strengths_analysis"`
	Weaknesses []string `json:"weaknesses_analysis"`
	Suggestions []struct {
		Module     string `json:"module"`
		Suggestion string `json:"suggestion"`
	} `json:"suggestions"`
}

// ListResumes 返回当前用户的全部简历。
func (c *Client) ListResumes(ctx context.Context) ([]Resume, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/resumes/", nil, &raw); err != nil {
		return nil, err
	}
	return listResults[Resume](raw)
}

// CreateResume 创建一份在线（非文件）简历。
func (c *Client) CreateResume(ctx context.Context, title, status string) (Resume, error) {
	var created Resume
	err := c.post(ctx, "/resumes/", map[string]string{"title": title, "status": status}, &created)
	return created, err
}

// CreateResumeFromFile 上传简历文件并为其创建记录。
func (c *Client) CreateResumeFromFile(ctx context.Context, title, filename string, file io.Reader) (Resume, error) {
	var created Resume
	err := c.postMultipart(ctx, "/resumes/", map[string]string{"title": title}, "file", filename, file, &created)
	return created, err
}

// GetResume 获取一份简历及其持久化的编辑器文档。
func (c *Client) GetResume(ctx context.Context, id int64) (Resume, error) {
	var out Resume
	err := c.get(ctx, fmt.Sprintf("/resumes/%d/", id), nil, &out)
	return out, err
}

// UpdateResume 发送部分更新并返回存储后的记录。
func (c *Client) UpdateResume(ctx context.Context, id int64, patch ResumePatch) (Resume, error) {
	var out Resume
	err := c.patch(ctx, fmt.Sprintf("/resumes/%d/", id), patch, &out)
	return out, err
}

// DeleteResume 删除一份简历。
func (c *Client) DeleteResume(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/resumes/%d/", id))
}

// PolishDescription 让 AI 润色一段模块描述。
func (c *Client) PolishDescription(ctx context.Context, htmlContent, jobPosition string) (string, error) {
	var out struct {
		PolishedHTML string `json:"polished_html"`
	}
	body := map[string]string{"html_content": htmlContent}
	if jobPosition != "" {
		body["job_position"] = jobPosition
	}
	if err := c.post(ctx, "/polish-description/", body, &out); err != nil {
		return "", err
	}
	return out.PolishedHTML, nil
}

// AnalyzeResume 将简历与职位描述比对并打分。
func (c *Client) AnalyzeResume(ctx context.Context, resumeID int64, jdText string) (AnalysisReport, error) {
	var report AnalysisReport
	body := map[string]any{"resume_id": resumeID, "jd_text": jdText}
	err := c.post(ctx, "/analyze-resume/", body, &report)
	return report, err
}

// AnalysisReportItem 是一次简历分析的存档记录。
type AnalysisReportItem struct {
	ID           string         `json:"id"`
	User         int64          `json:"user"`
	Resume       int64          `json:"resume"`
	JDText       string         `json:"jd_text"`
	ReportData   AnalysisReport `json:"report_data"`
	OverallScore int            `json:"overall_score"`
	CreatedAt    string         `json:"created_at"`
}

// ListAnalysisReports 获取历史分析报告的一页，最近在前。
func (c *Client) ListAnalysisReports(ctx context.Context, page int) (Page[AnalysisReportItem], error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	var out Page[AnalysisReportItem]
	err := c.get(ctx, "/analysis-reports/", query, &out)
	return out, err
}

// GetAnalysisReport 获取单份存档的分析报告。
func (c *Client) GetAnalysisReport(ctx context.Context, reportID string) (AnalysisReportItem, error) {
	var out AnalysisReportItem
	err := c.get(ctx, fmt.Sprintf("/analysis-reports/%s/", url.PathEscape(reportID)), nil, &out)
	return out, err
}
