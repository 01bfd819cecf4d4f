package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"aiInterview/internal/errcode"
	"aiInterview/internal/metrics"
)

// AnalysisFrame 是答题期间采样的一帧表情快照。
type AnalysisFrame struct {
	Timestamp float64            `json:"timestamp"`
	Emotions  map[string]float64 `json:"emotions"`
	Action    string             `json:"action,omitempty"`
}

// InterviewQuestion 是一场面试中的一道题目。
type InterviewQuestion struct {
	ID           int64           `json:"id"`
	QuestionText string          `json:"question_text"`
	Sequence     int             `json:"sequence"`
	AnswerText   string          `json:"answer_text"`
	AIFeedback   *struct {
		Feedback string `json:"feedback"`
	} `json:"ai_feedback,omitempty"`
	AnalysisData []AnalysisFrame `json:"analysis_data,omitempty"`
}

// InterviewSession 是一场模拟面试。
type InterviewSession struct {
	ID            string              `json:"id"`
	User          UserProfile         `json:"user"`
	JobPosition   string              `json:"job_position"`
	Status        string              `json:"status"`
	QuestionCount int                 `json:"question_count"`
	Questions     []InterviewQuestion `json:"questions"`
	StartedAt     string              `json:"started_at"`
}

// StartInterviewData 配置一场新面试。
type StartInterviewData struct {
	JobPosition   string `json:"job_position"`
	ResumeID      int64  `json:"resume_id,omitempty"`
	QuestionCount int    `json:"question_count,omitempty"`
}

// SubmitAnswerData 承载一次作答及可选的表情分析数据。
type SubmitAnswerData struct {
	QuestionID   int64           `json:"question_id"`
	AnswerText   string          `json:"answer_text"`
	AnalysisData []AnalysisFrame `json:"analysis_data,omitempty"`
}

// UnfinishedCheck 报告用户是否有进行中的面试。
type UnfinishedCheck struct {
	HasUnfinished bool   `json:"has_unfinished"`
	SessionID     string `json:"session_id,omitempty"`
	JobPosition   string `json:"job_position,omitempty"`
}

// StreamResult 是一次提交作答的结果。后端直接结束面试而非流式返回
// 反馈时 Finished 为 true。
type StreamResult struct {
	Feedback string
	Finished bool
}

// AbilityScore 是综合报告中单项能力的打分。
type AbilityScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// KeywordAnalysis 是报告中的关键词命中情况。
type KeywordAnalysis struct {
	MatchedKeywords []string `json:"matched_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
	AnalysisComment string   `json:"analysis_comment"`
}

// StarAnalysisItem 是按题目评估的 STAR 法则符合度。
type StarAnalysisItem struct {
	QuestionSequence     int    `json:"question_sequence"`
	IsBehavioralQuestion bool   `json:"is_behavioral_question"`
	ConformsToStar       bool   `json:"conforms_to_star"`
	StarFeedback         string `json:"star_feedback"`
}

// InterviewReport 是面试结束后生成的综合报告，
// EmotionAnalysis 为答题期间采样的情绪时间序列。
type InterviewReport struct {
	OverallScore           int                `json:"overall_score"`
	OverallComment         string             `json:"overall_comment"`
	AbilityScores          []AbilityScore     `json:"ability_scores"`
	StrengthAnalysis       string             `json:"strength_analysis"`
	WeaknessAnalysis       string             `json:"weakness_analysis"`
	ImprovementSuggestions []string           `json:"improvement_suggestions"`
	KeywordAnalysis        KeywordAnalysis    `json:"keyword_analysis"`
	StarAnalysis           []StarAnalysisItem `json:"star_analysis"`
	EmotionAnalysis        []AnalysisFrame    `json:"emotion_analysis"`
}

// StartInterview 开始一场面试。force 会放弃任何未完成的面试。
func (c *Client) StartInterview(ctx context.Context, data StartInterviewData, force bool) (InterviewSession, error) {
	var session InterviewSession
	path := "/interviews/start/?force=" + strconv.FormatBool(force)
	err := c.post(ctx, path, data, &session)
	return session, err
}

// GetInterviewSession 获取一场面试及其全部题目。
func (c *Client) GetInterviewSession(ctx context.Context, sessionID string) (InterviewSession, error) {
	var session InterviewSession
	err := c.get(ctx, fmt.Sprintf("/interviews/%s/", url.PathEscape(sessionID)), nil, &session)
	return session, err
}

// ListInterviews 获取历史面试的一页，最近在前。
func (c *Client) ListInterviews(ctx context.Context, page int) (Page[InterviewSession], error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	var out Page[InterviewSession]
	err := c.get(ctx, "/interviews/", query, &out)
	return out, err
}

// FinishInterview 结束一场面试并返回综合报告。
// 对已结束的面试重复调用返回既有报告，可用于报告回看。
func (c *Client) FinishInterview(ctx context.Context, sessionID string) (InterviewReport, error) {
	var report InterviewReport
	err := c.post(ctx, fmt.Sprintf("/interviews/%s/finish/", url.PathEscape(sessionID)), nil, &report)
	return report, err
}

// CheckUnfinished 查找被中断的进行中面试。
func (c *Client) CheckUnfinished(ctx context.Context) (UnfinishedCheck, error) {
	var out UnfinishedCheck
	err := c.get(ctx, "/interviews/check-unfinished/", nil, &out)
	return out, err
}

// AbandonUnfinished 放弃用户进行中的面试。
func (c *Client) AbandonUnfinished(ctx context.Context) error {
	return c.post(ctx, "/interviews/abandon-unfinished/", nil, nil)
}

// ReferenceAnswer 获取某道题的 AI 参考答案。
func (c *Client) ReferenceAnswer(ctx context.Context, questionID int64) (string, error) {
	var out struct {
		Answer string `json:"answer"`
	}
	err := c.get(ctx, fmt.Sprintf("/interviews/questions/%d/reference-answer/", questionID), nil, &out)
	return out.Answer, err
}

// SubmitAnswerStream 提交一次作答。后端要么返回单个 JSON 对象（面试结束），
// 要么以分块文本流式返回增量反馈，两者靠 Content-Type 区分。
// 流式情况下 X-Feedback 头携带反馈摘要，onDelta 按序接收每个分块。
func (c *Client) SubmitAnswerStream(ctx context.Context, sessionID string, data SubmitAnswerData, onDelta func(chunk string)) (StreamResult, error) {
	path := fmt.Sprintf("/interviews/%s/submit-answer-stream/", url.PathEscape(sessionID))

	payload, err := json.Marshal(data)
	if err != nil {
		return StreamResult{}, fmt.Errorf("encode answer: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, strings.NewReader(string(payload)))
	if err != nil {
		return StreamResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveAPIRequest(http.MethodPost, path, 0, time.Since(start))
		return StreamResult{}, errcode.Transport(err)
	}
	defer resp.Body.Close()
	metrics.ObserveAPIRequest(http.MethodPost, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return StreamResult{}, c.responseError(http.MethodPost, path, resp)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var concluded struct {
			Feedback          string `json:"feedback"`
			InterviewFinished bool   `json:"interview_finished"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&concluded); err != nil {
			return StreamResult{}, errcode.Wrap(errcode.KindTransport, "unexpected response from server", fmt.Errorf("decode conclusion: %w", err))
		}
		return StreamResult{Feedback: concluded.Feedback, Finished: concluded.InterviewFinished}, nil
	}

	feedback := resp.Header.Get("X-Feedback")
	buf := make([]byte, 4*1024)
	var pending []byte
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			// 分块边界可能落在多字节 UTF-8 序列中间，
			// 不完整的尾部留到下一次读取再发。
			cut := runeBoundary(pending)
			if cut > 0 && onDelta != nil {
				onDelta(string(pending[:cut]))
			}
			pending = append(pending[:0], pending[cut:]...)
		}
		if readErr == io.EOF {
			if len(pending) > 0 && onDelta != nil {
				onDelta(string(pending))
			}
			break
		}
		if readErr != nil {
			return StreamResult{}, errcode.Wrap(errcode.KindTransport, "feedback stream interrupted", readErr)
		}
	}
	return StreamResult{Feedback: feedback, Finished: false}, nil
}

// runeBoundary 返回 p 中最后一个完整 UTF-8 序列的结束位置。
func runeBoundary(p []byte) int {
	for i := len(p) - 1; i >= 0 && i > len(p)-utf8.UTFMax; i-- {
		if utf8.RuneStart(p[i]) {
			if !utf8.FullRune(p[i:]) {
				return i
			}
			break
		}
	}
	return len(p)
}
