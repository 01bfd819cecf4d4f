// Package editor 持有正在编辑的内存简历文档：分区布局、选中模块与
// 当前模板。结构性操作同步在内存中完成；只有 Load 与 Save 访问后端。
package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"aiInterview/internal/client"
	"aiInterview/internal/errcode"
	"aiInterview/internal/resume"
	"aiInterview/internal/template"
)

// resumeAPI 是 store 需要的后端客户端子集。
type resumeAPI interface {
	GetResume(ctx context.Context, id int64) (client.Resume, error)
	UpdateResume(ctx context.Context, id int64, patch client.ResumePatch) (client.Resume, error)
}

// DraftWriter 在保存失败时接收文档的本地快照，
// 让已做的编辑在进程退出后仍然保留。
type DraftWriter interface {
	Put(ctx context.Context, resumeID int64, templateID string, layout json.RawMessage) error
}

// Store 是简历编辑器的文档 store。并发安全；
// 重叠的 Load 由代次计数裁决，过期响应直接丢弃。
type Store struct {
	api    resumeAPI
	drafts DraftWriter
	logger *slog.Logger

	mu         sync.Mutex
	loadGen    uint64
	loaded     bool
	resumeID   int64
	title      string
	layout     *resume.Layout
	templateID string
	selectedID string
}

// NewStore 构建空 store。drafts 可为 nil 以禁用本地快照。
func NewStore(api resumeAPI, drafts DraftWriter, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		api:        api,
		drafts:     drafts,
		logger:     logger,
		layout:     &resume.Layout{},
		templateID: template.DefaultID,
	}
}

// Load 拉取简历并将其文档设为当前文档。任何失败都会把 store 重置为
// 空文档并返回错误，不做重试。被更新的 Load 取代的调用静默丢弃响应。
func (s *Store) Load(ctx context.Context, resumeID int64) error {
	s.mu.Lock()
	s.loadGen++
	gen := s.loadGen
	s.mu.Unlock()

	res, err := s.api.GetResume(ctx, resumeID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.loadGen {
		s.logger.Debug("discarding stale load response", slog.Int64("resume_id", resumeID))
		return nil
	}

	if err != nil {
		s.resetLocked()
		s.logger.Warn("resume load failed", slog.Int64("resume_id", resumeID), slog.Any("error", err))
		return err
	}

	layout := &resume.Layout{}
	if len(res.ContentJSON) > 0 {
		if err := json.Unmarshal(res.ContentJSON, layout); err != nil {
			s.resetLocked()
			s.logger.Warn("resume document unreadable", slog.Int64("resume_id", resumeID), slog.Any("error", err))
			return errcode.Wrap(errcode.KindTransport, "resume document unreadable", err)
		}
	}

	tpl, ok := template.Lookup(res.TemplateName)
	if !ok {
		tpl, _ = template.Lookup(template.DefaultID)
	}
	// 旧版扁平文档不携带分区信息；当模板要求侧栏时按模块类别推导。
	if wasFlatDocument(res.ContentJSON) && tpl.Layout == resume.LayoutSidebar {
		layout.Repartition(resume.LayoutSidebar)
	}

	s.loaded = true
	s.resumeID = resumeID
	s.title = res.Title
	s.layout = layout
	s.templateID = tpl.ID
	s.selectedID = ""
	return nil
}

// Save 序列化文档并以 PATCH 写回后端。未加载任何简历的 store 立即返回。
// 失败时内存状态保持不动以便重试，并写入一份本地草稿快照兜底。
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return nil
	}
	resumeID := s.resumeID
	templateID := s.templateID
	raw, err := json.Marshal(s.layout)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("serialize layout: %w", err)
	}

	patch := client.ResumePatch{
		ContentJSON:  raw,
		TemplateName: &templateID,
	}
	if _, err := s.api.UpdateResume(ctx, resumeID, patch); err != nil {
		s.logger.Warn("resume save failed", slog.Int64("resume_id", resumeID), slog.Any("error", err))
		s.snapshotDraft(ctx, resumeID, templateID, raw)
		return err
	}
	return nil
}

func (s *Store) snapshotDraft(ctx context.Context, resumeID int64, templateID string, raw json.RawMessage) {
	if s.drafts == nil {
		return
	}
	if err := s.drafts.Put(ctx, resumeID, templateID, raw); err != nil {
		s.logger.Warn("draft snapshot failed", slog.Int64("resume_id", resumeID), slog.Any("error", err))
	}
}

// AddModule 实例化 kind 对应的目录定义，用当前模板着装后追加到指定
// 分区（空分区名落到主栏）。未知类别记日志后不做任何事：类别来自
// 同一份静态目录，这属于程序错误而非用户输入。
func (s *Store) AddModule(kind resume.ModuleKind, zone resume.Zone) *resume.ModuleInstance {
	def, ok := template.DefinitionFor(kind)
	if !ok {
		s.logger.Warn("unknown module kind", slog.String("kind", string(kind)))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inst := def.NewInstance()
	tpl := s.activeTemplateLocked()
	inst.Style = tpl.StyleFor(inst.Component, inst.Kind)
	inst.TitleStyle = tpl.TitleStyle

	if zone == "" {
		zone = resume.ZoneMain
	}
	s.layout.Append(zone, inst)
	return inst
}

// RemoveModule 从所在分区删除实例，若其处于选中态则清除选中。
// 删除不存在的 id 不做任何事。
func (s *Store) RemoveModule(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.layout.Remove(id) && s.selectedID == id {
		s.selectedID = ""
	}
}

// SelectModule 设置选中；再次选中当前选中项则取消。
// 选中态只是会话状态，从不持久化。
func (s *Store) SelectModule(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedID == id {
		s.selectedID = ""
		return
	}
	s.selectedID = id
}

// Selected 返回选中模块的 id，无选中时为空。
func (s *Store) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

// ApplyTemplate 用指定模板重新着装全部模块。只有布局形态真正变化时
// 才按模块类别重推分区归属，纯外观的模板切换保留用户摆放。
// 未知模板 id 记日志后不做任何事。
func (s *Store) ApplyTemplate(templateID string) {
	tpl, ok := template.Lookup(templateID)
	if !ok {
		s.logger.Warn("unknown template", slog.String("template_id", templateID))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.activeTemplateLocked()
	for _, m := range s.layout.Modules() {
		m.Style = tpl.StyleFor(m.Component, m.Kind)
		m.TitleStyle = tpl.TitleStyle
	}
	if tpl.Layout != prev.Layout {
		s.layout.Repartition(tpl.Layout)
	}
	s.templateID = tpl.ID
}

// Move 将源分区 from 位置的模块移动到目标分区的 to 位置，
// 并报告是否发生了移动。
func (s *Store) Move(fromZone resume.Zone, from int, toZone resume.Zone, to int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout.Move(fromZone, from, toZone, to)
}

// Loaded 报告当前是否已加载简历。
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// ResumeID 返回已加载简历的 id，未加载时为零。
func (s *Store) ResumeID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumeID
}

// Title 返回已加载简历的标题。
func (s *Store) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// TemplateID 返回当前模板 id。
func (s *Store) TemplateID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templateID
}

// Snapshot 返回文档深拷贝与当前模板，供渲染使用。
func (s *Store) Snapshot() (*resume.Layout, *template.Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout.Clone(), s.activeTemplateLocked()
}

func (s *Store) activeTemplateLocked() *template.Template {
	if tpl, ok := template.Lookup(s.templateID); ok {
		return tpl
	}
	tpl, _ := template.Lookup(template.DefaultID)
	return tpl
}

func (s *Store) resetLocked() {
	s.loaded = false
	s.resumeID = 0
	s.title = ""
	s.layout = &resume.Layout{}
	s.templateID = template.DefaultID
	s.selectedID = ""
}

// wasFlatDocument 报告持久化文档是否使用旧版扁平数组形状。
func wasFlatDocument(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
