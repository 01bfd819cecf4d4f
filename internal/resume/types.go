package resume

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ComponentKind 决定模块的渲染器与 props 的形状。
// 多个模块类别可共用同一组件（各种通用列表都是）。
type ComponentKind string

const (
	ComponentBasicInfo   ComponentKind = "basic-info"
	ComponentSummary     ComponentKind = "summary"
	ComponentEducation   ComponentKind = "education"
	ComponentWorkExp     ComponentKind = "work-exp"
	ComponentProject     ComponentKind = "project"
	ComponentSkills      ComponentKind = "skills"
	ComponentGenericList ComponentKind = "generic-list"
	ComponentCustomText  ComponentKind = "custom-text"
)

// ModuleKind 是模块的语义类别，决定分栏归属与目录默认值，
// 不决定渲染形状。
type ModuleKind string

const (
	KindBasicInfo    ModuleKind = "BasicInfo"
	KindSummary      ModuleKind = "Summary"
	KindEducation    ModuleKind = "Education"
	KindWorkExp      ModuleKind = "WorkExp"
	KindProject      ModuleKind = "Project"
	KindSkills       ModuleKind = "Skills"
	KindCampusExp    ModuleKind = "CampusExp"
	KindCertificates ModuleKind = "Certificates"
	KindContests     ModuleKind = "Contests"
	KindAwards       ModuleKind = "Awards"
	KindPublications ModuleKind = "Publications"
	KindCustom       ModuleKind = "Custom"
)

// Style 是扁平的展示属性包，完全由当前模板拥有；
// 用户编辑从不直接改动它。
type Style map[string]string

// Clone 返回样式包的独立副本。
func (s Style) Clone() Style {
	if s == nil {
		return nil
	}
	out := make(Style, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Props 是模块实例的内容载荷。每种组件类别有自己的强类型变体；
// UnknownProps 保留本构建不认识的组件载荷。
type Props interface {
	// Clone 返回与接收者不共享任何引用的深拷贝。
	Clone() Props
	// freshIDs 就地重新生成全部子项 id。子项 id 必须在实例内唯一，
	// UI 的列表重排才能保持稳定。
	freshIDs()
}

// ContactItem 是基本信息头部中带标签的一行联系方式。
type ContactItem struct {
	ID    string `json:"id"`
	Icon  string `json:"icon"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// BasicInfoProps 对应 basic-info 组件。
type BasicInfoProps struct {
	Show  bool          `json:"show"`
	Name  string        `json:"name"`
	Photo string        `json:"photo"`
	Items []ContactItem `json:"items"`
}

func (p *BasicInfoProps) Clone() Props {
	out := *p
	out.Items = append([]ContactItem(nil), p.Items...)
	return &out
}

func (p *BasicInfoProps) freshIDs() {
	for i := range p.Items {
		p.Items[i].ID = uuid.NewString()
	}
}

// SummaryProps 对应 summary 组件。
type SummaryProps struct {
	Show    bool   `json:"show"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

func (p *SummaryProps) Clone() Props {
	out := *p
	return &out
}

func (p *SummaryProps) freshIDs() {}

// EducationEntry 是一条教育经历。
type EducationEntry struct {
	ID          string `json:"id"`
	School      string `json:"school"`
	Major       string `json:"major"`
	Degree      string `json:"degree"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description"`
}

// EducationProps 对应 education 组件。
type EducationProps struct {
	Show       bool             `json:"show"`
	Title      string           `json:"title"`
	Educations []EducationEntry `json:"educations"`
}

func (p *EducationProps) Clone() Props {
	out := *p
	out.Educations = append([]EducationEntry(nil), p.Educations...)
	return &out
}

func (p *EducationProps) freshIDs() {
	for i := range p.Educations {
		p.Educations[i].ID = uuid.NewString()
	}
}

// WorkEntry 是一条工作经历。EndDate 为空表示"至今"。
type WorkEntry struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description"`
}

// WorkExpProps 对应 work-exp 组件。
type WorkExpProps struct {
	Show        bool        `json:"show"`
	Title       string      `json:"title"`
	Experiences []WorkEntry `json:"experiences"`
}

func (p *WorkExpProps) Clone() Props {
	out := *p
	out.Experiences = append([]WorkEntry(nil), p.Experiences...)
	return &out
}

func (p *WorkExpProps) freshIDs() {
	for i := range p.Experiences {
		p.Experiences[i].ID = uuid.NewString()
	}
}

// ProjectEntry 是一条项目经历。
type ProjectEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description"`
	TechStack   string `json:"tech_stack"`
}

// ProjectProps 对应 project 组件。
type ProjectProps struct {
	Show     bool           `json:"show"`
	Title    string         `json:"title"`
	Projects []ProjectEntry `json:"projects"`
}

func (p *ProjectProps) Clone() Props {
	out := *p
	out.Projects = append([]ProjectEntry(nil), p.Projects...)
	return &out
}

func (p *ProjectProps) freshIDs() {
	for i := range p.Projects {
		p.Projects[i].ID = uuid.NewString()
	}
}

// SkillEntry 是一项技能及其熟练度标签。
type SkillEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
}

// SkillsProps 对应 skills 组件。
type SkillsProps struct {
	Show   bool         `json:"show"`
	Title  string       `json:"title"`
	Skills []SkillEntry `json:"skills"`
}

func (p *SkillsProps) Clone() Props {
	out := *p
	out.Skills = append([]SkillEntry(nil), p.Skills...)
	return &out
}

func (p *SkillsProps) freshIDs() {
	for i := range p.Skills {
		p.Skills[i].ID = uuid.NewString()
	}
}

// GenericEntry 是一条标题/副标题/描述记录。校园经历、证书、竞赛、
// 奖项与论文都共用这一形状。
type GenericEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
}

// GenericListProps 对应 generic-list 组件。
type GenericListProps struct {
	Show  bool           `json:"show"`
	Title string         `json:"title"`
	Items []GenericEntry `json:"items"`
}

func (p *GenericListProps) Clone() Props {
	out := *p
	out.Items = append([]GenericEntry(nil), p.Items...)
	return &out
}

func (p *GenericListProps) freshIDs() {
	for i := range p.Items {
		p.Items[i].ID = uuid.NewString()
	}
}

// CustomTextProps 对应自由文本 custom-text 组件。
type CustomTextProps struct {
	Show    bool   `json:"show"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (p *CustomTextProps) Clone() Props {
	out := *p
	return &out
}

func (p *CustomTextProps) freshIDs() {}

// UnknownProps 原样保留无法识别的组件载荷，
// 让更新版本写出的文档能安全经过一次加载/保存往返。
type UnknownProps struct {
	Raw json.RawMessage
}

func (p *UnknownProps) Clone() Props {
	return &UnknownProps{Raw: append(json.RawMessage(nil), p.Raw...)}
}

func (p *UnknownProps) freshIDs() {}

func (p *UnknownProps) MarshalJSON() ([]byte, error) {
	if len(p.Raw) == 0 {
		return []byte("{}"), nil
	}
	return p.Raw, nil
}

// decodeProps 为组件类别选择对应的 props 变体。
func decodeProps(component ComponentKind, raw json.RawMessage) (Props, error) {
	var props Props
	switch component {
	case ComponentBasicInfo:
		props = &BasicInfoProps{}
	case ComponentSummary:
		props = &SummaryProps{}
	case ComponentEducation:
		props = &EducationProps{}
	case ComponentWorkExp:
		props = &WorkExpProps{}
	case ComponentProject:
		props = &ProjectProps{}
	case ComponentSkills:
		props = &SkillsProps{}
	case ComponentGenericList:
		props = &GenericListProps{}
	case ComponentCustomText:
		props = &CustomTextProps{}
	default:
		return &UnknownProps{Raw: append(json.RawMessage(nil), raw...)}, nil
	}

	if len(raw) == 0 {
		return props, nil
	}
	if err := json.Unmarshal(raw, props); err != nil {
		return nil, fmt.Errorf("decode %s props: %w", component, err)
	}
	return props, nil
}

// ModuleInstance 是画布上已放置、可编辑的一个简历模块。
type ModuleInstance struct {
	ID         string        `json:"id"`
	Component  ComponentKind `json:"component"`
	Kind       ModuleKind    `json:"kind"`
	Title      string        `json:"title"`
	Props      Props         `json:"props"`
	Style      Style         `json:"style,omitempty"`
	TitleStyle string        `json:"title_style,omitempty"`
}

// Clone 返回实例的深拷贝，id 保持不变。
func (m *ModuleInstance) Clone() *ModuleInstance {
	out := *m
	if m.Props != nil {
		out.Props = m.Props.Clone()
	}
	out.Style = m.Style.Clone()
	return &out
}

// FreshIDs 分配新的实例 id 并重新生成全部子项 id。
func (m *ModuleInstance) FreshIDs() {
	m.ID = uuid.NewString()
	if m.Props != nil {
		m.Props.freshIDs()
	}
}

type moduleInstanceJSON struct {
	ID         string          `json:"id"`
	Component  ComponentKind   `json:"component"`
	Kind       ModuleKind      `json:"kind"`
	Title      string          `json:"title"`
	Props      json.RawMessage `json:"props"`
	Style      Style           `json:"style,omitempty"`
	TitleStyle string          `json:"title_style,omitempty"`
}

// UnmarshalJSON 按组件类别解码 props 载荷。
func (m *ModuleInstance) UnmarshalJSON(data []byte) error {
	var raw moduleInstanceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode module instance: %w", err)
	}

	props, err := decodeProps(raw.Component, raw.Props)
	if err != nil {
		return err
	}

	m.ID = raw.ID
	m.Component = raw.Component
	m.Kind = raw.Kind
	m.Title = raw.Title
	m.Props = props
	m.Style = raw.Style
	m.TitleStyle = raw.TitleStyle
	return nil
}
