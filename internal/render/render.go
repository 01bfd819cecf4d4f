// Package render 将编辑器文档与模板渲染为独立的 HTML 页面，
// 供本地预览服务输出。渲染是纯函数：同一份文档与模板总是产出相同的 HTML。
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"aiInterview/internal/resume"
	tpl "aiInterview/internal/template"
)

// documentTemplateString 是预览页的 Go HTML 模板。
// A4 尺寸与分栏宽度必须和编辑器画布保持一致。
const documentTemplateString = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body {
            margin: 0;
            padding: 0;
            background: #f0f0f0;
            font-family: 'Helvetica Neue', Arial, sans-serif;
        }
        .a4-page {
            width: 794px;   /* A4 @ 96 DPI */
            min-height: 1122px;
            background: white;
            margin: 0 auto;
            box-sizing: border-box;
            display: flex;
        }
        .zone-sidebar { width: {{.SidebarWidth}}; }
        .zone-main { flex: 1; }
        .module-title { margin: 0 0 8px 0; font-size: 15px; }
        .module-title.underline { border-bottom: 2px solid currentColor; padding-bottom: 4px; }
        .module-title.accent-bar { border-left: 4px solid #409eff; padding-left: 8px; }
        .module-title.block { background: rgba(0, 0, 0, 0.08); padding: 4px 8px; }
        .entry { margin-bottom: 10px; }
        .entry-head { display: flex; justify-content: space-between; font-weight: bold; }
        .entry-sub { font-size: 12px; color: inherit; opacity: 0.8; }
        .basic-name { margin: 0 0 10px 0; font-size: 24px; }
        .contact-row { font-size: 12px; margin-bottom: 4px; }
        .skill-row { display: flex; justify-content: space-between; font-size: 13px; }
    </style>
</head>
<body>
    <div class="a4-page" style="{{.PageStyle | safeCSS}}">
        {{if .HasSidebar}}
        <div class="zone-sidebar">
            {{range .Sidebar}}{{template "module" .}}{{end}}
        </div>
        {{end}}
        <div class="zone-main">
            {{range .Main}}{{template "module" .}}{{end}}
        </div>
    </div>
</body>
</html>

{{define "module"}}
<div class="module" style="{{.Style | safeCSS}}">
    {{if .ShowTitle}}<h3 class="module-title {{.TitleStyle}}">{{.Title}}</h3>{{end}}
    {{with basicInfo .}}
        <h1 class="basic-name">{{.Name}}</h1>
        {{range .Items}}<div class="contact-row">{{.Label}}: {{.Value}}</div>{{end}}
    {{end}}
    {{with summary .}}<p>{{.Summary}}</p>{{end}}
    {{with education .}}
        {{range .Educations}}
        <div class="entry">
            <div class="entry-head"><span>{{.School}}</span><span>{{.StartDate}} - {{.EndDate}}</span></div>
            <div class="entry-sub">{{.Major}} · {{.Degree}}</div>
            <p>{{.Description}}</p>
        </div>
        {{end}}
    {{end}}
    {{with workExp .}}
        {{range .Experiences}}
        <div class="entry">
            <div class="entry-head"><span>{{.Company}}</span><span>{{.StartDate}} - {{.EndDate}}</span></div>
            <div class="entry-sub">{{.Position}}</div>
            <p>{{.Description}}</p>
        </div>
        {{end}}
    {{end}}
    {{with project .}}
        {{range .Projects}}
        <div class="entry">
            <div class="entry-head"><span>{{.Name}}</span><span>{{.StartDate}} - {{.EndDate}}</span></div>
            <div class="entry-sub">{{.Role}}{{if .TechStack}} · {{.TechStack}}{{end}}</div>
            <p>{{.Description}}</p>
        </div>
        {{end}}
    {{end}}
    {{with skills .}}
        {{range .Skills}}<div class="skill-row"><span>{{.Name}}</span><span>{{.Proficiency}}</span></div>{{end}}
    {{end}}
    {{with genericList .}}
        {{range .Items}}
        <div class="entry">
            <div class="entry-head"><span>{{.Title}}</span></div>
            <div class="entry-sub">{{.Subtitle}}</div>
            <p>{{.Description}}</p>
        </div>
        {{end}}
    {{end}}
    {{with customText .}}<p>{{.Content}}</p>{{end}}
</div>
{{end}}
`

var documentTemplate = template.Must(template.New("document").Funcs(template.FuncMap{
	"safeCSS":     safeCSS,
	"basicInfo":   propsAs[*resume.BasicInfoProps],
	"summary":     propsAs[*resume.SummaryProps],
	"education":   propsAs[*resume.EducationProps],
	"workExp":     propsAs[*resume.WorkExpProps],
	"project":     propsAs[*resume.ProjectProps],
	"skills":      propsAs[*resume.SkillsProps],
	"genericList": propsAs[*resume.GenericListProps],
	"customText":  propsAs[*resume.CustomTextProps],
}).Parse(documentTemplateString))

type moduleView struct {
	Title      string
	TitleStyle string
	Style      resume.Style
	Props      resume.Props
	Component  resume.ComponentKind
}

// ShowTitle 控制模块标题的显示：basic-info 以姓名为标题，不再重复渲染。
func (v moduleView) ShowTitle() bool {
	return v.Component != resume.ComponentBasicInfo && v.Title != ""
}

type pageData struct {
	Title        string
	PageStyle    resume.Style
	SidebarWidth string
	HasSidebar   bool
	Sidebar      []moduleView
	Main         []moduleView
}

// propsAs 在模板分支中做一次类型断言，类型不匹配时返回 nil 使分支跳过。
func propsAs[T resume.Props](v moduleView) T {
	p, _ := v.Props.(T)
	return p
}

// safeCSS 将样式包序列化为确定顺序的内联 CSS。
// 样式值只来自静态模板目录，不含用户输入。
func safeCSS(s resume.Style) template.CSS {
	if len(s) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s; ", k, s[k])
	}
	return template.CSS(strings.TrimSpace(b.String()))
}

// Document 渲染完整的预览页面。
func Document(title string, layout *resume.Layout, t *tpl.Template) (string, error) {
	page := pageData{
		Title:        title,
		PageStyle:    pageStyle(t),
		SidebarWidth: sidebarWidth(t),
		HasSidebar:   t.Layout == resume.LayoutSidebar,
	}
	for _, m := range layout.Sidebar {
		page.Sidebar = append(page.Sidebar, viewOf(m))
	}
	for _, m := range layout.Main {
		page.Main = append(page.Main, viewOf(m))
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, page); err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	return buf.String(), nil
}

func viewOf(m *resume.ModuleInstance) moduleView {
	return moduleView{
		Title:      m.Title,
		TitleStyle: m.TitleStyle,
		Style:      m.Style,
		Props:      m.Props,
		Component:  m.Component,
	}
}

// pageStyle 去掉 sidebar-width 这类布局键，只保留真正的页面样式。
func pageStyle(t *tpl.Template) resume.Style {
	s := t.PageStyle.Clone()
	delete(s, "sidebar-width")
	return s
}

func sidebarWidth(t *tpl.Template) string {
	if w, ok := t.PageStyle["sidebar-width"]; ok {
		return w
	}
	return "32%"
}
