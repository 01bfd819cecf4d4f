// Package template 保存静态展示目录：应用到编辑器文档的具名样式模板，
// 以及用于实例化新模块的模块定义。两个注册表在 init 之后均不可变。
package template

import (
	"aiInterview/internal/resume"
)

// DefaultID 是持久化文档未指明模板时套用的兜底模板。
const DefaultID = "classic-default"

// Template 是具名且不可变的样式/布局策略。styleFor 必须是
// (component, kind) 的确定性纯函数，并对全部输入有定义：
// 未知类别得到模板的基础样式。
type Template struct {
	ID         string
	Name       string
	Layout     resume.LayoutKind
	PageStyle  resume.Style
	TitleStyle string

	styleFor func(resume.ComponentKind, resume.ModuleKind) resume.Style
}

// StyleFor 计算单个模块的样式包。返回的 map 是新副本；
// 调用方可直接挂到实例上而不产生别名。
func (t *Template) StyleFor(component resume.ComponentKind, kind resume.ModuleKind) resume.Style {
	return t.styleFor(component, kind).Clone()
}

var registry = map[string]*Template{}

var ordered []*Template

func register(t *Template) {
	registry[t.ID] = t
	ordered = append(ordered, t)
}

// Lookup 在目录中解析模板 id。
func Lookup(id string) (*Template, bool) {
	t, ok := registry[id]
	return t, ok
}

// All 按注册顺序返回目录。
func All() []*Template {
	return append([]*Template(nil), ordered...)
}

func init() {
	register(&Template{
		ID:         DefaultID,
		Name:       "Classic Default",
		Layout:     resume.LayoutSingle,
		PageStyle:  resume.Style{"background": "#ffffff", "font-family": "Georgia, serif"},
		TitleStyle: "underline",
		styleFor: func(component resume.ComponentKind, _ resume.ModuleKind) resume.Style {
			s := resume.Style{"padding": "20px 30px"}
			if component != resume.ComponentSkills {
				s["border-bottom"] = "1px solid #f0f0f0"
			}
			return s
		},
	})

	register(&Template{
		ID:         "simple-blue",
		Name:       "Simple Blue",
		Layout:     resume.LayoutSingle,
		PageStyle:  resume.Style{"background": "#ffffff", "accent-color": "#409eff"},
		TitleStyle: "accent-bar",
		styleFor: func(component resume.ComponentKind, _ resume.ModuleKind) resume.Style {
			s := resume.Style{"padding": "15px 25px", "color": "#333333"}
			if component == resume.ComponentBasicInfo {
				s["background"] = "#f0f8ff"
				return s
			}
			s["border-left"] = "3px solid #409eff"
			s["margin-bottom"] = "10px"
			return s
		},
	})

	register(&Template{
		ID:         "sidebar-darkblue",
		Name:       "Sidebar Dark Blue",
		Layout:     resume.LayoutSidebar,
		PageStyle:  resume.Style{"background": "#ffffff", "sidebar-width": "32%"},
		TitleStyle: "block",
		styleFor: func(component resume.ComponentKind, kind resume.ModuleKind) resume.Style {
			// 按分区定策略：会迁入侧栏的模块拿到反色配色，
			// 与用户之后把它拖到哪里无关。
			switch kind {
			case resume.KindBasicInfo, resume.KindSkills:
				return resume.Style{
					"padding":    "24px 18px",
					"background": "#1f3a5f",
					"color":      "#f5f7fa",
				}
			}
			s := resume.Style{"padding": "18px 26px", "color": "#2c3e50"}
			if component == resume.ComponentCustomText {
				s["font-style"] = "italic"
			}
			return s
		},
	})

	register(&Template{
		ID:         "sidebar-slate",
		Name:       "Sidebar Slate",
		Layout:     resume.LayoutSidebar,
		PageStyle:  resume.Style{"background": "#fafafa", "sidebar-width": "30%"},
		TitleStyle: "plain",
		styleFor: func(_ resume.ComponentKind, kind resume.ModuleKind) resume.Style {
			switch kind {
			case resume.KindBasicInfo, resume.KindSkills:
				return resume.Style{
					"padding":    "22px 16px",
					"background": "#37474f",
					"color":      "#eceff1",
				}
			}
			return resume.Style{
				"padding":       "16px 24px",
				"color":         "#37474f",
				"border-bottom": "1px dashed #cfd8dc",
			}
		},
	})
}
