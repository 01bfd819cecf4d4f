package template

import (
	"aiInterview/internal/resume"
)

// ModuleDefinition 描述如何实例化某一类别的新模块：由哪个组件渲染、
// 默认标题与图标标识，以及默认 props 载荷。Defaults 是原型；
// 实例总是拿到重新生成 id 的深拷贝。
type ModuleDefinition struct {
	Kind      resume.ModuleKind
	Component resume.ComponentKind
	Title     string
	Icon      string
	Defaults  resume.Props
}

// NewInstance 从定义构建模块实例。props 为深拷贝，
// 实例 id 与全部子项 id 都会重新生成。
func (d *ModuleDefinition) NewInstance() *resume.ModuleInstance {
	m := &resume.ModuleInstance{
		Component: d.Component,
		Kind:      d.Kind,
		Title:     d.Title,
		Props:     d.Defaults.Clone(),
	}
	m.FreshIDs()
	return m
}

var definitionIndex = map[resume.ModuleKind]*ModuleDefinition{}

var definitionOrder []*ModuleDefinition

func registerDefinition(d *ModuleDefinition) {
	definitionIndex[d.Kind] = d
	definitionOrder = append(definitionOrder, d)
}

// DefinitionFor 在目录中解析模块类别。
func DefinitionFor(kind resume.ModuleKind) (*ModuleDefinition, bool) {
	d, ok := definitionIndex[kind]
	return d, ok
}

// Definitions 按展示顺序返回目录。
func Definitions() []*ModuleDefinition {
	return append([]*ModuleDefinition(nil), definitionOrder...)
}

func init() {
	registerDefinition(&ModuleDefinition{
		Kind:      resume.KindBasicInfo,
		Component: resume.ComponentBasicInfo,
		Title:     "Basic Info",
		Icon:      "user",
		Defaults: &resume.BasicInfoProps{
			Show: true,
			Name: "Your Name",
			Items: []resume.ContactItem{
				{ID: "seed-contact-phone", Icon: "phone", Label: "Phone", Value: "138-0000-0000"},
				{ID: "seed-contact-email", Icon: "mail", Label: "Email", Value: "your-email@example.com"},
			},
		},
	})

	registerDefinition(&ModuleDefinition{
		Kind:      resume.KindSummary,
		Component: resume.ComponentSummary,
		Title:     "Summary",
		Icon:      "document",
		Defaults: &resume.SummaryProps{
			Show:    true,
			Title:   "Summary",
			Summary: "Briefly introduce your core strengths here...",
		},
	})

	registerDefinition(&ModuleDefinition{
		Kind:      resume.KindEducation,
		Component: resume.ComponentEducation,
		Title:     "Education",
		Icon:      "school",
		Defaults: &resume.EducationProps{
			Show:  true,
			Title: "Education",
			Educations: []resume.EducationEntry{
				{
					ID:        "seed-education-1",
					School:    "State University",
					Major:     "Computer Science",
					Degree:    "Bachelor",
					StartDate: "2018-09",
					EndDate:   "2022-06",
				},
			},
		},
	})

	registerDefinition(&ModuleDefinition{
		Kind:      resume.KindWorkExp,
		Component: resume.ComponentWorkExp,
		Title:     "Work Experience",
		Icon:      "briefcase",
		Defaults: &resume.WorkExpProps{
			Show:  true,
			Title: "Work Experience",
			Experiences: []resume.WorkEntry{
				{
					ID:          "seed-work-1",
					Company:     "Acme Corp",
					Position:    "Software Engineer",
					StartDate:   "2022-07",
					Description: "1. ...",
				},
			},
		},
	})

	registerDefinition(&ModuleDefinition{
		Kind:      resume.KindProject,
		Component: resume.ComponentProject,
		Title:     "Projects",
		Icon:      "trophy",
		Defaults: &resume.ProjectProps{
			Show:  true,
			Title: "Projects",
			Projects: []resume.ProjectEntry{
				{
					ID:          "seed-project-1",
					Name:        "AI Mock Interview Platform",
					Role:        "Core Developer",
					StartDate:   "2023-01",
					Description: "Project description...",
					TechStack:   "Vue 3, TypeScript, Django",
				},
			},
		},
	})

	registerDefinition(&ModuleDefinition{
		Kind:      resume.KindSkills,
		Component: resume.ComponentSkills,
		Title:     "Skills",
		Icon:      "tag",
		Defaults: &resume.SkillsProps{
			Show:  true,
			Title: "Skills",
			Skills: []resume.SkillEntry{
				{ID: "seed-skill-1", Name: "JavaScript / TypeScript", Proficiency: "Expert"},
			},
		},
	})

	genericDefaults := func(title, itemTitle, subtitle, description string) *resume.GenericListProps {
		return &resume.GenericListProps{
			Show:  true,
			Title: title,
			Items: []resume.GenericEntry{
				{ID: "seed-" + title, Title: itemTitle, Subtitle: subtitle, Description: description},
			},
		}
	}

	registerDefinition(&ModuleDefinition{
		Kind:      resume.KindCampusExp,
		Component: resume.ComponentGenericList,
		Title:     "Campus Experience",
		Icon:      "star",
		Defaults:  genericDefaults("Campus Experience", "Student Union President", "2020.09 - 2021.06", "Organized the campus singing contest..."),
	})

	registerDefinition(&ModuleDefinition{
		Kind:      resume.KindCertificates,
		Component: resume.ComponentGenericList,
		Title:     "Certificates",
		Icon:      "files",
		Defaults:  genericDefaults("Certificates", "CET-6", "Score 580", ""),
	})

	registerDefinition(&ModuleDefinition{
		Kind:      resume.KindContests,
		Component: resume.ComponentGenericList,
		Title:     "Contests",
		Icon:      "postcard",
		Defaults:  genericDefaults("Contests", "Lanqiao Cup", "National First Prize", "Contest entry..."),
	})

	registerDefinition(&ModuleDefinition{
		Kind:      resume.KindAwards,
		Component: resume.ComponentGenericList,
		Title:     "Awards",
		Icon:      "bell",
		Defaults:  genericDefaults("Awards", "National Scholarship", "2021", ""),
	})

	registerDefinition(&ModuleDefinition{
		Kind:      resume.KindPublications,
		Component: resume.ComponentGenericList,
		Title:     "Publications",
		Icon:      "reading",
		Defaults:  genericDefaults("Publications", "A Study on ...", "Journal of Computer Science", "First author..."),
	})

	registerDefinition(&ModuleDefinition{
		Kind:      resume.KindCustom,
		Component: resume.ComponentCustomText,
		Title:     "Custom Section",
		Icon:      "edit",
		Defaults: &resume.CustomTextProps{
			Show:    true,
			Title:   "Custom Title",
			Content: "Write your custom content here...",
		},
	})
}
