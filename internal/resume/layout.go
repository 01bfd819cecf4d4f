package resume

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LayoutKind 区分单栏文档与带侧栏的双栏文档。
type LayoutKind string

const (
	LayoutSingle  LayoutKind = "single"
	LayoutSidebar LayoutKind = "sidebar"
)

// Zone 是双栏文档两个分区之一的名字。
type Zone string

const (
	ZoneSidebar Zone = "sidebar"
	ZoneMain    Zone = "main"
)

// Layout 是持久化的编辑器文档：全部已放置的模块，按侧栏与主栏分区。
// 单栏文档全部放在 Main。历史文档在线上可能是扁平数组；
// 解码两种形状都接受，但写出时只用分区形状。
type Layout struct {
	Sidebar []*ModuleInstance `json:"sidebar"`
	Main    []*ModuleInstance `json:"main"`
}

type zonedLayoutJSON struct {
	Sidebar []*ModuleInstance `json:"sidebar"`
	Main    []*ModuleInstance `json:"main"`
}

// UnmarshalJSON 同时接受旧版扁平数组与分区对象。
// 扁平数组整体落入 Main；调用方在得知当前模板布局后
// 通过 Repartition 归一化分区归属。
func (l *Layout) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = Layout{}
		return nil
	}

	if trimmed[0] == '[' {
		var flat []*ModuleInstance
		if err := json.Unmarshal(trimmed, &flat); err != nil {
			return fmt.Errorf("decode legacy layout: %w", err)
		}
		*l = Layout{Main: flat}
		return nil
	}

	var zoned zonedLayoutJSON
	if err := json.Unmarshal(trimmed, &zoned); err != nil {
		return fmt.Errorf("decode layout: %w", err)
	}
	*l = Layout(zoned)
	return nil
}

// defaultZoneFor 是固定的迁移规则：基本信息与技能进侧栏，
// 其余进主栏。
func defaultZoneFor(kind ModuleKind) Zone {
	switch kind {
	case KindBasicInfo, KindSkills:
		return ZoneSidebar
	default:
		return ZoneMain
	}
}

// Repartition 按模块类别重新推导分区归属。侧栏布局套用固定规则；
// 单栏布局全部压平到 Main，侧栏模块在前以保持视觉顺序。
func (l *Layout) Repartition(kind LayoutKind) {
	all := append(append([]*ModuleInstance(nil), l.Sidebar...), l.Main...)
	l.Sidebar = nil
	l.Main = nil

	if kind != LayoutSidebar {
		l.Main = all
		return
	}
	for _, m := range all {
		if defaultZoneFor(m.Kind) == ZoneSidebar {
			l.Sidebar = append(l.Sidebar, m)
		} else {
			l.Main = append(l.Main, m)
		}
	}
}

// zone 返回指定分区的序列；未知分区映射到 Main。
func (l *Layout) zone(z Zone) *[]*ModuleInstance {
	if z == ZoneSidebar {
		return &l.Sidebar
	}
	return &l.Main
}

// Append 将实例放到指定分区末尾。
func (l *Layout) Append(z Zone, m *ModuleInstance) {
	seq := l.zone(z)
	*seq = append(*seq, m)
}

// Find 按 id 在两个分区中定位实例。
func (l *Layout) Find(id string) (*ModuleInstance, Zone, int) {
	for i, m := range l.Sidebar {
		if m.ID == id {
			return m, ZoneSidebar, i
		}
	}
	for i, m := range l.Main {
		if m.ID == id {
			return m, ZoneMain, i
		}
	}
	return nil, "", -1
}

// Remove 从所在分区删除指定 id 的实例，并报告是否删除了内容。
func (l *Layout) Remove(id string) bool {
	_, z, i := l.Find(id)
	if i < 0 {
		return false
	}
	seq := l.zone(z)
	*seq = append((*seq)[:i], (*seq)[i+1:]...)
	return true
}

// Move 把源分区 from 位置的实例插入目标分区的 to 位置。
// 越界的目标索引收敛到边界而不是拒绝：拖拽位置来自 UI，
// 可能落后并发编辑一个槽位。
func (l *Layout) Move(fromZone Zone, from int, toZone Zone, to int) bool {
	src := l.zone(fromZone)
	if from < 0 || from >= len(*src) {
		return false
	}
	m := (*src)[from]
	*src = append((*src)[:from], (*src)[from+1:]...)

	dst := l.zone(toZone)
	if to < 0 {
		to = 0
	}
	if to > len(*dst) {
		to = len(*dst)
	}
	*dst = append(*dst, nil)
	copy((*dst)[to+1:], (*dst)[to:])
	(*dst)[to] = m
	return true
}

// Modules 按渲染顺序返回两个分区，侧栏在前。
func (l *Layout) Modules() []*ModuleInstance {
	return append(append([]*ModuleInstance(nil), l.Sidebar...), l.Main...)
}

// Len 统计两个分区内已放置的模块数。
func (l *Layout) Len() int {
	return len(l.Sidebar) + len(l.Main)
}

// Clone 返回文档的深拷贝。
func (l *Layout) Clone() *Layout {
	out := &Layout{}
	for _, m := range l.Sidebar {
		out.Sidebar = append(out.Sidebar, m.Clone())
	}
	for _, m := range l.Main {
		out.Main = append(out.Main, m.Clone())
	}
	return out
}
