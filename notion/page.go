package notion

import (
	"strconv"
	"strings"
)

// DefaultMode 是未设置モード时使用的写作模式。
const DefaultMode = "共感・エッセイ型"

var (
	titleProperties   = []string{"タイトル", "Title", "name"}
	contentProperties = []string{"文章のネタ", "テキスト", "Content", "content"}
)

// Article 是一条待处理的文章。
type Article struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Mode    string `json:"mode"`
	Content string `json:"content"`
}

// Page 是查询结果中的页面，只解码需要的属性。
type Page struct {
	ID         string              `json:"id"`
	Properties map[string]Property `json:"properties"`
}

// Property 覆盖用到的几种属性类型。
type Property struct {
	Type        string        `json:"type"`
	UniqueID    *UniqueID     `json:"unique_id"`
	Number      *float64      `json:"number"`
	Title       []RichText    `json:"title"`
	RichText    []RichText    `json:"rich_text"`
	Select      *SelectValue  `json:"select"`
	MultiSelect []SelectValue `json:"multi_select"`
}

// UniqueID 是自动编号属性。
type UniqueID struct {
	Prefix *string  `json:"prefix"`
	Number *float64 `json:"number"`
}

// RichText 只保留纯文本。
type RichText struct {
	PlainText string `json:"plain_text"`
}

// SelectValue 是 select/multi_select 的选项。
type SelectValue struct {
	Name string `json:"name"`
}

// Article 按属性约定提取文章字段。
func (p Page) Article() Article {
	return Article{
		ID:      p.ID,
		Title:   p.title(),
		Mode:    p.mode(),
		Content: p.content(),
	}
}

// title 优先使用 ID 列的编号，其次使用标题类属性的第一段文本。
func (p Page) title() string {
	if id, ok := p.Properties["ID"]; ok {
		if id.UniqueID != nil && id.UniqueID.Number != nil {
			return formatNumber(*id.UniqueID.Number)
		}
		if id.Number != nil {
			return formatNumber(*id.Number)
		}
	}
	for _, name := range titleProperties {
		if prop, ok := p.Properties[name]; ok && len(prop.Title) > 0 {
			return prop.Title[0].PlainText
		}
	}
	return ""
}

func (p Page) mode() string {
	prop, ok := p.Properties["モード"]
	if !ok {
		return DefaultMode
	}
	if prop.Select != nil {
		return nonEmpty(prop.Select.Name, DefaultMode)
	}
	if len(prop.MultiSelect) > 0 {
		return nonEmpty(prop.MultiSelect[0].Name, DefaultMode)
	}
	return DefaultMode
}

func (p Page) content() string {
	for _, name := range contentProperties {
		prop, ok := p.Properties[name]
		if !ok || len(prop.RichText) == 0 {
			continue
		}
		var b strings.Builder
		for _, rt := range prop.RichText {
			b.WriteString(rt.PlainText)
		}
		return b.String()
	}
	return ""
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func nonEmpty(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
