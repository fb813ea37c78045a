// Package domain 定义领域模型和接口
package domain

import "time"

// Note 收件箱笔记领域模型
// Title is nil when no title was extracted or supplied.
type Note struct {
	ID        int64
	Content   string
	Title     *string
	Tags      []string
	CreatedAt time.Time
}

// TitleOrEmpty 返回标题，未设置时返回空字符串
func (n *Note) TitleOrEmpty() string {
	if n == nil || n.Title == nil {
		return ""
	}
	return *n.Title
}

// NewNote 构造待持久化的笔记
// Nil tags become an empty list so a stored note always carries a list.
func NewNote(content string, title *string, tags []string) *Note {
	if tags == nil {
		tags = []string{}
	}
	return &Note{Content: content, Title: title, Tags: tags}
}

// ExtractionResult 标题与标签提取结果
type ExtractionResult struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

// TitlePtr 将空标题映射为 nil
func (r ExtractionResult) TitlePtr() *string {
	if r.Title == "" {
		return nil
	}
	t := r.Title
	return &t
}
