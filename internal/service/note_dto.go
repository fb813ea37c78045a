package service

import (
	"time"

	"github.com/haierkeys/idea-inbox-service/internal/domain"
)

// NoteDTO 笔记数据传输对象
type NoteDTO struct {
	ID        int64    `json:"id"`
	Content   string   `json:"content"`
	Title     *string  `json:"title"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"created_at"`
}

// NoteCreateRequest 直接创建笔记请求参数
type NoteCreateRequest struct {
	Content string   `json:"content" form:"content" binding:"required"`
	Title   *string  `json:"title" form:"title"`
	Tags    []string `json:"tags" form:"tags" binding:"omitempty,dive,max=200"`
}

// NoteCaptureRequest 捕获笔记请求参数
type NoteCaptureRequest struct {
	Content string `json:"content" form:"content" binding:"required"`
}

// NoteIDRequest 按 ID 操作笔记的路径参数
type NoteIDRequest struct {
	ID int64 `uri:"id" binding:"required,gt=0"`
}

// NewNoteDTO 将领域模型转换为 DTO
func NewNoteDTO(n *domain.Note) *NoteDTO {
	if n == nil {
		return nil
	}
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return &NoteDTO{
		ID:        n.ID,
		Content:   n.Content,
		Title:     n.Title,
		Tags:      tags,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
