// Package domain 定义领域模型和接口
package domain

import "context"

// NoteRepository 笔记仓储接口
type NoteRepository interface {
	// Create 持久化笔记，分配 ID 与创建时间
	Create(ctx context.Context, note *Note) (*Note, error)

	// GetByID 根据ID获取笔记
	GetByID(ctx context.Context, id int64) (*Note, error)

	// ListAll 按创建时间倒序列出全部笔记
	ListAll(ctx context.Context) ([]*Note, error)

	// Count 统计笔记数量
	Count(ctx context.Context) (int64, error)

	// Delete 删除指定笔记，返回是否存在
	Delete(ctx context.Context, id int64) (bool, error)

	// DeleteAll 删除全部笔记，返回删除数量
	DeleteAll(ctx context.Context) (int64, error)
}
