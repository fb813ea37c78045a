// Package dao 实现数据访问层
package dao

import (
	"context"
	"strings"
	"time"

	"github.com/haierkeys/idea-inbox-service/internal/domain"
	"github.com/haierkeys/idea-inbox-service/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	dao *Dao
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

// toDomain 将 DAO Note 转换为领域模型
func (r *noteRepository) toDomain(m *model.Note) *domain.Note {
	if m == nil {
		return nil
	}
	note := &domain.Note{
		ID:        m.ID,
		Content:   m.Content,
		Tags:      model.DecodeTags(m.Tags),
		CreatedAt: m.CreatedAt.UTC(),
	}
	if m.Title != nil {
		title := *m.Title
		note.Title = &title
	}
	return note
}

// toModel 将领域模型转换为数据库模型
func (r *noteRepository) toModel(note *domain.Note) (*model.Note, error) {
	tags, err := model.EncodeTags(note.Tags)
	if err != nil {
		return nil, errors.Wrap(err, "encode tags")
	}
	m := &model.Note{
		Content: note.Content,
		Tags:    tags,
	}
	if note.Title != nil {
		title := *note.Title
		m.Title = &title
	}
	return m, nil
}

// Create 创建笔记
// Blank content is rejected with domain.ErrContentEmpty.
// created_at never runs backwards relative to earlier rows, so id order and
// created_at order agree.
func (r *noteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	if note == nil {
		return nil, errors.New("note is nil")
	}
	if strings.TrimSpace(note.Content) == "" {
		return nil, domain.ErrContentEmpty
	}
	m, err := r.toModel(note)
	if err != nil {
		return nil, err
	}

	err = r.dao.write(ctx, func() error {
		return r.dao.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			now := time.Now().UTC().Truncate(time.Microsecond)

			var latest model.Note
			res := tx.Select("created_at").Order("created_at DESC").Limit(1).Find(&latest)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 && latest.CreatedAt.After(now) {
				now = latest.CreatedAt.UTC()
			}

			m.CreatedAt = now
			return tx.Create(m).Error
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "create note")
	}
	return r.toDomain(m), nil
}

// GetByID 根据ID获取笔记
func (r *noteRepository) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	var m model.Note
	err := r.dao.Db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, errors.Wrap(err, "get note")
	}
	return r.toDomain(&m), nil
}

// ListAll 按创建时间倒序列出全部笔记，时间相同按 ID 倒序
func (r *noteRepository) ListAll(ctx context.Context) ([]*domain.Note, error) {
	var ms []*model.Note
	err := r.dao.Db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&ms).Error
	if err != nil {
		return nil, errors.Wrap(err, "list notes")
	}

	list := make([]*domain.Note, 0, len(ms))
	for _, m := range ms {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// Count 统计笔记数量
func (r *noteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.dao.Db.WithContext(ctx).Model(&model.Note{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "count notes")
	}
	return count, nil
}

// Delete 删除笔记，不存在时返回 false 而非错误
func (r *noteRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var affected int64
	err := r.dao.write(ctx, func() error {
		res := r.dao.Db.WithContext(ctx).Where("id = ?", id).Delete(&model.Note{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, errors.Wrap(err, "delete note")
	}
	return affected > 0, nil
}

// DeleteAll 删除全部笔记
func (r *noteRepository) DeleteAll(ctx context.Context) (int64, error) {
	var affected int64
	err := r.dao.write(ctx, func() error {
		res := r.dao.Db.WithContext(ctx).Where("1 = 1").Delete(&model.Note{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, errors.Wrap(err, "delete all notes")
	}
	return affected, nil
}
