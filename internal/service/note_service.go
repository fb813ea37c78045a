// Package service 实现业务逻辑层
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/haierkeys/idea-inbox-service/internal/domain"
	"github.com/haierkeys/idea-inbox-service/pkg/code"
	apperrors "github.com/haierkeys/idea-inbox-service/pkg/errors"
	"github.com/haierkeys/idea-inbox-service/pkg/logger"

	"go.uber.org/zap"
)

// NoteService 定义笔记业务服务接口
type NoteService interface {
	// Create 使用调用方提供的标题与标签创建笔记
	Create(ctx context.Context, params *NoteCreateRequest) (*NoteDTO, error)

	// Get 获取单条笔记
	Get(ctx context.Context, id int64) (*NoteDTO, error)

	// List 按创建时间倒序列出全部笔记
	List(ctx context.Context) ([]*NoteDTO, error)

	// Count 统计笔记数量
	Count(ctx context.Context) (int64, error)

	// Delete 删除笔记，不存在时视为成功
	Delete(ctx context.Context, id int64) error

	// DeleteAll 清空收件箱
	DeleteAll(ctx context.Context) (int64, error)
}

// noteService 实现 NoteService 接口
type noteService struct {
	noteRepo domain.NoteRepository
	logger   *zap.Logger
	config   *ServiceConfig
}

// NewNoteService 创建 NoteService 实例
func NewNoteService(noteRepo domain.NoteRepository, logger *zap.Logger, config *ServiceConfig) NoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config == nil {
		config = &ServiceConfig{}
	}
	return &noteService{noteRepo: noteRepo, logger: logger, config: config}
}

// checkContent 校验笔记内容
// Blank content yields an AppError carrying code 602 whose cause is domain.ErrContentEmpty.
func checkContent(content string, cfg *ServiceConfig) error {
	if strings.TrimSpace(content) == "" {
		return apperrors.NewAppError(code.ErrorNoteContentEmpty, domain.ErrContentEmpty)
	}
	if cfg.App.MaxContentLength > 0 && len(content) > cfg.App.MaxContentLength {
		return code.ErrorNoteContentTooLong
	}
	return nil
}

// cleanTags 修剪标签并去掉空标签，保持顺序
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Create 创建笔记
func (s *noteService) Create(ctx context.Context, params *NoteCreateRequest) (*NoteDTO, error) {
	if err := checkContent(params.Content, s.config); err != nil {
		return nil, err
	}

	var title *string
	if params.Title != nil {
		if t := strings.TrimSpace(*params.Title); t != "" {
			title = &t
		}
	}

	n, err := s.noteRepo.Create(ctx, domain.NewNote(params.Content, title, cleanTags(params.Tags)))
	if err != nil {
		s.logger.Error("note create failed", zap.Error(err))
		return nil, code.ErrorNoteCreateFailed.WithDetails(err.Error())
	}

	s.logger.Info("note created",
		zap.Int64(logger.FieldNoteID, n.ID),
		zap.String(logger.FieldAction, "create"))
	return NewNoteDTO(n), nil
}

// Get 获取单条笔记
func (s *noteService) Get(ctx context.Context, id int64) (*NoteDTO, error) {
	n, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return NewNoteDTO(n), nil
}

// List 获取全部笔记
func (s *noteService) List(ctx context.Context) ([]*NoteDTO, error) {
	notes, err := s.noteRepo.ListAll(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	list := make([]*NoteDTO, 0, len(notes))
	for _, n := range notes {
		list = append(list, NewNoteDTO(n))
	}
	return list, nil
}

// Count 统计笔记数量
func (s *noteService) Count(ctx context.Context) (int64, error) {
	count, err := s.noteRepo.Count(ctx)
	if err != nil {
		return 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return count, nil
}

// Delete 删除笔记
func (s *noteService) Delete(ctx context.Context, id int64) error {
	existed, err := s.noteRepo.Delete(ctx, id)
	if err != nil {
		return code.ErrorNoteDeleteFailed.WithDetails(err.Error())
	}
	s.logger.Info("note deleted",
		zap.Int64(logger.FieldNoteID, id),
		zap.String(logger.FieldAction, "delete"),
		zap.Bool("existed", existed))
	return nil
}

// DeleteAll 清空收件箱
func (s *noteService) DeleteAll(ctx context.Context) (int64, error) {
	removed, err := s.noteRepo.DeleteAll(ctx)
	if err != nil {
		return 0, code.ErrorNoteDeleteFailed.WithDetails(err.Error())
	}
	s.logger.Info("inbox cleared",
		zap.String(logger.FieldAction, "delete_all"),
		zap.Int64(logger.FieldCount, removed))
	return removed, nil
}
