package service

import (
	"context"
	"time"

	"github.com/haierkeys/idea-inbox-service/internal/domain"
	"github.com/haierkeys/idea-inbox-service/internal/metrics"
	"github.com/haierkeys/idea-inbox-service/pkg/archive"
	"github.com/haierkeys/idea-inbox-service/pkg/code"
	"github.com/haierkeys/idea-inbox-service/pkg/logger"

	"go.uber.org/zap"
)

// ExportResult 导出结果
type ExportResult struct {
	Filename string
	Data     []byte
	Count    int
}

// ExportService 导出收件箱
type ExportService interface {
	// Export snapshots the inbox and packages it as a zip archive in memory.
	Export(ctx context.Context) (*ExportResult, error)
}

// exportService 实现 ExportService 接口
type exportService struct {
	noteRepo domain.NoteRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(noteRepo domain.NoteRepository, logger *zap.Logger) ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &exportService{noteRepo: noteRepo, logger: logger, now: time.Now}
}

// Export 导出全部笔记
func (s *exportService) Export(ctx context.Context) (*ExportResult, error) {
	notes, err := s.noteRepo.ListAll(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	a, err := archive.Build(notes)
	if err != nil {
		s.logger.Error("export build failed", zap.Error(err))
		return nil, code.ErrorExportFailed.WithDetails(err.Error())
	}
	data, err := a.Bytes()
	if err != nil {
		s.logger.Error("export zip failed", zap.Error(err))
		return nil, code.ErrorExportFailed.WithDetails(err.Error())
	}

	result := &ExportResult{
		Filename: archive.ExportFilename(s.now()),
		Data:     data,
		Count:    a.Len(),
	}

	metrics.ExportArchivesTotal.Inc()
	metrics.ExportDocumentsTotal.Add(float64(result.Count))
	s.logger.Info("inbox exported",
		zap.String(logger.FieldFilename, result.Filename),
		zap.Int(logger.FieldCount, result.Count),
		zap.Int(logger.FieldSize, len(data)))

	return result, nil
}
