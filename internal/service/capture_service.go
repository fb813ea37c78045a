package service

import (
	"context"
	"errors"
	"time"

	"github.com/haierkeys/idea-inbox-service/internal/domain"
	"github.com/haierkeys/idea-inbox-service/internal/metrics"
	"github.com/haierkeys/idea-inbox-service/pkg/code"
	"github.com/haierkeys/idea-inbox-service/pkg/logger"

	"go.uber.org/zap"
)

// Extractor produces a title and tags for note content.
// Implementations wrap every failure with domain.ErrExtractionFailure.
type Extractor interface {
	Extract(ctx context.Context, content string) (domain.ExtractionResult, error)
}

// ExtractorHealthChecker is implemented by extractors backed by a remote service.
type ExtractorHealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CaptureService 捕获笔记：先提取标题与标签，再持久化
type CaptureService interface {
	// Capture extracts metadata for content and stores the note.
	// Extraction failures fall back to no title and no tags and are never returned.
	Capture(ctx context.Context, content string) (*domain.Note, error)
}

// captureService 实现 CaptureService 接口
type captureService struct {
	extractor Extractor
	noteRepo  domain.NoteRepository
	logger    *zap.Logger
	config    *ServiceConfig
}

// NewCaptureService 创建 CaptureService 实例
func NewCaptureService(extractor Extractor, noteRepo domain.NoteRepository, logger *zap.Logger, config *ServiceConfig) CaptureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config == nil {
		config = &ServiceConfig{}
	}
	return &captureService{extractor: extractor, noteRepo: noteRepo, logger: logger, config: config}
}

// Capture 捕获笔记
func (s *captureService) Capture(ctx context.Context, content string) (*domain.Note, error) {
	if err := checkContent(content, s.config); err != nil {
		return nil, err
	}

	start := time.Now()
	outcome := "enriched"

	result, err := s.extractor.Extract(ctx, content)
	if err != nil {
		outcome = "fallback"
		level := s.logger.Warn
		if !errors.Is(err, domain.ErrExtractionFailure) {
			level = s.logger.Error
		}
		level("extraction failed, storing note without metadata",
			zap.Error(err),
			zap.String(logger.FieldAction, "capture"),
			zap.Duration(logger.FieldDuration, time.Since(start)))
		result = domain.ExtractionResult{}
	}

	// 提取已完成，请求取消不应丢失笔记
	n, err := s.noteRepo.Create(context.WithoutCancel(ctx), domain.NewNote(content, result.TitlePtr(), cleanTags(result.Tags)))
	if err != nil {
		metrics.CaptureTotal.WithLabelValues("error").Inc()
		s.logger.Error("capture persist failed", zap.Error(err))
		return nil, code.ErrorNoteCreateFailed.WithDetails(err.Error())
	}

	metrics.CaptureTotal.WithLabelValues(outcome).Inc()
	s.logger.Info("note captured",
		zap.Int64(logger.FieldNoteID, n.ID),
		zap.String(logger.FieldAction, "capture"),
		zap.Bool("fallback", outcome == "fallback"),
		zap.Duration(logger.FieldDuration, time.Since(start)))

	return n, nil
}
