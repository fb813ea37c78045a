package api_router

import (
	"github.com/haierkeys/idea-inbox-service/internal/app"
	"github.com/haierkeys/idea-inbox-service/internal/service"
	pkgapp "github.com/haierkeys/idea-inbox-service/pkg/app"
	"github.com/haierkeys/idea-inbox-service/pkg/code"
	apperrors "github.com/haierkeys/idea-inbox-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ZipContentType export archive media type
const ZipContentType = "application/zip"

// NoteHandler 笔记 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{Handler: NewHandler(a)}
}

// List 获取笔记列表
// @Summary 获取笔记列表
// @Description 按创建时间倒序返回收件箱中的全部笔记
// @Tags 笔记
// @Produce json
// @Success 200 {array} service.NoteDTO "成功"
// @Router /api/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	notes, err := h.App.NoteService.List(ctx)
	if err != nil {
		h.logError(ctx, "NoteHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(notes))
}

// Create 使用调用方提供的标题与标签创建笔记
// @Summary 创建笔记
// @Tags 笔记
// @Accept json
// @Produce json
// @Param params body service.NoteCreateRequest true "笔记内容"
// @Success 201 {object} service.NoteDTO "成功"
// @Router /api/notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &service.NoteCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Create.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.NoteService.Create(ctx, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Created.WithData(note))
}

// Capture 提取标题与标签后保存笔记，提取失败时仍保存原文
// @Summary 捕获笔记
// @Tags 笔记
// @Accept json
// @Produce json
// @Param params body service.NoteCaptureRequest true "笔记内容"
// @Success 201 {object} service.NoteDTO "成功"
// @Router /api/notes/capture [post]
func (h *NoteHandler) Capture(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &service.NoteCaptureRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Capture.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.CaptureService.Capture(ctx, params.Content)
	if err != nil {
		h.logError(ctx, "NoteHandler.Capture", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Created.WithData(service.NewNoteDTO(note)))
}

// Delete 删除单条笔记，不存在时同样返回 204
// @Summary 删除笔记
// @Tags 笔记
// @Param id path int true "笔记 ID"
// @Success 204 "成功"
// @Router /api/notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &service.NoteIDRequest{}

	if err := c.ShouldBindUri(params); err != nil {
		h.App.Logger().Error("NoteHandler.Delete.ShouldBindUri err", zap.Error(err))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	ctx := c.Request.Context()
	if err := h.App.NoteService.Delete(ctx, params.ID); err != nil {
		h.logError(ctx, "NoteHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Deleted)
}

// DeleteAll 清空收件箱
// @Summary 清空收件箱
// @Tags 笔记
// @Success 204 "成功"
// @Router /api/notes [delete]
func (h *NoteHandler) DeleteAll(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	if _, err := h.App.NoteService.DeleteAll(ctx); err != nil {
		h.logError(ctx, "NoteHandler.DeleteAll", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Deleted)
}

// Export 将收件箱打包为 zip 下载
// @Summary 导出收件箱
// @Tags 笔记
// @Produce application/zip
// @Success 200 {file} file "zip 归档"
// @Router /api/notes/export [get]
func (h *NoteHandler) Export(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	result, err := h.App.ExportService.Export(ctx)
	if err != nil {
		h.logError(ctx, "NoteHandler.Export", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToAttachment(result.Filename, ZipContentType, result.Data)
}
