package code

import "net/http"

var (
	Success = NewSuss(1, http.StatusOK, lang{en: "Success", zh_cn: "成功"})
	Created = NewSuss(2, http.StatusCreated, lang{en: "Created", zh_cn: "创建成功"})
	Deleted = NewSuss(3, http.StatusNoContent, lang{en: "Deleted", zh_cn: "删除成功"})

	Failed                = NewError(400, http.StatusInternalServerError, lang{en: "Failed", zh_cn: "失败"})
	ErrorServerInternal   = NewError(500, http.StatusInternalServerError, lang{en: "Internal Server Error", zh_cn: "服务器内部错误"})
	ErrorInvalidParams    = NewError(505, http.StatusBadRequest, lang{en: "Invalid parameters", zh_cn: "参数错误"})
	ErrorNotFoundAPI      = NewError(506, http.StatusNotFound, lang{en: "API not found", zh_cn: "找不到API"})
	ErrorTooManyRequests  = NewError(507, http.StatusTooManyRequests, lang{en: "Too many requests", zh_cn: "请求过多"})
	ErrorServiceUnhealthy = NewError(508, http.StatusServiceUnavailable, lang{en: "Service unavailable", zh_cn: "服务不可用"})

	ErrorDBQuery            = NewError(601, http.StatusInternalServerError, lang{en: "Database query failed", zh_cn: "数据库查询失败"})
	ErrorNoteContentEmpty   = NewError(602, http.StatusBadRequest, lang{en: "Note content must not be empty", zh_cn: "笔记内容不能为空"})
	ErrorNoteNotFound       = NewError(603, http.StatusNotFound, lang{en: "Note not found", zh_cn: "笔记不存在"})
	ErrorNoteCreateFailed   = NewError(604, http.StatusInternalServerError, lang{en: "Failed to save note", zh_cn: "笔记保存失败"})
	ErrorNoteDeleteFailed   = NewError(605, http.StatusInternalServerError, lang{en: "Failed to delete note", zh_cn: "笔记删除失败"})
	ErrorExportFailed       = NewError(606, http.StatusInternalServerError, lang{en: "Failed to build export archive", zh_cn: "导出归档失败"})
	ErrorNoteContentTooLong = NewError(607, http.StatusRequestEntityTooLarge, lang{en: "Note content is too long", zh_cn: "笔记内容过长"})
)
