package app

import (
	"net/http"
	"time"

	"github.com/haierkeys/idea-inbox-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// VersionInfo version information // 版本信息
type VersionInfo struct {
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}

type Response struct {
	Ctx *gin.Context
}

// TraceIDKey gin.Context key holding the request trace id
const TraceIDKey = "trace_id"

// Res is the envelope for a success code without data
// Res 无数据成功响应结构
type Res struct {
	Code    int         `json:"code"`
	Status  bool        `json:"status"`
	Message interface{} `json:"message,omitempty"`
}

// ErrorRes is the error envelope
// ErrorRes 错误响应结构
type ErrorRes struct {
	Code      int       `json:"code"`
	Message   string    `json:"message"`
	Details   []string  `json:"details,omitempty"`
	TraceID   string    `json:"traceId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewResponse(ctx *gin.Context) *Response {
	return &Response{
		Ctx: ctx,
	}
}

// GetRequestIP gets the request IP
// GetRequestIP 获取ip
func GetRequestIP(c *gin.Context) string {
	reqIP := c.ClientIP()
	if reqIP == "::1" {
		reqIP = "127.0.0.1"
	}
	return reqIP
}

func GetAccessHost(c *gin.Context) string {
	accessProto := ""
	if proto := c.Request.Header.Get("X-Forwarded-Proto"); proto == "" {
		accessProto = "http" + "://"
	} else {
		accessProto = proto + "://"
	}
	return accessProto + c.Request.Host
}

// ToResponse writes a success code's data as the bare JSON body, and a failure code as an ErrorRes envelope.
// ToResponse 成功时直接输出 Data，失败时输出 ErrorRes 结构并中止后续处理
func (r *Response) ToResponse(codeObj *code.Code) {
	statusCode := codeObj.StatusCode()
	r.Ctx.Set("status_code", statusCode)

	if codeObj.Status() {
		switch {
		case statusCode == http.StatusNoContent:
			r.Ctx.Status(statusCode)
		case codeObj.HaveData():
			r.send(statusCode, codeObj.Data())
		default:
			r.send(statusCode, Res{Code: codeObj.Code(), Status: true, Message: codeObj.Msg()})
		}
		return
	}

	content := ErrorRes{
		Code:      codeObj.Code(),
		Message:   codeObj.Msg(),
		TraceID:   r.Ctx.GetString(TraceIDKey),
		Timestamp: time.Now(),
	}
	if codeObj.HaveDetails() {
		content.Details = codeObj.Details()
	}

	r.Ctx.AbortWithStatusJSON(statusCode, content)
}

// ToAttachment writes a binary download.
// ToAttachment 输出附件下载
func (r *Response) ToAttachment(filename, contentType string, data []byte) {
	r.Ctx.Set("status_code", http.StatusOK)
	r.Ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	r.Ctx.Data(http.StatusOK, contentType, data)
}

func (r *Response) send(statusCode int, content interface{}) {
	r.Ctx.JSON(statusCode, content)
}
