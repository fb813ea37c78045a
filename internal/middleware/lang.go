package middleware

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/gin-gonic/gin"
)

// LangWithTranslator 创建带翻译器的语言中间件（支持依赖注入）
// The translator is stored per request under "trans".
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {

	return func(c *gin.Context) {

		var lang string

		if s, exist := c.GetQuery("lang"); exist {
			lang = s
		} else if s = c.GetHeader("lang"); len(s) != 0 {
			lang = s
		} else if s = c.GetHeader("Accept-Language"); len(s) != 0 {
			lang = strings.SplitN(strings.SplitN(s, ",", 2)[0], ";", 2)[0]
		}

		lang = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(lang), "-", "_"))

		trans, found := uni.GetTranslator(lang)
		if !found {
			trans, _ = uni.GetTranslator("en")
		}
		c.Set("trans", trans)
		c.Set("lang", lang)

		c.Next()
	}
}
