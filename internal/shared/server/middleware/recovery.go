package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"resolution-backend/internal/shared/metrics"
	"resolution-backend/internal/shared/server/respond"
	"resolution-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 error body. The stack is logged
// with the template and document the request was working on, if any.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			metrics.IncPanics()
			telemetry.Error("request.panic", map[string]any{
				"request_id":  RequestIDFromContext(c),
				"error":       fmt.Sprint(rec),
				"stack":       string(debug.Stack()),
				"method":      c.Request.Method,
				"path":        c.Request.URL.Path,
				"template_id": c.GetString(TemplateIDKey),
				"document_id": c.GetString(DocumentIDKey),
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "unexpected server error", nil)
		}()
		c.Next()
	}
}
