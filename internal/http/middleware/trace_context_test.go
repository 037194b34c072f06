package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/lclrke/dawa-dashboard/internal/platform/ctxutil"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x0a, 0x0b, 0x0c, 0x0d, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c},
		SpanID:  trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
	})

	cases := []struct {
		name      string
		reqID     string
		traceID   string
		span      bool
		wantReq   string
		wantTrace string
	}{
		{"inbound ids kept", "req-42", "trace.abc", false, "req-42", "trace.abc"},
		{"span wins over header", "req-42", "trace.abc", true, "req-42", spanCtx.TraceID().String()},
		{"injected request id replaced", "bad\nid", "", false, "", ""},
		{"oversized trace id replaced", "req-7", strings.Repeat("t", 200), false, "req-7", "req-7"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen *ctxutil.TraceData
			var logFields []interface{}
			r := gin.New()
			if tc.span {
				r.Use(func(c *gin.Context) {
					c.Request = c.Request.WithContext(trace.ContextWithSpanContext(c.Request.Context(), spanCtx))
					c.Next()
				})
			}
			r.Use(AttachTraceContext())
			r.POST("/api/train/export", func(c *gin.Context) {
				seen = ctxutil.GetTraceData(c.Request.Context())
				logFields = ctxutil.LogFields(c.Request.Context())
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/train/export", nil)
			req = req.WithContext(context.Background())
			if tc.reqID != "" {
				req.Header[headerRequestID] = []string{tc.reqID}
			}
			if tc.traceID != "" {
				req.Header.Set(headerTraceID, tc.traceID)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if seen == nil {
				t.Fatalf("trace data missing from request context")
			}
			if tc.wantReq != "" && seen.RequestID != tc.wantReq {
				t.Fatalf("request id: want=%q got=%q", tc.wantReq, seen.RequestID)
			}
			if tc.wantReq == "" && (seen.RequestID == "" || seen.RequestID == tc.reqID) {
				t.Fatalf("request id not regenerated: %q", seen.RequestID)
			}
			if tc.wantTrace != "" && seen.TraceID != tc.wantTrace {
				t.Fatalf("trace id: want=%q got=%q", tc.wantTrace, seen.TraceID)
			}
			if seen.TraceID == "" {
				t.Fatalf("trace id empty")
			}
			if got := rec.Header().Get(headerRequestID); got != seen.RequestID {
				t.Fatalf("response request id: want=%q got=%q", seen.RequestID, got)
			}
			if got := rec.Header().Get(headerTraceID); got != seen.TraceID {
				t.Fatalf("response trace id: want=%q got=%q", seen.TraceID, got)
			}
			if len(logFields) != 4 || logFields[0] != "request_id" || logFields[1] != seen.RequestID {
				t.Fatalf("log fields: %v", logFields)
			}
		})
	}
}
