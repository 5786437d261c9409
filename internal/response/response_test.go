package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFailEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/paper", func(c *gin.Context) {
		Fail(c, http.StatusForbidden, ErrSubscriptionRequired)
	})

	req := httptest.NewRequest(http.MethodGet, "/paper", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get(HeaderRequestID); got != "req-123" {
		t.Fatalf("response header request id = %q", got)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error == nil || body.Error.Code != ErrSubscriptionRequired {
		t.Fatalf("error body = %+v", body.Error)
	}
	if body.Metadata.RequestID != "req-123" {
		t.Fatalf("metadata request id = %q", body.Metadata.RequestID)
	}
}

func TestGetMessageUnknownCode(t *testing.T) {
	if GetMessage(ErrCode("NOPE")) != "An unexpected error occurred." {
		t.Fatal("unknown code should map to the generic message")
	}
}
