package mockapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

func compressRouter(body string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(compress(64))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, body) })
	return r
}

func TestCompressLargeBody(t *testing.T) {
	body := strings.Repeat("question paper ", 100)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	w := httptest.NewRecorder()
	compressRouter(body).ServeHTTP(w, req)

	if got := w.Header().Get("Content-Encoding"); got != "br" {
		t.Fatalf("Content-Encoding = %q", got)
	}
	if w.Body.Len() >= len(body) {
		t.Fatalf("body not compressed: %d bytes", w.Body.Len())
	}
	plain, err := io.ReadAll(brotli.NewReader(w.Body))
	if err != nil || string(plain) != body {
		t.Fatalf("round trip: %v", err)
	}
}

func TestCompressSkipsSmallBodiesAndOtherClients(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Accept-Encoding", "br")
	w := httptest.NewRecorder()
	compressRouter("ok").ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != "ok" {
		t.Fatalf("small body: %q %q", w.Header().Get("Content-Encoding"), w.Body)
	}

	body := strings.Repeat("x", 500)
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	w = httptest.NewRecorder()
	compressRouter(body).ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != body {
		t.Fatal("client without br got a compressed body")
	}
}
